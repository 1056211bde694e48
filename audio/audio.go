// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"io"
	"sort"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Format keys used by Sniff and the default registry.
const (
	FormatWAV    = "wav"
	FormatMP3    = "mp3"
	FormatVorbis = "ogg"
	FormatAIFF   = "aiff"
)

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Formats lists the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Decode detects the container format of data and decodes it with the
// matching registered decoder. Every failure is returned as *DecodeError.
func (r *Registry) Decode(data []byte) (Source, error) {
	format, ok := Sniff(data)
	if !ok {
		return nil, &DecodeError{Err: ErrUnknownFormat}
	}

	dec, ok := r.Get(format)
	if !ok {
		return nil, &DecodeError{Format: format, Err: ErrNoDecoder}
	}

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}

	return src, nil
}

// DecodeClip decodes data into a mono Buffer at rate Hz. Read failures
// after the header are also reported as *DecodeError.
func (r *Registry) DecodeClip(data []byte, rate int) (*Buffer, error) {
	src, err := r.Decode(data)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	clip, err := ReadAllMono(src, rate, 4096)
	if err != nil {
		format, _ := Sniff(data)
		return nil, &DecodeError{Format: format, Err: err}
	}

	return clip, nil
}

// Sniff reports the container format of data by its magic bytes.
func Sniff(data []byte) (string, bool) {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV, true
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("OggS")):
		return FormatVorbis, true
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("FORM")) &&
		(bytes.Equal(data[8:12], []byte("AIFF")) || bytes.Equal(data[8:12], []byte("AIFC"))):
		return FormatAIFF, true
	case len(data) >= 3 && bytes.Equal(data[:3], []byte("ID3")):
		return FormatMP3, true
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return FormatMP3, true
	}

	return "", false
}

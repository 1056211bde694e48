// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// IntPCMReader is implemented by the go-audio wav and aiff decoders.
type IntPCMReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// IntPCMSource adapts an IntPCMReader to Source, normalizing integer
// samples of the given bit depth into [-1,1].
type IntPCMSource struct {
	dec      IntPCMReader
	format   *goaudio.Format
	scale    float32
	intBuf   *goaudio.IntBuffer
	finished bool
}

func NewIntPCMSource(dec IntPCMReader, bitDepth int) *IntPCMSource {
	return &IntPCMSource{
		dec:    dec,
		format: dec.Format(),
		scale:  1 / fullScale(bitDepth),
	}
}

func fullScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

func (s *IntPCMSource) SampleRate() int { return s.format.SampleRate }
func (s *IntPCMSource) Channels() int   { return s.format.NumChannels }
func (s *IntPCMSource) Close() error    { return nil }

func (s *IntPCMSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.finished {
		return 0, io.EOF
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.format,
		}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("pcm read: %w", err)
	}
	if n == 0 {
		s.finished = true
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v) * s.scale
	}

	// a short read means the data chunk is exhausted
	if n < len(dst) || err == io.EOF {
		s.finished = true
		return n, io.EOF
	}

	return n, nil
}

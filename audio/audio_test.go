// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/ik5/talkinghead/internal/audiotest"
)

type stubDecoder struct {
	err error
}

func (d stubDecoder) Decode(r io.Reader) (Source, error) {
	if d.err != nil {
		return nil, d.err
	}
	return audiotest.NewSilentSource(8000, 1, 10), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(FormatWAV, stubDecoder{})

	if _, ok := registry.Get(FormatWAV); !ok {
		t.Fatal("Registry.Get() failed to retrieve registered decoder")
	}

	if _, ok := registry.Get("flac"); ok {
		t.Error("Registry.Get() returned ok=true for unregistered format")
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(FormatWAV, stubDecoder{})
	registry.Register(FormatAIFF, stubDecoder{})
	registry.Register(FormatMP3, stubDecoder{})

	got := registry.Formats()
	want := []string{FormatAIFF, FormatMP3, FormatWAV}
	if len(got) != len(want) {
		t.Fatalf("Formats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Formats()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				registry.Register(FormatWAV, stubDecoder{})
				return
			}
			registry.Get(FormatWAV)
		}()
	}

	wg.Wait()
}

func TestSniff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   []byte
		want   string
		wantOK bool
	}{
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), FormatWAV, true},
		{"riff but not wave", []byte("RIFF\x00\x00\x00\x00AVI "), "", false},
		{"ogg", []byte("OggS\x00\x02"), FormatVorbis, true},
		{"aiff", []byte("FORM\x00\x00\x00\x00AIFFCOMM"), FormatAIFF, true},
		{"aifc", []byte("FORM\x00\x00\x00\x00AIFCFVER"), FormatAIFF, true},
		{"mp3 with id3", []byte("ID3\x04\x00"), FormatMP3, true},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x64}, FormatMP3, true},
		{"text", []byte("hello world"), "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Sniff(tt.data)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Sniff() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRegistry_Decode(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(FormatWAV, stubDecoder{})

	src, err := registry.Decode(audiotest.ToneWAV(8000, 100, 440, 0.5))
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if src.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", src.SampleRate())
	}
}

func TestRegistry_DecodeErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	registry := NewRegistry()
	registry.Register(FormatWAV, stubDecoder{err: boom})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"unknown container", []byte("not audio at all"), ErrUnknownFormat},
		{"no decoder", []byte("OggS\x00\x02\x00\x00"), ErrNoDecoder},
		{"decoder failure", audiotest.ToneWAV(8000, 10, 440, 0.5), boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := registry.Decode(tt.data)

			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("Decode() error = %v, want *DecodeError", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want wrapping %v", err, tt.want)
			}
		})
	}
}

func TestDecodeError_Message(t *testing.T) {
	t.Parallel()

	err := &DecodeError{Format: FormatMP3, Err: io.ErrUnexpectedEOF}
	want := "decode mp3 audio: unexpected EOF"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = &DecodeError{Err: ErrUnknownFormat}
	want = "decode audio: unrecognized audio container"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestRegistry_DecodeClip(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(FormatWAV, stubDecoder{})

	clip, err := registry.DecodeClip(audiotest.ToneWAV(8000, 100, 440, 0.5), 16000)
	if err != nil {
		t.Fatalf("DecodeClip() error = %v", err)
	}
	if clip.SampleRate() != 16000 {
		t.Errorf("SampleRate() = %d, want 16000", clip.SampleRate())
	}

	_, err = registry.DecodeClip(audiotest.ToneWAV(8000, 100, 440, 0.5), 0)
	var decErr *DecodeError
	if !errors.As(err, &decErr) || !errors.Is(err, ErrInvalidRate) {
		t.Errorf("DecodeClip(rate 0) error = %v, want *DecodeError wrapping ErrInvalidRate", err)
	}
	if decErr != nil && decErr.Format != FormatWAV {
		t.Errorf("DecodeError.Format = %q, want %q", decErr.Format, FormatWAV)
	}
}

// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"
)

// Buffer is a decoded mono clip. It is never modified after ReadAllMono
// returns it, so it can be shared between sessions and replays.
type Buffer struct {
	samples []float32
	rate    int
}

// NewBuffer wraps mono samples recorded at rate Hz.
func NewBuffer(samples []float32, rate int) *Buffer {
	return &Buffer{samples: samples, rate: rate}
}

func (b *Buffer) SampleRate() int { return b.rate }
func (b *Buffer) Len() int        { return len(b.samples) }

// Samples returns the underlying PCM. Callers must not modify it.
func (b *Buffer) Samples() []float32 { return b.samples }

func (b *Buffer) Duration() time.Duration {
	if b.rate <= 0 {
		return 0
	}
	return time.Duration(len(b.samples)) * time.Second / time.Duration(b.rate)
}

// Offset converts an elapsed play time into a sample position.
func (b *Buffer) Offset(elapsed time.Duration) int {
	pos := int(elapsed.Seconds() * float64(b.rate))
	return min(max(pos, 0), len(b.samples))
}

// Window copies the len(dst) samples that end at pos into dst. Positions
// outside the clip read as silence.
func (b *Buffer) Window(pos int, dst []float32) {
	start := pos - len(dst)
	for i := range dst {
		j := start + i
		if j < 0 || j >= len(b.samples) {
			dst[i] = 0
			continue
		}
		dst[i] = b.samples[j]
	}
}

// ReadAllMono runs src through resample -> mono and collects the whole
// clip at rate Hz.
func ReadAllMono(src Source, rate int, bufferSize int) (*Buffer, error) {
	if rate <= 0 {
		return nil, ErrInvalidRate
	}
	if bufferSize <= 0 {
		bufferSize = 4096
	}

	var pipeline Source = src
	if src.SampleRate() != rate {
		pipeline = NewResampler(pipeline, rate)
	}
	pipeline = NewMonoMixer(pipeline)

	samples := make([]float32, 0, rate*2)
	buf := make([]float32, bufferSize)

	for {
		n, err := pipeline.ReadSamples(buf)
		samples = append(samples, buf[:n]...)

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read clip: %w", err)
		}
		if n == 0 {
			// source made no progress without reporting EOF
			break
		}
	}

	if len(samples) == 0 {
		return nil, ErrEmptyClip
	}

	return NewBuffer(samples, rate), nil
}

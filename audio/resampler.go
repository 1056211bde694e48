// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/talkinghead/utils"
)

// Resampler streams src at a different sample rate using Catmull-Rom
// interpolation over a four frame window. Channel count is preserved.
// When downsampling a one-pole low-pass runs over the input first.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames per output frame
	channels int

	// window[0..3] holds frames t-1, t0, t+1, t+2
	window [4][]float32
	filled int

	pos     float64
	primed  bool
	drained bool

	in      []float32
	lowpass []float32
	filter  bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		in:       make([]float32, channels),
		lowpass:  make([]float32, channels),
	}
	r.filter = r.step > 1.0

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("close resampler source: %w", err)
	}
	return nil
}

// pull reads one source frame into r.in. ok is false once the source is
// exhausted.
func (r *Resampler) pull() (bool, error) {
	if r.drained {
		return false, nil
	}

	n, err := r.src.ReadSamples(r.in)
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("resampler read: %w", err)
	}
	if n < r.channels {
		r.drained = true
		return false, nil
	}
	if err == io.EOF {
		r.drained = true
	}

	if r.filter {
		if !r.primed {
			copy(r.lowpass, r.in)
		}
		const alpha = 0.5
		for c := range r.channels {
			r.lowpass[c] = alpha*r.in[c] + (1-alpha)*r.lowpass[c]
			r.in[c] = r.lowpass[c]
		}
	}

	return true, nil
}

// advance shifts the window one frame to the left. The newest slot keeps
// the previous edge frame when the source is exhausted.
func (r *Resampler) advance() error {
	ok, err := r.pull()
	if err != nil {
		return err
	}

	first := r.window[0]
	copy(r.window[:], r.window[1:])
	r.window[3] = first

	if ok {
		copy(r.window[3], r.in)
		return nil
	}

	copy(r.window[3], r.window[2])
	r.filled--

	return nil
}

func (r *Resampler) prime() error {
	ok, err := r.pull()
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	r.primed = true

	// t-1 duplicates t0 at the start of the stream
	copy(r.window[0], r.in)
	copy(r.window[1], r.in)
	r.filled = 1

	for i := 2; i < 4; i++ {
		ok, err := r.pull()
		if err != nil {
			return err
		}
		if !ok {
			copy(r.window[i], r.window[i-1])
			continue
		}
		copy(r.window[i], r.in)
		r.filled++
	}

	return nil
}

// ReadSamples produces interleaved samples at the destination rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		// t0 is the last real frame; nothing left to interpolate towards
		if r.filled < 2 {
			if r.filled == 1 && r.pos == 0 {
				for c := range r.channels {
					dst[written*r.channels+c] = r.window[1][c]
				}
				written++
				r.filled = 0
			}
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		for c := range r.channels {
			dst[written*r.channels+c] = utils.CubicInterpolate(
				r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}

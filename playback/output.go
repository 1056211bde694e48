// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ik5/talkinghead/audio"
	"github.com/ik5/talkinghead/formats/wav"
	"github.com/ik5/talkinghead/utils"
)

// Output renders one clip, once. Start must not call ended synchronously;
// ended fires at most once and never after a successful Stop.
type Output interface {
	Start(clip *audio.Buffer, ended func()) error
	// Position is the elapsed play time, used to pick the analysis window.
	Position() time.Duration
	Stop() error
}

// ClockOutput plays a clip against the wall clock. It is the silent
// stand-in for a sound device: Position advances in real time and ended
// fires after the clip duration.
type ClockOutput struct {
	mu       sync.Mutex
	now      func() time.Time
	started  time.Time
	stopped  time.Time
	duration time.Duration
	timer    *time.Timer
	done     bool
}

func NewClockOutput() *ClockOutput {
	return &ClockOutput{now: time.Now}
}

func (o *ClockOutput) Start(clip *audio.Buffer, ended func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started.IsZero() {
		return ErrAlreadyStarted
	}

	o.started = o.now()
	o.duration = clip.Duration()
	o.timer = time.AfterFunc(o.duration, func() {
		o.mu.Lock()
		if o.done {
			o.mu.Unlock()
			return
		}
		o.done = true
		o.stopped = o.now()
		o.mu.Unlock()

		ended()
	})

	return nil
}

func (o *ClockOutput) Position() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started.IsZero() {
		return 0
	}

	end := o.now()
	if o.done {
		end = o.stopped
	}
	return min(end.Sub(o.started), o.duration)
}

func (o *ClockOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started.IsZero() || o.done {
		return ErrAlreadyStopped
	}

	o.done = true
	o.stopped = o.now()
	o.timer.Stop()

	return nil
}

// WAVOutput writes the clip as 16-bit mono WAV to w, then plays it on the
// clock like ClockOutput.
type WAVOutput struct {
	*ClockOutput
	w io.Writer
}

func NewWAVOutput(w io.Writer) *WAVOutput {
	return &WAVOutput{ClockOutput: NewClockOutput(), w: w}
}

func (o *WAVOutput) Start(clip *audio.Buffer, ended func()) error {
	pcm := make([]int16, clip.Len())
	for i, s := range clip.Samples() {
		pcm[i] = utils.Float32ToInt16(s)
	}

	if err := wav.WriteWAV16(o.w, clip.SampleRate(), pcm); err != nil {
		return fmt.Errorf("render clip: %w", err)
	}

	return o.ClockOutput.Start(clip, ended)
}

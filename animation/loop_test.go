// SPDX-License-Identifier: EPL-2.0

package animation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ik5/talkinghead/analysis"
	"github.com/ik5/talkinghead/lipsync"
)

type fakeProvider struct {
	mu      sync.Mutex
	playing bool
	fill    uint8
	calls   int
}

func (p *fakeProvider) Snapshot(dst analysis.Snapshot) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if !p.playing {
		return false
	}
	for i := range dst {
		if i < 10 {
			dst[i] = p.fill
		} else {
			dst[i] = 0
		}
	}
	return true
}

func (p *fakeProvider) set(playing bool) {
	p.mu.Lock()
	p.playing = playing
	p.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	values map[string][]float64
}

func newRecorder() *recorder { return &recorder{values: map[string][]float64{}} }

func (r *recorder) SetFixedValue(name string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[name] = append(r.values[name], value)
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values[name])
}

func (r *recorder) last(name string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.values[name]
	return v[len(v)-1]
}

type frameSink struct {
	recorder
	frames []lipsync.Frame
}

func (s *frameSink) EmitFrame(frame lipsync.Frame) { s.frames = append(s.frames, frame) }

func TestLoop_IdleEmitsZerosOnce(t *testing.T) {
	t.Parallel()

	target := newRecorder()
	loop := NewLoop(&fakeProvider{}, target, 128)

	for range 5 {
		loop.Tick(time.Second / 60)
	}

	for _, name := range lipsync.Channels {
		if got := target.count(name); got != 1 {
			t.Errorf("%s emitted %d times, want 1", name, got)
		}
		if got := target.last(name); got != 0 {
			t.Errorf("%s = %v, want 0", name, got)
		}
	}
}

func TestLoop_PlayingThenIdle(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{playing: true, fill: 200}
	target := newRecorder()
	loop := NewLoop(provider, target, 128)

	frame, emitted := loop.Tick(time.Second / 60)
	if !emitted {
		t.Fatal("Tick() emitted = false while playing")
	}
	if frame.O <= 0 || frame.O != frame.U {
		t.Errorf("frame = %+v, want low band O = U > 0", frame)
	}
	if st := loop.State(); st.O == 0 {
		t.Error("State() not advanced")
	}

	provider.set(false)
	frame, emitted = loop.Tick(time.Second / 60)
	if !emitted || frame != (lipsync.Frame{}) {
		t.Errorf("first idle Tick() = (%+v, %v), want zeros emitted", frame, emitted)
	}
	if st := loop.State(); st != (lipsync.State{}) {
		t.Errorf("State() = %+v, want neutral", st)
	}

	if _, emitted = loop.Tick(time.Second / 60); emitted {
		t.Error("second idle Tick() emitted again")
	}

	// playing again re-arms the idle transition
	provider.set(true)
	loop.Tick(time.Second / 60)
	provider.set(false)
	if _, emitted = loop.Tick(time.Second / 60); !emitted {
		t.Error("idle after resumed playback did not emit zeros")
	}
}

func TestLoop_ResetRearmsNeutralFrame(t *testing.T) {
	t.Parallel()

	target := newRecorder()
	loop := NewLoop(&fakeProvider{}, target, 128)

	loop.Tick(0)
	loop.Reset()
	loop.Tick(0)

	if got := target.count(lipsync.ChannelMouthOpen); got != 2 {
		t.Errorf("mouthOpen emitted %d times, want 2", got)
	}
}

func TestLoop_PrefersFrameSink(t *testing.T) {
	t.Parallel()

	sink := &frameSink{recorder: recorder{values: map[string][]float64{}}}
	loop := NewLoop(&fakeProvider{playing: true, fill: 200}, sink, 128)

	loop.Tick(0)
	loop.Tick(0)

	if len(sink.frames) != 2 {
		t.Errorf("EmitFrame called %d times, want 2", len(sink.frames))
	}
	if sink.count(lipsync.ChannelAA) != 0 {
		t.Error("SetFixedValue used although EmitFrame is available")
	}
}

func TestMorphFunc(t *testing.T) {
	t.Parallel()

	var got []string
	loop := NewLoop(&fakeProvider{}, MorphFunc(func(name string, _ float64) {
		got = append(got, name)
	}), 128)
	loop.Tick(0)

	if len(got) != len(lipsync.Channels) {
		t.Errorf("MorphFunc saw %v, want %d channels", got, len(lipsync.Channels))
	}
}

func TestLoop_RunStopsWithContext(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{playing: true, fill: 100}
	loop := NewLoop(provider, newRecorder(), 128)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := loop.Run(ctx, 200); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want DeadlineExceeded", err)
	}

	provider.mu.Lock()
	calls := provider.calls
	provider.mu.Unlock()
	if calls == 0 {
		t.Error("Run() never ticked")
	}
}

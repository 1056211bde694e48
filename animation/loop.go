// SPDX-License-Identifier: EPL-2.0

// Package animation drives morph targets from the playing clip once per
// frame.
package animation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/talkinghead/analysis"
	"github.com/ik5/talkinghead/internal/metrics"
	"github.com/ik5/talkinghead/lipsync"
)

// DefaultFPS is the frame rate Run uses when given a non-positive rate.
const DefaultFPS = 60

// MorphTarget is the avatar side of the loop: one named channel at a time.
type MorphTarget interface {
	SetFixedValue(name string, value float64)
}

// FrameSink is implemented by targets that prefer whole frames. The loop
// calls EmitFrame instead of SetFixedValue when it is available.
type FrameSink interface {
	EmitFrame(frame lipsync.Frame)
}

// MorphFunc adapts a function to MorphTarget.
type MorphFunc func(name string, value float64)

func (f MorphFunc) SetFixedValue(name string, value float64) { f(name, value) }

// SnapshotProvider fills dst with the current frequency snapshot and
// reports whether a clip is playing. dst is left untouched when it is not.
type SnapshotProvider interface {
	Snapshot(dst analysis.Snapshot) bool
}

type Option func(*Loop)

func WithConfig(cfg lipsync.Config) Option {
	return func(l *Loop) { l.cfg = cfg }
}

func WithLogger(log zerolog.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// Loop owns the viseme state between frames. It is safe for concurrent use;
// Tick and Reset serialize on an internal mutex.
type Loop struct {
	mu       sync.Mutex
	provider SnapshotProvider
	target   MorphTarget
	cfg      lipsync.Config
	log      zerolog.Logger

	state   lipsync.State
	snap    analysis.Snapshot
	neutral bool // zeros already emitted since the last playing frame
}

// NewLoop builds a loop reading bins-wide snapshots from provider.
func NewLoop(provider SnapshotProvider, target MorphTarget, bins int, opts ...Option) *Loop {
	l := &Loop{
		provider: provider,
		target:   target,
		cfg:      lipsync.DefaultConfig(),
		log:      zerolog.Nop(),
		snap:     make(analysis.Snapshot, bins),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Tick runs one frame. emitted is false for idle frames after the first.
func (l *Loop) Tick(dt time.Duration) (frame lipsync.Frame, emitted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.provider.Snapshot(l.snap) {
		if l.neutral {
			return lipsync.Frame{}, false
		}

		l.state = lipsync.State{}
		l.neutral = true
		l.emit(lipsync.Frame{})
		metrics.FrameEmitted(false)
		l.log.Debug().Msg("mouth neutral")

		return lipsync.Frame{}, true
	}

	l.neutral = false
	frame, l.state = lipsync.Update(l.snap, l.state, dt, l.cfg)
	l.emit(frame)
	metrics.FrameEmitted(true)

	return frame, true
}

// Reset drops the smoothing state. The next idle tick emits zeros again.
func (l *Loop) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = lipsync.State{}
	l.neutral = false
}

// State returns the current smoothed weights.
func (l *Loop) State() lipsync.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) emit(frame lipsync.Frame) {
	if sink, ok := l.target.(FrameSink); ok {
		sink.EmitFrame(frame)
		return
	}
	frame.Each(l.target.SetFixedValue)
}

// Run ticks at fps until ctx is done.
func (l *Loop) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = DefaultFPS
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	l.log.Info().Int("fps", fps).Msg("animation loop started")

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.log.Info().Msg("animation loop stopped")
			return ctx.Err()
		case now := <-ticker.C:
			l.Tick(now.Sub(last))
			last = now
		}
	}
}

// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ik5/talkinghead/analysis"
	"github.com/ik5/talkinghead/audio"
	"github.com/ik5/talkinghead/fetch"
	"github.com/ik5/talkinghead/internal/metrics"
)

// DefaultSampleRate is the rate clips are decoded to for analysis.
const DefaultSampleRate = 48000

// Session is one clip being played.
type Session struct {
	ID      string
	Source  string
	Started time.Time

	clip     *audio.Buffer
	out      Output
	analyser *analysis.Analyser
	window   []float32
	done     chan struct{}
}

func (s *Session) Duration() time.Duration { return s.clip.Duration() }

// Done is closed when the session ends or is stopped.
func (s *Session) Done() <-chan struct{} { return s.done }

// state is either idle{} or playing{}; there is no third shape.
type state interface{ isState() }

type idle struct{}

type playing struct{ session *Session }

func (idle) isState()    {}
func (playing) isState() {}

// Status is a point in time view of the controller.
type Status struct {
	Playing   bool          `json:"playing"`
	SessionID string        `json:"session_id,omitempty"`
	Source    string        `json:"source,omitempty"`
	Position  time.Duration `json:"position,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

type Option func(*Controller)

// WithOutput sets the factory for per-session outputs. Defaults to
// NewClockOutput.
func WithOutput(newOutput func() Output) Option {
	return func(c *Controller) { c.newOutput = newOutput }
}

// WithGetter sets how URL inputs are downloaded. Defaults to a
// fetch.Client.
func WithGetter(g Getter) Option {
	return func(c *Controller) { c.getter = g }
}

func WithSampleRate(rate int) Option {
	return func(c *Controller) { c.rate = rate }
}

func WithAnalysis(cfg analysis.Config) Option {
	return func(c *Controller) { c.analysis = cfg }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// Controller plays at most one clip at a time. Starting a clip stops the
// previous one first.
type Controller struct {
	mu         sync.Mutex
	state      state
	last       *audio.Buffer
	lastSource string

	registry  *audio.Registry
	getter    Getter
	newOutput func() Output
	rate      int
	analysis  analysis.Config
	log       zerolog.Logger

	listeners []func()
}

func NewController(registry *audio.Registry, opts ...Option) *Controller {
	c := &Controller{
		state:     idle{},
		registry:  registry,
		getter:    fetch.NewClient(),
		newOutput: func() Output { return NewClockOutput() },
		rate:      DefaultSampleRate,
		analysis:  analysis.DefaultConfig(),
		log:       zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// OnIdle registers fn to run after every transition to idle, outside the
// controller lock.
func (c *Controller) OnIdle(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Play stops any active clip, then loads, decodes and starts in. On error
// the controller is left idle.
func (c *Controller) Play(ctx context.Context, in Input) (*Session, error) {
	c.Stop()

	data, err := in.Load(ctx, c.getter)
	if err != nil {
		metrics.RecordError("fetch", "playback")
		return nil, fmt.Errorf("load %s: %w", in, err)
	}

	clip, err := c.registry.DecodeClip(data, c.rate)
	if err != nil {
		metrics.RecordError("decode", "playback")
		return nil, err
	}

	return c.start(clip, in.String())
}

// Replay stops any active clip, then plays the most recently decoded clip
// again.
func (c *Controller) Replay(context.Context) (*Session, error) {
	c.Stop()

	c.mu.Lock()
	clip, source := c.last, c.lastSource
	c.mu.Unlock()

	if clip == nil {
		return nil, ErrNothingToReplay
	}

	return c.start(clip, source)
}

func (c *Controller) start(clip *audio.Buffer, source string) (*Session, error) {
	analyser := analysis.NewAnalyser(c.analysis)
	s := &Session{
		ID:       uuid.NewString(),
		Source:   source,
		clip:     clip,
		out:      c.newOutput(),
		analyser: analyser,
		window:   make([]float32, analyser.FFTSize()),
		done:     make(chan struct{}),
	}

	c.mu.Lock()
	replaced := c.stopLocked(metrics.OutcomeReplaced)

	s.Started = time.Now()
	if err := s.out.Start(clip, func() { c.ended(s) }); err != nil {
		c.mu.Unlock()
		if replaced {
			c.notifyIdle()
		}
		metrics.RecordError("output", "playback")
		return nil, fmt.Errorf("start output: %w", err)
	}

	c.state = playing{session: s}
	c.last, c.lastSource = clip, source
	c.mu.Unlock()

	// a concurrent start slipped in after Stop; its listeners still see
	// the transition through idle
	if replaced {
		c.notifyIdle()
	}

	metrics.SessionStarted(clip.Duration())
	c.log.Info().
		Str("session", s.ID).
		Str("source", source).
		Dur("duration", clip.Duration()).
		Msg("playback started")

	return s, nil
}

// Stop halts the active clip, if any. Calling it while idle is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	stopped := c.stopLocked(metrics.OutcomeStopped)
	c.mu.Unlock()

	if stopped {
		c.notifyIdle()
	}
}

// stopLocked moves to idle and reports whether a session was active.
func (c *Controller) stopLocked(outcome string) bool {
	p, ok := c.state.(playing)
	if !ok {
		return false
	}

	if err := p.session.out.Stop(); err != nil && !errors.Is(err, ErrAlreadyStopped) {
		c.log.Warn().Err(err).Str("session", p.session.ID).Msg("stop output")
	}

	c.finishLocked(p.session, outcome)

	return true
}

func (c *Controller) finishLocked(s *Session, outcome string) {
	c.state = idle{}
	close(s.done)

	metrics.SessionFinished(outcome)
	c.log.Info().Str("session", s.ID).Str("outcome", outcome).Msg("playback finished")
}

// ended is the output callback. Callbacks from sessions that are no longer
// current are ignored.
func (c *Controller) ended(s *Session) {
	c.mu.Lock()
	p, ok := c.state.(playing)
	if !ok || p.session != s {
		c.mu.Unlock()
		c.log.Debug().Str("session", s.ID).Msg("stale end callback")
		return
	}
	c.finishLocked(s, metrics.OutcomeEnded)
	c.mu.Unlock()

	c.notifyIdle()
}

func (c *Controller) notifyIdle() {
	c.mu.Lock()
	listeners := append([]func(){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.state.(playing)
	return ok
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.state.(playing)
	if !ok {
		return Status{}
	}

	return Status{
		Playing:   true,
		SessionID: p.session.ID,
		Source:    p.session.Source,
		Position:  p.session.out.Position(),
		Duration:  p.session.Duration(),
	}
}

// Wait blocks until the controller is idle or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		p, ok := c.state.(playing)
		c.mu.Unlock()

		if !ok {
			return nil
		}

		select {
		case <-p.session.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Snapshot fills dst with the spectrum under the play head. It reports
// false, leaving dst untouched, while idle.
func (c *Controller) Snapshot(dst analysis.Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.state.(playing)
	if !ok {
		return false
	}

	s := p.session
	s.clip.Window(s.clip.Offset(s.out.Position()), s.window)
	s.analyser.ByteFrequencyData(s.window, dst)

	return true
}

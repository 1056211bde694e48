// SPDX-License-Identifier: EPL-2.0

package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ik5/talkinghead/playback"
	"github.com/ik5/talkinghead/transcript"
)

// Player plays synthesized speech. *playback.Controller satisfies it.
type Player interface {
	Play(ctx context.Context, in playback.Input) (*playback.Session, error)
}

// Messages are the canned bot lines of the widget.
type Messages struct {
	Greetings   []string
	EmptyPrompt string
	Thinking    string
	Failure     string
}

func DefaultMessages() Messages {
	return Messages{
		Greetings: []string{
			"Hello! I'm your AI assistant.",
			"How can I help you today?",
		},
		EmptyPrompt: "You need to ask a question. Please don't hesitate!",
		Thinking:    "Thinking...",
		Failure:     "Something went wrong. Please try again.",
	}
}

type SessionOption func(*Session)

func WithMessages(m Messages) SessionOption {
	return func(s *Session) { s.messages = m }
}

// WithPlayer enables speaking answers once TTS is switched on.
func WithPlayer(p Player) SessionOption {
	return func(s *Session) { s.player = p }
}

func WithSessionLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// Session is one chat widget: it writes bubbles into a transcript and
// speaks answers when TTS is on.
type Session struct {
	client     *Client
	transcript *transcript.Transcript
	player     Player
	messages   Messages
	log        zerolog.Logger

	tts  atomic.Bool
	send sync.Mutex
}

// NewSession posts the greetings into tr.
func NewSession(client *Client, tr *transcript.Transcript, opts ...SessionOption) *Session {
	s := &Session{
		client:     client,
		transcript: tr,
		messages:   DefaultMessages(),
		log:        zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	for _, greeting := range s.messages.Greetings {
		tr.AppendMessage(greeting, transcript.RoleBot)
	}

	return s
}

// ToggleTTS flips speech output and returns the new setting.
func (s *Session) ToggleTTS() bool {
	for {
		old := s.tts.Load()
		if s.tts.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (s *Session) SetTTS(on bool)   { s.tts.Store(on) }
func (s *Session) TTSEnabled() bool { return s.tts.Load() }

// Send asks question and fills a bot bubble with the answer. The bubble
// shows a placeholder until the first chunk arrives and turns into an
// error line holding the failure text if the request fails; the error is
// still returned.
func (s *Session) Send(ctx context.Context, question string) (*transcript.Entry, error) {
	s.send.Lock()
	defer s.send.Unlock()

	question = strings.TrimSpace(question)
	if question == "" {
		return s.transcript.AppendMessage(s.messages.EmptyPrompt, transcript.RoleBot), ErrEmptyQuestion
	}

	s.transcript.AppendMessage(question, transcript.RoleUser)
	bubble := s.transcript.AppendMessage(s.messages.Thinking, transcript.RoleBot)

	var text strings.Builder
	ans, err := s.client.Ask(ctx, question, func(chunk string) {
		text.WriteString(chunk)
		bubble.SetText(text.String())
	})
	if err != nil {
		s.log.Error().Err(err).Msg("ask backend")
		bubble.SetLine(transcript.RoleError, s.messages.Failure)
		return bubble, err
	}

	// an empty stream leaves the placeholder in place
	if ans.Text == "" {
		return bubble, nil
	}

	bubble.SetText(ans.Text)
	s.speak(ctx, ans.Text)

	return bubble, nil
}

// speak is best effort: failures are logged, never shown.
func (s *Session) speak(ctx context.Context, text string) {
	if !s.tts.Load() || s.player == nil || text == "" {
		return
	}

	data, err := s.client.Synthesize(ctx, text)
	if err != nil {
		s.log.Warn().Err(err).Msg("synthesize answer")
		return
	}

	if _, err := s.player.Play(ctx, playback.BlobInput(data)); err != nil {
		s.log.Warn().Err(err).Msg("play answer")
	}
}

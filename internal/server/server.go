// SPDX-License-Identifier: EPL-2.0

// Package server exposes the avatar driver over HTTP: playback control,
// the overlay transcript, an optional chat endpoint and a websocket that
// streams morph frames.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ik5/talkinghead/audio"
	"github.com/ik5/talkinghead/chat"
	"github.com/ik5/talkinghead/fetch"
	"github.com/ik5/talkinghead/playback"
	"github.com/ik5/talkinghead/transcript"
)

const maxUpload = 32 << 20

// Deps are the components the server routes to. Chat may be nil.
type Deps struct {
	Player     *playback.Controller
	Transcript *transcript.Transcript
	Chat       *chat.Session
	Hub        *Hub
	Metrics    bool
	Logger     zerolog.Logger
}

type Server struct {
	deps Deps
	log  zerolog.Logger
}

func New(deps Deps) *Server {
	if deps.Hub == nil {
		deps.Hub = NewHub(deps.Logger)
	}
	return &Server{deps: deps, log: deps.Logger}
}

func (s *Server) Hub() *Hub { return s.deps.Hub }

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/ws", s.deps.Hub)
	if s.deps.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/avatar", func(av chi.Router) {
			av.Post("/play", s.handlePlay)
			av.Post("/replay", s.handleReplay)
			av.Post("/stop", s.handleStop)
			av.Get("/status", s.handleStatus)
			av.Post("/qa", s.handleQA)
			av.Get("/transcript", s.handleTranscript)
		})

		if s.deps.Chat != nil {
			api.Route("/chat", func(c chi.Router) {
				c.Post("/ask", s.handleAsk)
				c.Post("/tts", s.handleTTS)
			})
		}
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type playRequest struct {
	URL string `json:"url"`
}

type playResponse struct {
	SessionID  string `json:"session_id"`
	Source     string `json:"source"`
	DurationMS int64  `json:"duration_ms"`
}

// handlePlay accepts either {"url": "..."} or the raw clip as the body.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var in playback.Input

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req playRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			respondError(w, http.StatusBadRequest, "body must be {\"url\": \"...\"}")
			return
		}
		in = playback.URLInput(req.URL)
	} else {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpload))
		if err != nil {
			respondError(w, http.StatusRequestEntityTooLarge, "clip too large")
			return
		}
		in = playback.BlobInput(data)
	}

	// the clip outlives the request
	session, err := s.deps.Player.Play(context.WithoutCancel(r.Context()), in)
	if err != nil {
		s.playError(w, err)
		return
	}

	s.NotifyStatus()
	respondJSON(w, http.StatusOK, playResponse{
		SessionID:  session.ID,
		Source:     session.Source,
		DurationMS: session.Duration().Milliseconds(),
	})
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	session, err := s.deps.Player.Replay(r.Context())
	if err != nil {
		s.playError(w, err)
		return
	}

	s.NotifyStatus()
	respondJSON(w, http.StatusOK, playResponse{
		SessionID:  session.ID,
		Source:     session.Source,
		DurationMS: session.Duration().Milliseconds(),
	})
}

func (s *Server) playError(w http.ResponseWriter, err error) {
	var (
		fetchErr  *fetch.FetchError
		decodeErr *audio.DecodeError
	)

	s.log.Warn().Err(err).Msg("play")

	switch {
	case errors.As(err, &fetchErr):
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &decodeErr):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, playback.ErrEmptyInput), errors.Is(err, playback.ErrNothingToReplay):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "playback failed")
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.deps.Player.Stop()
	s.NotifyStatus()
	respondJSON(w, http.StatusOK, s.deps.Player.Status())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Player.Status())
}

// NotifyStatus pushes the playback status to websocket clients.
func (s *Server) NotifyStatus() {
	s.deps.Hub.Broadcast(Message{Type: TypeStatus, Data: s.deps.Player.Status()})
}

type qaRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (s *Server) handleQA(w http.ResponseWriter, r *http.Request) {
	var req qaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Question == "" && req.Answer == "" {
		respondError(w, http.StatusBadRequest, "question or answer is required")
		return
	}

	entry := s.deps.Transcript.AppendQA(req.Question, req.Answer)
	s.broadcastTranscript()

	respondJSON(w, http.StatusCreated, map[string]int{"id": entry.ID()})
}

// handleTranscript serves JSON by default, markdown with ?format=markdown
// and glamour output with ?format=text.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("format") {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, s.deps.Transcript.Markdown())
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := s.deps.Transcript.Render(w); err != nil {
			s.log.Warn().Err(err).Msg("render transcript")
		}
	default:
		respondJSON(w, http.StatusOK, s.deps.Transcript.Entries())
	}
}

func (s *Server) broadcastTranscript() {
	s.deps.Hub.Broadcast(Message{Type: TypeTranscript, Data: s.deps.Transcript.Entries()})
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	ID     int    `json:"id"`
	Answer string `json:"answer"`
	Error  string `json:"error,omitempty"`
}

// handleAsk runs one chat turn. Backend failures still answer 200 with the
// failure bubble so the page can show it inline.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	entry, err := s.deps.Chat.Send(r.Context(), req.Question)
	s.broadcastTranscript()

	resp := askResponse{ID: entry.ID(), Answer: entry.Text()}
	if err != nil {
		resp.Error = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	var on bool
	if req.Enabled != nil {
		s.deps.Chat.SetTTS(*req.Enabled)
		on = *req.Enabled
	} else {
		on = s.deps.Chat.ToggleTTS()
	}

	respondJSON(w, http.StatusOK, map[string]bool{"enabled": on})
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.deps.Hub.Close()
	return srv.Shutdown(shutdownCtx)
}

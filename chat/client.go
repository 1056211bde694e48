// SPDX-License-Identifier: EPL-2.0

// Package chat talks to the question answering backend and glues its
// answers into a transcript and, optionally, speech.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ik5/talkinghead/fetch"
	"github.com/ik5/talkinghead/internal/metrics"
)

const (
	PredictPath = "/predict"
	TTSPath     = "/api/tts"

	streamChunk = 4096
)

type Answer struct {
	Text     string
	Streamed bool // the backend answered with a text/plain stream
}

type Option func(*Client)

// WithTTSURL points speech synthesis somewhere other than the backend.
func WithTTSURL(url string) Option {
	return func(c *Client) { c.ttsURL = url }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

type Client struct {
	http    *fetch.Client
	baseURL string
	ttsURL  string
	log     zerolog.Logger
}

func NewClient(httpClient *fetch.Client, baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Client{
		http:    httpClient,
		baseURL: baseURL,
		ttsURL:  baseURL + TTSPath,
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Ask posts question to the backend. A text/plain reply is read as it
// arrives and every decoded piece is passed to onChunk; any other reply
// must be JSON carrying a non-empty "answer".
func (c *Client) Ask(ctx context.Context, question string, onChunk func(string)) (ans Answer, err error) {
	start := time.Now()
	defer func() { metrics.ObserveBackend("predict", start, err) }()

	resp, err := c.http.PostJSON(ctx, c.baseURL+PredictPath, map[string]string{"question": question})
	if err != nil {
		return Answer{}, err
	}
	defer resp.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		text, err := readStream(resp.Body, onChunk)
		if err != nil {
			return Answer{}, fmt.Errorf("read answer stream: %w", err)
		}
		c.log.Debug().Int("bytes", len(text)).Msg("streamed answer")
		return Answer{Text: text, Streamed: true}, nil
	}

	var body struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Answer{}, &MalformedResponseError{Endpoint: PredictPath, Reason: "invalid JSON", Err: err}
	}
	if body.Answer == "" {
		return Answer{}, &MalformedResponseError{Endpoint: PredictPath, Reason: "missing answer"}
	}

	if onChunk != nil {
		onChunk(body.Answer)
	}

	return Answer{Text: body.Answer}, nil
}

// readStream hands out chunks on rune boundaries so a multi-byte character
// split across reads is never emitted in halves.
func readStream(r io.Reader, onChunk func(string)) (string, error) {
	var (
		full    strings.Builder
		pending []byte
		buf     = make([]byte, streamChunk)
	)

	for {
		n, err := r.Read(buf)
		pending = append(pending, buf[:n]...)

		cut := len(pending)
		if err == nil {
			cut = completePrefix(pending)
		}
		if cut > 0 {
			piece := string(pending[:cut])
			full.WriteString(piece)
			if onChunk != nil {
				onChunk(piece)
			}
			pending = pending[cut:]
		}

		if errors.Is(err, io.EOF) {
			return full.String(), nil
		}
		if err != nil {
			return full.String(), err
		}
	}
}

// completePrefix returns the length of b without a trailing incomplete
// UTF-8 sequence.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	return len(b)
}

// Synthesize asks the TTS service to speak text and returns the encoded
// audio.
func (c *Client) Synthesize(ctx context.Context, text string) (data []byte, err error) {
	start := time.Now()
	defer func() { metrics.ObserveBackend("tts", start, err) }()

	resp, err := c.http.PostJSON(ctx, c.ttsURL, map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}
	if len(data) == 0 {
		return nil, &MalformedResponseError{Endpoint: TTSPath, Reason: "empty audio"}
	}

	return data, nil
}

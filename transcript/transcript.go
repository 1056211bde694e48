// SPDX-License-Identifier: EPL-2.0

// Package transcript keeps the bounded chat history shown next to the
// avatar and renders it as markdown.
package transcript

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// DefaultLimit is the number of entries the avatar overlay keeps.
const DefaultLimit = 2

type Role string

const (
	RoleUser  Role = "user"
	RoleBot   Role = "bot"
	RoleError Role = "error"
)

type Line struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Entry is one bubble group: a single message or a question and answer
// pair.
type Entry struct {
	t     *Transcript
	id    int
	lines []Line
}

// View is a copy of an entry safe to hand out.
type View struct {
	ID    int    `json:"id"`
	Lines []Line `json:"lines"`
}

func (e *Entry) ID() int { return e.id }

// SetText replaces the text of the entry's last line, which is how a
// streamed answer grows in place.
func (e *Entry) SetText(text string) {
	e.t.mu.Lock()
	defer e.t.mu.Unlock()
	e.lines[len(e.lines)-1].Text = text
}

// SetLine replaces the entry's last line, role included. A failed answer
// turns its bubble into an error this way.
func (e *Entry) SetLine(role Role, text string) {
	e.t.mu.Lock()
	defer e.t.mu.Unlock()
	e.lines[len(e.lines)-1] = Line{Role: role, Text: text}
}

// Text returns the last line of the entry.
func (e *Entry) Text() string {
	e.t.mu.RLock()
	defer e.t.mu.RUnlock()
	return e.lines[len(e.lines)-1].Text
}

type Option func(*Transcript)

// WithLimit caps the number of entries. Zero keeps everything.
func WithLimit(n int) Option {
	return func(t *Transcript) { t.limit = max(n, 0) }
}

// WithStyle picks a glamour standard style such as "dark" or "notty".
func WithStyle(style string) Option {
	return func(t *Transcript) { t.style = style }
}

func WithWordWrap(width int) Option {
	return func(t *Transcript) { t.width = width }
}

type Transcript struct {
	mu      sync.RWMutex
	limit   int
	entries []*Entry
	nextID  int

	style string
	width int
}

func New(opts ...Option) *Transcript {
	t := &Transcript{
		limit: DefaultLimit,
		style: "notty",
		width: 80,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// AppendMessage adds a single line entry.
func (t *Transcript) AppendMessage(text string, role Role) *Entry {
	return t.append(Line{Role: role, Text: text})
}

// AppendQA adds a question and its answer as one entry.
func (t *Transcript) AppendQA(question, answer string) *Entry {
	return t.append(Line{Role: RoleUser, Text: question}, Line{Role: RoleBot, Text: answer})
}

func (t *Transcript) append(lines ...Line) *Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	e := &Entry{t: t, id: t.nextID, lines: lines}
	t.entries = append(t.entries, e)

	if t.limit > 0 && len(t.entries) > t.limit {
		drop := len(t.entries) - t.limit
		clear(t.entries[:drop])
		t.entries = t.entries[drop:]
	}

	return e
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Entries returns the retained entries, oldest first.
func (t *Transcript) Entries() []View {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]View, len(t.entries))
	for i, e := range t.entries {
		out[i] = View{ID: e.id, Lines: append([]Line(nil), e.lines...)}
	}

	return out
}

// Markdown returns the transcript as markdown source.
func (t *Transcript) Markdown() string {
	var b strings.Builder

	for i, e := range t.Entries() {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		for _, l := range e.Lines {
			switch l.Role {
			case RoleUser:
				fmt.Fprintf(&b, "**Q:** %s\n\n", l.Text)
			case RoleError:
				fmt.Fprintf(&b, "> **Error:** %s\n\n", l.Text)
			default:
				fmt.Fprintf(&b, "%s\n\n", l.Text)
			}
		}
	}

	return b.String()
}

// Render writes the transcript through glamour.
func (t *Transcript) Render(w io.Writer) error {
	md := t.Markdown()
	if strings.TrimSpace(md) == "" {
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(t.style),
		glamour.WithWordWrap(t.width),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render transcript: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}

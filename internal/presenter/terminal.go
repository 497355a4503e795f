package presenter

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fredrikhr/restview/internal/render"
)

// TerminalSurface renders documents to a writer, one after another.
// "Reuse" has no meaning on an append-only stream, so every document
// gets a fresh id; the most recent one counts as active.
type TerminalSurface struct {
	mu     sync.Mutex
	w      io.Writer
	seq    int
	active string
}

func NewTerminalSurface(w io.Writer) *TerminalSurface {
	return &TerminalSurface{w: w}
}

func (s *TerminalSurface) ShowDocument(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := fmt.Sprintf("term-%d", s.seq)
	s.active = id

	if doc.Title != "" {
		fmt.Fprintln(s.w, doc.Title)
	}
	if render.Printable(doc.Content) {
		if err := render.Highlight(s.w, string(doc.Content), doc.ContentType); err != nil {
			return "", err
		}
		fmt.Fprintln(s.w)
	} else {
		fmt.Fprintf(s.w, "<binary body, %d bytes>\n", len(doc.Content))
	}
	return id, nil
}

func (s *TerminalSurface) OpenExternal(ctx context.Context, uri, viewer string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return LaunchFile(uri, viewer)
}

func (s *TerminalSurface) ActiveDocument() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.active != ""
}

// Format is a no-op success: terminal output is already rendered by
// the time the store asks.
func (s *TerminalSurface) Format(ctx context.Context, documentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

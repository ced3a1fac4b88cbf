package commands

import (
	"fmt"
	"io"

	"github.com/dastanaron/signupsaver/internal/models"
	"github.com/dastanaron/signupsaver/internal/popup"
)

// ConsoleSurface prints popup rows and status messages as plain lines.
// One-shot commands exit right away, so messages are never hidden.
type ConsoleSurface struct {
	out io.Writer
}

// NewConsoleSurface creates a surface writing to out
func NewConsoleSurface(out io.Writer) *ConsoleSurface {
	return &ConsoleSurface{out: out}
}

func (s *ConsoleSurface) Append(b models.Bookmark) {
	fmt.Fprintf(s.out, "%s\t%s\t%s\n", b.ID, b.Title, b.URL)
}

func (s *ConsoleSurface) Prepend(b models.Bookmark) {
	s.Append(b)
}

func (s *ConsoleSurface) Remove(string) {}

func (s *ConsoleSurface) Notify(key popup.StatusKey) {
	fmt.Fprintln(s.out, key.Text())
}

package runner

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// ContentRenderer transforms text before it is printed (e.g. markdown to ANSI).
type ContentRenderer func(string) (string, error)

// NewMarkdownRenderer renders markdown with glamour, picking a light or dark
// style from the terminal background.
func NewMarkdownRenderer() (ContentRenderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// AutoRenderer returns a markdown renderer when w is a terminal, and nil
// (plain text) otherwise.
func AutoRenderer(w io.Writer) ContentRenderer {
	if !IsTerminal(w) {
		return nil
	}
	r, err := NewMarkdownRenderer()
	if err != nil {
		return nil
	}
	return r
}

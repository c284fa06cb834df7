package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// IsInteractive reports whether stdout is a terminal. Piped output gets the
// raw answer text instead of styled markdown.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// NewRenderer returns a function that renders an answer for the terminal.
// Interactive sessions get glamour-styled markdown; everything else passes
// through unchanged so scripts can parse the output.
func NewRenderer() func(string) (string, error) {
	if !IsInteractive() {
		return func(text string) (string, error) {
			return text, nil
		}
	}

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

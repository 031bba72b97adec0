// Package logging builds the slog loggers used by the binaries.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// New returns a text logger when the output is a terminal and a JSON logger
// otherwise, so piped output stays machine-parseable.
func New(w io.Writer, level slog.Level, terminal bool) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

// NewStderr picks the handler from whether stderr is a tty.
func NewStderr(level slog.Level) *slog.Logger {
	return New(os.Stderr, level, term.IsTerminal(int(os.Stderr.Fd())))
}

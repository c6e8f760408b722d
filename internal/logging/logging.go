// Package logging builds the structured loggers used by the binaries.
package logging

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// NewHandler returns a charmbracelet logger writing to w at the given level.
// It implements slog.Handler and also serves printf-style callers such as the
// SSH connection logging middleware.
func NewHandler(w io.Writer, level slog.Level, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           log.Level(level),
		Prefix:          prefix,
		ReportTimestamp: true,
	})
}

// New returns a slog logger backed by a charmbracelet handler.
func New(w io.Writer, level slog.Level, prefix string) *slog.Logger {
	return slog.New(NewHandler(w, level, prefix))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

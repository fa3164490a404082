package main

import (
	"io"
	"log/slog"
)

// newLogger writes text records to w: errors only with --quiet, debug
// records with --verbose, info otherwise.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.quiet:
		level = slog.LevelError
	case f.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Package logging configures the zerolog logger and carries it in a context.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string
	// Format is json, console, or auto (console on a terminal).
	Format string
	NoColor bool
}

type contextKey struct{}

var defaultLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// New builds a logger writing to w according to cfg.
func New(w io.Writer, cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if useConsole(w, cfg.Format) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: cfg.NoColor}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func useConsole(w io.Writer, format string) bool {
	switch strings.ToLower(format) {
	case "console", "pretty":
		return true
	case "json":
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// SetDefault replaces the logger returned when a context carries none.
func SetDefault(l zerolog.Logger) { defaultLogger = l }

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, &l)
}

// Ctx extracts the logger from context, or returns the default logger.
func Ctx(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	return &defaultLogger
}

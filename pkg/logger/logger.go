// Package logger configures the application-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"

	slogsentry "github.com/samber/slog-sentry/v2"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	Level string
	// File enables rotated file output next to stdout when non-empty.
	File string
	// SentryEnabled fans error-level records out to Sentry (sentry.Init must
	// have been called by the composition root).
	SentryEnabled bool
}

// New builds the process logger: text output to stdout (and a rotated file when
// configured), sensitive-attribute masking, and optional Sentry fan-out.
func New(opts Options) *slog.Logger {
	var out io.Writer = os.Stdout
	if opts.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	handler := slog.Handler(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLevel(opts.Level),
	}))
	handler = NewMaskingHandler(handler)

	if opts.SentryEnabled {
		handler = fanout{
			handlers: []slog.Handler{
				handler,
				slogsentry.Option{Level: slog.LevelError}.NewSentryHandler(),
			},
		}
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

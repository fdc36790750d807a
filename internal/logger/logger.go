package logger

import (
	"log/slog"
	"os"
)

// Logger is a thin JSON logger used by the long-lived parts of the terminal
// (payment sessions, the push-channel client, the composition root). HTTP
// request logging stays with chi's middleware.
type Logger struct {
	service string
	sl      *slog.Logger
}

// New creates a JSON logger tagged with the service name.
func New(service string) *Logger {
	hostname, _ := os.Hostname()

	sl := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})).With(
		slog.String("service", service),
		slog.String("hostname", hostname),
	)

	return &Logger{service: service, sl: sl}
}

// Info logs an informational event under an action tag.
func (l *Logger) Info(action, message string, attrs ...slog.Attr) {
	l.sl.Info(message, toArgs(action, attrs)...)
}

// Debug logs a debug event under an action tag.
func (l *Logger) Debug(action, message string, attrs ...slog.Attr) {
	l.sl.Debug(message, toArgs(action, attrs)...)
}

// Error logs a failure with its error under an action tag.
func (l *Logger) Error(action, message string, err error, attrs ...slog.Attr) {
	args := toArgs(action, attrs)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	l.sl.Error(message, args...)
}

func toArgs(action string, attrs []slog.Attr) []any {
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("action", action))
	for _, a := range attrs {
		args = append(args, a)
	}
	return args
}

package spectra

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with table-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON records to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

func defaultLogger() *Logger {
	return &Logger{Logger: slog.Default()}
}

// WithTable tags records with the table name.
func (l *Logger) WithTable(name string) *Logger {
	if name == "" {
		return l
	}
	return &Logger{Logger: l.Logger.With("table", name)}
}

// LogNoop records an operation that was refused because its effect is
// already in place.
func (l *Logger) LogNoop(op, reason string) {
	l.Warn("operation skipped", "op", op, "reason", reason)
}

// LogVectorHealth warns about zeros and NaNs in a divisor vector.
func (l *Logger) LogVectorHealth(role string, zeros, nans int) {
	if zeros == 0 && nans == 0 {
		return
	}
	l.Warn(role+" contains zeros or NaNs; division will produce Inf/NaN",
		"role", role,
		"zeros", zeros,
		"nans", nans,
	)
}

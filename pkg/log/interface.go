// Package log provides the structured logging interface used across hdlogit.
//
// The Logger interface is a thin, slog-compatible surface so that estimators
// can be handed any backend (the default slog logger, a TestLogger in tests).
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "HDLogisticRegression",
//	    log.EstimatorIDKey, id,
//	)
//	logger.Info("fit completed",
//	    log.SamplesKey, 200,
//	    log.FeaturesKey, 500,
//	    log.ModelSizeKey, 4,
//	)

package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. With returns a child logger whose
// records always carry the given fields.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip building expensive fields, e.g. per-step diagnostics
	// inside the CGA loop.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

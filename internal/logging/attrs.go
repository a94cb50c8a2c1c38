package logging

import (
	"context"
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so callers can build structured fields without
// importing log/slog directly.
type Attr = slog.Attr

func String(key, value string) Attr          { return slog.String(key, value) }
func Int(key string, value int) Attr         { return slog.Int(key, value) }
func Int64(key string, value int64) Attr     { return slog.Int64(key, value) }
func Uint64(key string, value uint64) Attr   { return slog.Uint64(key, value) }
func Bool(key string, value bool) Attr       { return slog.Bool(key, value) }
func Duration(key string, d time.Duration) Attr { return slog.Duration(key, d) }
func Any(key string, value any) Attr         { return slog.Any(key, value) }

// Error wraps an error value under the conventional "error" key.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Args converts attrs into the variadic ...any form slog methods take.
func Args(attrs ...Attr) []any {
	out := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, attr)
	}
	return out
}

// Shared structured-field keys.
const (
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
)

// NoopHandler discards all records.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h NoopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h NoopHandler) WithGroup(string) slog.Handler           { return h }

// NewNop returns a logger that drops everything. Useful in tests and as a
// safe default when callers pass a nil logger.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags every record with a component field.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext logs a warning with the error attached plus any extra
// context fields.
func WarnWithContext(logger *slog.Logger, msg string, err error, attrs ...Attr) {
	if logger == nil {
		return
	}
	all := make([]any, 0, len(attrs)+1)
	if err != nil {
		all = append(all, Error(err))
	}
	for _, attr := range attrs {
		all = append(all, attr)
	}
	logger.Warn(msg, all...)
}

// ErrorWithContext logs an error with the error attached plus any extra
// context fields.
func ErrorWithContext(logger *slog.Logger, msg string, err error, attrs ...Attr) {
	if logger == nil {
		return
	}
	all := make([]any, 0, len(attrs)+1)
	if err != nil {
		all = append(all, Error(err))
	}
	for _, attr := range attrs {
		all = append(all, attr)
	}
	logger.Error(msg, all...)
}

// Package attr holds the slog attribute helpers used across services and handlers.
package attr

import (
	"context"
	"log/slog"
	"time"
)

type correlationKey struct{}

// WithCorrelationID stores the request correlation id on ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the correlation id stored on ctx, if any.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok {
		return id
	}
	return ""
}

// ExtractCorrelationID returns the correlation id as a log attribute.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", CorrelationID(ctx))
}

func String(key, value string) slog.Attr        { return slog.String(key, value) }
func Int(key string, value int) slog.Attr        { return slog.Int(key, value) }
func Int64(key string, value int64) slog.Attr    { return slog.Int64(key, value) }
func Bool(key string, value bool) slog.Attr      { return slog.Bool(key, value) }
func Float(key string, value float64) slog.Attr  { return slog.Float64(key, value) }
func Any(key string, value any) slog.Attr        { return slog.Any(key, value) }
func Time(key string, value time.Time) slog.Attr { return slog.Time(key, value) }

func Duration(key string, value time.Duration) slog.Attr {
	return slog.Duration(key, value)
}

// Error logs err under the "error" key; a nil error logs an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// UserID tags a log line with the acting player.
func UserID[T ~string](id T) slog.Attr {
	return slog.String("user_id", string(id))
}

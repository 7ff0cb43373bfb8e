// Package logging wraps rs/zerolog with the engine's conventions: a
// console writer in development, JSON in production, one logger per
// component tagged with a "component" field, and trace ID propagation
// through context.Context.
package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ctxKey string

const traceIDKey ctxKey = "trace_id"

// Init configures the global zerolog logger for the given component and
// level, honoring ZEROLOG_FORMAT=console|json (default console). It
// returns a component-scoped logger; log.Logger is also updated so
// package-level log.Info() etc. elsewhere in the process match it.
func Init(component string, level zerolog.Level) zerolog.Logger {
	zerolog.SetGlobalLevel(level)

	var l zerolog.Logger
	if strings.EqualFold(os.Getenv("ZEROLOG_FORMAT"), "json") {
		l = zerolog.New(os.Stdout).With().Timestamp().Str("component", component).Logger()
	} else {
		cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		l = zerolog.New(cw).With().Timestamp().Str("component", component).Logger()
	}

	log.Logger = l
	return l
}

// WithTraceID stores a trace ID in the context for downstream propagation.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID extracts the trace ID from context. Returns "" if not set.
func TraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// GenerateTraceID creates a trace ID from a symbol and timestamp.
// Format: "{symbol}-{unixNano}" — lightweight, no UUID dependency.
func GenerateTraceID(symbol string, ts time.Time) string {
	return fmt.Sprintf("%s-%d", symbol, ts.UnixNano())
}

// FromContext returns a logger enriched with the context's trace ID, if
// any, falling back to the global logger otherwise.
func FromContext(ctx context.Context) zerolog.Logger {
	tid := TraceID(ctx)
	if tid == "" {
		return log.Logger
	}
	return log.Logger.With().Str("trace_id", tid).Logger()
}

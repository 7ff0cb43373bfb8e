package logging

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := TraceID(ctx); got != "" {
		t.Fatalf("expected empty trace id on bare context, got %q", got)
	}

	ctx = WithTraceID(ctx, "abc123")
	if got := TraceID(ctx); got != "abc123" {
		t.Fatalf("TraceID() = %q, want abc123", got)
	}
}

func TestGenerateTraceIDFormat(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	tid := GenerateTraceID("BTCUSDT", ts)
	if !strings.HasPrefix(tid, "BTCUSDT-") {
		t.Fatalf("GenerateTraceID() = %q, want prefix BTCUSDT-", tid)
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	l := FromContext(context.Background())
	// No trace ID on the context: should not panic and should return a
	// usable logger.
	l.Debug().Msg("no trace id set")
}

package logging

import (
	"context"
	"testing"
)

func TestTraceIDContext(t *testing.T) {
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Errorf("TraceIDFromContext() = %q, want empty", got)
	}
	ctx := ContextWithTraceID(context.Background(), "trace-1")
	if got := TraceIDFromContext(ctx); got != "trace-1" {
		t.Errorf("TraceIDFromContext() = %q, want trace-1", got)
	}
}

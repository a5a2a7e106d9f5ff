package logging

import "context"

type traceIDKey struct{}

// ContextWithTraceID はコンテキストにトレースIDを設定する。
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext はコンテキストのトレースIDを返す。未設定の場合は空文字列。
func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

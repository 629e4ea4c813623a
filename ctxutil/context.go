package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// TraceIDKey is the log field name and context key for trace ids.
	TraceIDKey = "trace_id"

	operationKey contextKey = "operation"
	traceKey     contextKey = TraceIDKey
)

// GetTraceID gets trace id from context.Context.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(traceKey).(string); ok {
		return traceID
	}
	return ""
}

// SetTraceID sets trace id to context.Context.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey, traceID)
}

// EnsureTraceID ensures that a trace ID exists in the context.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		return ctx, traceID
	}
	traceID := uuid.NewString()
	return SetTraceID(ctx, traceID), traceID
}

// SetOperation tags the context with the operation being performed,
// e.g. "paging.fetch".
func SetOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// GetOperation returns the operation tag, or "".
func GetOperation(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if op, ok := ctx.Value(operationKey).(string); ok {
		return op
	}
	return ""
}

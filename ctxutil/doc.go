// Package ctxutil carries request-scoped values used across cursorpage,
// most importantly the trace id that the logger attaches to every entry
// and that page fetches inherit from their caller.
//
//	ctx, traceID := ctxutil.EnsureTraceID(context.Background())
//	batch, err := paginator.Fetch(ctx, "", next)
package ctxutil

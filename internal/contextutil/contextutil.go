package contextutil

import "context"

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID returns the request id stored by the RequestID middleware, or "".
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

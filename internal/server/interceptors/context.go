package interceptors

import "context"

type contextKey struct{ name string }

var (
	requestIDKey   = contextKey{"request_id"}
	bearerTokenKey = contextKey{"bearer_token"}
)

// WithRequestID returns a context carrying the request id assigned by LoggingUnary.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request id from context and true if set; otherwise "", false.
func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	return v, ok
}

// WithBearerToken returns a context carrying the raw Bearer token from the request metadata.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}

// GetBearerToken returns the Bearer token from context and true if set; otherwise "", false.
// The token is unverified.
func GetBearerToken(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(bearerTokenKey).(string)
	return v, ok && v != ""
}

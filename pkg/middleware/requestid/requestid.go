package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderKey carries the correlation id on outgoing requests.
const HeaderKey = "X-Request-ID"

type contextKey struct{}

// WithValue stores a request ID on the context so that the next outgoing
// request reuses it instead of generating one.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Value returns the request ID stored on the context.
func Value(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// Transport assigns a request ID to every outgoing HTTP request.
func Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get(HeaderKey) != "" {
			return next.RoundTrip(req)
		}
		reqID := Value(req.Context())
		if reqID == "" {
			reqID = uuid.NewString()
		}
		clone := req.Clone(WithValue(req.Context(), reqID))
		clone.Header.Set(HeaderKey, reqID)
		return next.RoundTrip(clone)
	})
}

// FromRequest returns the ID attached by Transport.
func FromRequest(req *http.Request) string {
	if req == nil {
		return ""
	}
	if id := req.Header.Get(HeaderKey); id != "" {
		return id
	}
	return Value(req.Context())
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

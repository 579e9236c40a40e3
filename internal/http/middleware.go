package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/bookcafe-client/internal/logging"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// RequestLogger wraps a transport so every request carries an X-Request-ID and
// is logged with its method, path, status and duration.
func RequestLogger(base *slog.Logger, newID func() string) func(http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = slog.Default()
	}
	if newID == nil {
		newID = uuid.NewString
	}

	return func(next http.RoundTripper) http.RoundTripper {
		if next == nil {
			next = http.DefaultTransport
		}
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			ctx := r.Context()
			id, ok := RequestIDFromContext(ctx)
			if !ok {
				id = newID()
			}

			out := r.Clone(ctx)
			out.Header.Set(RequestIDHeader, id)

			logger := logging.FromContext(ctx)
			if logger == nil {
				logger = base
			}
			logger = logger.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			start := time.Now()
			logger.DebugContext(ctx, "request started")
			resp, err := next.RoundTrip(out)
			if err != nil {
				logger.WarnContext(ctx, "request failed", "error", err, "duration", time.Since(start))
				return nil, err
			}
			logger.DebugContext(ctx, "request completed", "status", resp.StatusCode, "duration", time.Since(start))
			return resp, nil
		})
	}
}

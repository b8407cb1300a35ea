package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/monadicus/mentat/pkg/rosetta"
)

// Timeout enforces a per-request ceiling using context.WithTimeout. When the
// ceiling is exceeded the request context is cancelled, in-flight outbound
// calls observe the cancellation, and the client receives a 504 carrying the
// gateway error envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(w, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return

			case <-ctx.Done():
				if ctx.Err() != context.DeadlineExceeded {
					// Client went away; nothing useful left to write.
					return
				}

				slog.WarnContext(r.Context(), "request timed out",
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout.String(),
				)

				errResp := rosetta.NewInternalError(
					"Request timeout: the request took too long to complete",
				)
				errResp.Retriable = true

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusGatewayTimeout)
				_ = json.NewEncoder(w).Encode(errResp)
			}
		})
	}
}

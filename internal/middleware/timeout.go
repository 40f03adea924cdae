package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"todosync/pkg/api"
)

// Timeout cancels the request context after the given duration and replies
// 408 if the handler has not finished by then.
func Timeout(timeout time.Duration, logger *zap.Logger) func(next http.Handler) http.Handler {
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
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					logger.Warn("request timed out",
						zap.String("request_id", GetRequestIDFromRequest(r)),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Duration("timeout", timeout),
					)
					api.Error(w, http.StatusRequestTimeout, "Request timeout")
				}
			}
		})
	}
}

// Package middleware provides HTTP middleware for the Recordbox API.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/recordbox/recordbox/internal/repository"
)

// SessionConfig holds configuration for the database session middleware.
type SessionConfig struct {
	Logger     *slog.Logger
	Repository *repository.Repository
}

// DBSession returns a middleware that binds one database session to each
// request. The session is acquired before anything downstream runs, published
// into the request context, and released exactly once on every exit path,
// including panics unwinding through this frame. Acquisition failures are
// fatal for the request; there are no retries.
func DBSession(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := cfg.Repository.Acquire(r.Context())
			if err != nil {
				cfg.Logger.Error("failed to acquire database session",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			defer sess.Release()

			ctx := repository.ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeDetail writes a JSON error body in the {"detail": ...} shape used
// across the API.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"detail":%q}`, detail)
}

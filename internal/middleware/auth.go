package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/recordbox/recordbox/internal/auth"
	"github.com/recordbox/recordbox/internal/repository"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Codec  *auth.TokenCodec
}

// Auth returns a middleware that resolves the identity behind each request.
// A request without an Authorization header passes through as anonymous.
// A present header must carry a bearer token that verifies and references an
// existing user; any failure short-circuits with 401 before routing. The
// middleware does not itself enforce authentication; see RequireUser.
//
// Must run after DBSession: the user lookup goes through the request's
// already-open session.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				// Anonymous request: publish the absence of a user and proceed.
				ctx := auth.ContextWithUser(r.Context(), nil)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[1] == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "malformed_header"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeCredentialsError(w)
				return
			}

			claims, err := cfg.Codec.Verify(parts[1])
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeCredentialsError(w)
				return
			}

			sess := repository.SessionFromContext(r.Context())
			if sess == nil {
				cfg.Logger.Error("auth middleware ran without a database session",
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			user, err := sess.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					// Same outward behavior as a bad token: do not leak
					// whether the subject exists.
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "unknown_user"),
						slog.Int64("user_id", claims.UserID),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeCredentialsError(w)
					return
				}
				cfg.Logger.Error("database error during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeCredentialsError writes the single 401 used for every credential
// failure, with the WWW-Authenticate challenge.
func writeCredentialsError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}

package middleware

import (
	"net/http"

	"github.com/recordbox/recordbox/internal/auth"
)

// RequireUser returns 401 when no user was resolved for the request.
// Apply it to route subtrees that need authentication; open routes
// (signup, login) simply omit it. Must be applied after Auth.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFromContext(r.Context()) == nil {
			writeDetail(w, http.StatusUnauthorized, "User is not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

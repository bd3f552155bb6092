package middleware

import (
	"net/http"
	"strings"

	"coursecraft/internal/auth"
	"coursecraft/internal/httputil"
)

// AuthMiddleware verifies bearer tokens and stashes the user ID in the
// request context. A nil verifier means open single-author mode: requests
// pass through with no user identity. Health checks and the static upload
// mount are always public.
func AuthMiddleware(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil || isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.GetUserID()))
		})
	}
}

func isPublicPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/uploads/")
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/policynav/authcore/internal/handlers/render"
	"github.com/policynav/authcore/internal/handlers/userctx"
)

type sessionValidator interface {
	// Must collapse every verification failure into one opaque error
	ValidateSession(ctx context.Context, token string) (username string, err error)
}

// BearerToken extracts the token from the Authorization header.
// Empty string if the header is missing or not a Bearer scheme.
func BearerToken(r *http.Request) string {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware gates protected routes behind session validation.
// The response is the same 401 whatever the reason: missing header, expired
// token, bad signature or revoked session.
func AuthMiddleware(v sessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := v.ValidateSession(r.Context(), BearerToken(r))
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := userctx.New(r.Context(), username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

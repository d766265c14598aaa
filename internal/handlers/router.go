package handlers

import (
	"net/http"

	"github.com/policynav/authcore/internal/handlers/middleware"
	"github.com/policynav/authcore/internal/handlers/render"
	"github.com/policynav/authcore/internal/handlers/userctx"
	"github.com/policynav/authcore/internal/logger"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(auth authService, log logger.Logger) http.Handler {
	withAuth := middleware.AuthMiddleware(auth)

	apiauth := http.NewServeMux()
	apiauth.Handle("/", NewAuth(auth).Handler())
	apiauth.Handle("GET /me", withAuth(handleMe()))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))

	return chain(root,
		middleware.LoggerMiddleware(log),
	)
}

// handleMe answers with the authenticated username. It exists so the
// surrounding system has a protected route exercising the middleware gate.
func handleMe() http.Handler {
	type MeResponse struct {
		Username string `json:"username"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		render.JSON(w, MeResponse{Username: username})
	})
}

package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/white-jotter/white-jotter/internal/auth"
	"github.com/white-jotter/white-jotter/internal/observability"
	"github.com/white-jotter/white-jotter/internal/rbac"
	"github.com/white-jotter/white-jotter/internal/roles"
	"github.com/white-jotter/white-jotter/internal/shared"
	"github.com/white-jotter/white-jotter/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	AuthHandler    *auth.Handler
	RolesHandler   *roles.Handler
	UsersHandler   *users.Handler
	MenusHandler   *rbac.MenusHandler
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults. Everything
// under /api/admin and the authentication probe sit behind the session
// principal gate; login, logout and register stay public.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(params.RBACMiddleware.RequireAuthenticated)
			params.AuthHandler.MountProtectedRoutes(r)
			params.MenusHandler.MountRoutes(r)

			r.Route("/admin", func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequireAny(rbac.PermUsersManagement))
				params.RolesHandler.MountRoutes(r)
				params.UsersHandler.MountRoutes(r)
				params.MenusHandler.MountAdminRoutes(r)
			})
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

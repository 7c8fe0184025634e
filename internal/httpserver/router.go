package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"authcore/internal/auth"
	"authcore/internal/config"
	"authcore/internal/httpserver/handlers"
	"authcore/internal/models"
	"authcore/internal/session"
	"authcore/internal/store"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Cfg     config.Config
	Lg      *zap.SugaredLogger
	Codec   *auth.CookieCodec
	Auth    *auth.Service
	Reg     *auth.Registrar
	Orch    *session.Orchestrator
	Users   *store.UserStore
	Audit   *store.AuditStore
	Roles   *store.RoleStore
	Sweeper *store.Sweeper

	// Attempts is non-nil only with the relational ledger.
	Attempts *store.AttemptStore

	Sessions *store.SessionStore
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Use(session.Loader(d.Codec, d.Sessions, d.Cfg.CookieName, d.Cfg.CookieSecure, d.Lg))

	r.Post("/v1/auth/register", handlers.Register(d.Reg, d.Cfg, d.Lg))
	r.Post("/v1/auth/login", handlers.Login(d.Auth, d.Orch, d.Codec, d.Cfg, d.Lg))

	r.Group(func(protected chi.Router) {
		protected.Use(session.RequireAuth)
		protected.Post("/v1/auth/logout", handlers.Logout(d.Orch, d.Cfg))
		protected.Get("/v1/me", handlers.Me(d.Users, d.Lg))
		protected.Post("/v1/me/password", handlers.ChangePassword(d.Users, d.Audit, d.Cfg, d.Lg))
		protected.Patch("/v1/me/username", handlers.ChangeUsername(d.Users, d.Audit, d.Lg))
		protected.Get("/v1/sessions", handlers.ListSessions(d.Orch))
		protected.Delete("/v1/sessions/{token}", handlers.RevokeSession(d.Orch))
		protected.Post("/v1/sessions/revoke-others", handlers.RevokeOtherSessions(d.Orch))
		protected.Get("/v1/logs", handlers.MyLogs(d.Audit))
		protected.Get("/v1/logs/stats", handlers.MyLogStats(d.Audit))

		protected.Group(func(admin chi.Router) {
			admin.Use(session.RequireRole(d.Orch, models.RoleAdmin))
			admin.Get("/v1/admin/users", handlers.ListUsers(d.Users, d.Lg))
			admin.Post("/v1/admin/users/{id}/roles/{role}", handlers.GrantRole(d.Roles, d.Lg))
			admin.Delete("/v1/admin/users/{id}/roles/{role}", handlers.RevokeRole(d.Roles, d.Lg))
			admin.Delete("/v1/admin/users/{id}", handlers.DeactivateUser(d.Users, d.Lg))
			admin.Get("/v1/admin/logs", handlers.RecentLogs(d.Audit))
			admin.Get("/v1/admin/attempts", handlers.AttemptHistory(d.Attempts, d.Lg))
			admin.Post("/v1/admin/maintenance/sweep", handlers.RunSweep(d.Sweeper))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

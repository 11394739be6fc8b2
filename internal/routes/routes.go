package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/yhlin/memberdir/internal/auth"
	"github.com/yhlin/memberdir/internal/handlers"
	"github.com/yhlin/memberdir/internal/middleware"
	"github.com/yhlin/memberdir/internal/models"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	settingsHandler *handlers.SettingsHandler,
	importHandler *handlers.ImportHandler,
	sessions *auth.SessionManager,
	cookieConfig auth.CookieConfig,
	rateLimitConfig middleware.RateLimitConfig,
) {
	// Public routes
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/register", authHandler.Register)
	router.Get("/auth/session", authHandler.Session)
	router.Post("/auth/logout", authHandler.Logout)

	// Any live session
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(sessions, cookieConfig))

		r.Get("/accounts", accountHandler.List)
		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings", settingsHandler.Update)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Post("/accounts", accountHandler.Create)
			r.Get("/accounts/{id}", accountHandler.Get)
			r.Put("/accounts/{id}", accountHandler.Update)
			r.Delete("/accounts/{id}", accountHandler.Delete)

			r.Post("/import/preview", importHandler.Preview)
			r.Post("/import", importHandler.Import)
			r.Get("/import/runs", importHandler.Runs)
		})
	})
}

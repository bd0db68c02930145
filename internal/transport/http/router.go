package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/application/auth"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/config"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/transport/http/handler"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	// OPTIONS preflights are answered here with 200 and the CORS headers;
	// they never reach a route handler.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         86400,
	}))

	r.MethodNotAllowed(handler.MethodNotAllowed)

	authSvc := auth.NewService(deps.UserRepo, deps.CodeRepo, deps.Notifier, deps.CodeGen)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)

	r.Get("/health-check/{action}", healthH.Ping)
	r.Post("/auth", authH.Action)

	return r
}

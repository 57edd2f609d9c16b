package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leycura/curabot/internal/api"
	"github.com/leycura/curabot/internal/api/handlers"
	"github.com/leycura/curabot/internal/api/middleware"
)

type RouterConfig struct {
	ChatHandler  *handlers.ChatHandler
	FormsHandler *handlers.FormsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 64 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.CORS)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	// The widget expects a JSON error body on wrong verbs, not chi's
	// plain-text default.
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusNotFound, "not found")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", cfg.ChatHandler.Ask)
		r.Post("/chat/stream", cfg.ChatHandler.AskStream)

		r.Post("/contact", cfg.FormsHandler.Contact)
		r.Post("/newsletter", cfg.FormsHandler.Newsletter)
		r.Post("/sumate", cfg.FormsHandler.Sumate)
	})

	return r
}

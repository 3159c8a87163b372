package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lhyphendixon/sidekick-forge/internal/api"
	"github.com/lhyphendixon/sidekick-forge/internal/api/handlers"
	"github.com/lhyphendixon/sidekick-forge/internal/api/middleware"
	"github.com/lhyphendixon/sidekick-forge/internal/ratelimit"
)

type RouterConfig struct {
	AuthValidator     middleware.AuthValidator
	RateLimiter       *ratelimit.Limiter
	ClientHandler     *handlers.ClientHandler
	AgentHandler      *handlers.AgentHandler
	TriggerHandler    *handlers.TriggerHandler
	DocumentHandler   *handlers.DocumentHandler
	SearchHandler     *handlers.SearchHandler
	TranscriptHandler *handlers.TranscriptHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		if cfg.RateLimiter != nil {
			r.Use(middleware.RateLimit(cfg.RateLimiter))
		}

		r.Route("/agents", func(r chi.Router) {
			r.Post("/", cfg.AgentHandler.Create)
			r.Get("/", cfg.AgentHandler.List)
			r.Get("/{slug}", cfg.AgentHandler.Get)
			r.Put("/{slug}", cfg.AgentHandler.Update)
			r.Delete("/{slug}", cfg.AgentHandler.Delete)
			r.Post("/{slug}/trigger", cfg.TriggerHandler.Trigger)
			r.Post("/{slug}/preview", cfg.TriggerHandler.Preview)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", cfg.TriggerHandler.ListSessions)
			r.Delete("/{id}", cfg.TriggerHandler.StopSession)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", cfg.DocumentHandler.CreateText)
			r.Get("/", cfg.DocumentHandler.List)
			r.Post("/init", cfg.DocumentHandler.InitUpload)
			r.Post("/complete", cfg.DocumentHandler.CompleteUpload)
			r.Get("/{id}", cfg.DocumentHandler.Get)
			r.Get("/{id}/download", cfg.DocumentHandler.GetDownloadURL)
			r.Delete("/{id}", cfg.DocumentHandler.Delete)
		})

		r.Post("/search", cfg.SearchHandler.Search)

		r.Route("/transcripts", func(r chi.Router) {
			r.Post("/", cfg.TranscriptHandler.Append)
			r.Get("/", cfg.TranscriptHandler.List)
		})
	})

	// Provisioning endpoints, used by the operator CLI.
	r.Route("/clients", func(r chi.Router) {
		r.Post("/", cfg.ClientHandler.Create)
		r.Get("/", cfg.ClientHandler.List)
		r.Get("/{id}", cfg.ClientHandler.Get)
		r.Delete("/{id}", cfg.ClientHandler.Deactivate)
	})
	r.Route("/apikeys", func(r chi.Router) {
		r.Post("/", cfg.ClientHandler.CreateAPIKey)
		r.Get("/", cfg.ClientHandler.ListAPIKeys)
		r.Delete("/{id}", cfg.ClientHandler.RevokeAPIKey)
	})

	return r
}

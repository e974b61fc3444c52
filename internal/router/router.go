package router

import (
	"refab-api/internal/handler"
	"refab-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	HealthHandler  *handler.HealthHandler
	OrderHandler   *handler.OrderHandler
	CatalogHandler *handler.CatalogHandler
	WizardHandler  *handler.WizardHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.Health)
		r.Get("/ready", cfg.HealthHandler.Ready)
		r.Get("/status", cfg.HealthHandler.Status)
	}

	// Order submission and lookup
	if cfg.OrderHandler != nil {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.OrderHandler.Submit)
			r.Get("/{order_id}", cfg.OrderHandler.Get)
			r.Get("/{order_id}/tracking", cfg.OrderHandler.Track)
		})
	}

	// Catalog browsing
	if cfg.CatalogHandler != nil {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", cfg.CatalogHandler.Categories)
			r.Get("/issues", cfg.CatalogHandler.Issues)
			r.Get("/models/{model}/storage", cfg.CatalogHandler.Storage)
			r.Get("/{category}/brands", cfg.CatalogHandler.Brands)
			r.Get("/{category}/{brand}/models", cfg.CatalogHandler.Models)
		})
	}

	// Wizard sessions and estimates
	if cfg.WizardHandler != nil {
		r.Route("/wizard/sessions", func(r chi.Router) {
			r.Post("/", cfg.WizardHandler.CreateSession)
			r.Get("/{token}", cfg.WizardHandler.GetSession)
			r.Put("/{token}", cfg.WizardHandler.UpdateSession)
			r.Delete("/{token}", cfg.WizardHandler.DeleteSession)
		})
		r.Post("/estimate", cfg.WizardHandler.Estimate)
	}

	return r
}

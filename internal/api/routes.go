package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/molad-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health
//	GET    /api/v1/hebrew/{date}
//	GET    /api/v1/gregorian/{year}/{month}/{day}
//	GET    /api/v1/years/{year}
//	GET    /api/v1/molad/{year}/{month}
//	GET    /api/v1/rosh-chodesh/{date}
//	GET    /api/v1/facts
//	GET    /api/v1/locations                    (API key)
//	POST   /api/v1/locations                    (API key)
//	GET    /api/v1/locations/{id}               (API key)
//	DELETE /api/v1/locations/{id}               (API key)
//	GET    /api/v1/locations/{id}/facts         (API key)
//	GET    /api/v1/locations/{id}/snapshot      (API key)
//	POST   /api/v1/locations/{id}/refresh       (API key)
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(ChainMiddleware(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))

		// ======================================================================
		// Calendar routes (public)
		// ======================================================================
		r.Get("/hebrew/{date}", handlers.GetHebrewDate)
		r.Get("/gregorian/{year}/{month}/{day}", handlers.GetGregorianDate)
		r.Get("/years/{year}", handlers.GetYear)
		r.Get("/molad/{year}/{month}", handlers.GetMolad)
		r.Get("/rosh-chodesh/{date}", handlers.GetRoshChodesh)
		r.Get("/facts", handlers.GetFacts)

		// ======================================================================
		// Location routes (API key)
		// ======================================================================
		r.Route("/locations", func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, logger))

			r.Get("/", handlers.ListLocations)
			r.Post("/", handlers.CreateLocation)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handlers.GetLocation)
				r.Delete("/", handlers.DeleteLocation)
				r.Get("/facts", handlers.GetLocationFacts)
				r.Get("/snapshot", handlers.GetLocationSnapshot)
				r.Post("/refresh", handlers.RefreshLocation)
			})
		})
	})

	return r
}

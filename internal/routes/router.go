package routes

import (
	"net/http"
	"time"

	"stratus-efb/chartvault/internal/api"
	"stratus-efb/chartvault/internal/db"
	"stratus-efb/chartvault/internal/logging"
	"stratus-efb/chartvault/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RegisterRoutes builds the local HTTP surface the device UI talks to
func RegisterRoutes(deps *api.Dependencies, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "capacitor://*", "app://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sync/status", api.SyncStatusHandler(deps.Services.Sync))
		r.Post("/sync", api.TriggerSyncHandler(deps.Services.Sync))

		r.Get("/cache/stats", api.CacheStatsHandler(deps.Services.Stats))
		r.Post("/cache/clear", api.ClearCacheHandler(deps.Services.Retention))

		r.Get("/airports", api.ListAirportsHandler(deps.Services.Documents))
		r.Get("/airports/{icao}/documents", api.ListDocumentsHandler(deps.Services.Documents))
		r.Get("/documents/{kind}/{id}", api.OpenDocumentHandler(deps.Services.Documents))
	})

	return r
}

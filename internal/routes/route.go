package routes

import (
	"dublinbikes-api/internal/config"
	"dublinbikes-api/internal/handlers"
	"dublinbikes-api/internal/logger"
	mdlwr "dublinbikes-api/internal/middleware"
	"dublinbikes-api/internal/services"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Services groups what the router exposes. V2 and Seeder are nil when the
// document store is disabled.
type Services struct {
	V1     *services.StationService
	V2     *services.StationService
	Seeder *services.SeedService
}

func NewRouter(svcs Services, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mdlwr.NewRequestLogger(logr.Logger).Log)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS middleware with config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Location", "X-Total-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		if err != nil {
			return
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/v1/stations", stationRoutes(handlers.NewStationHandler(svcs.V1, logr.Logger)))

		if svcs.V2 != nil {
			r.Route("/v2/stations", stationRoutes(handlers.NewStationHandler(svcs.V2, logr.Logger)))
		}

		if svcs.Seeder != nil {
			adminHandler := handlers.NewAdminHandler(svcs.Seeder, logr.Logger)
			r.Route("/admin", func(r chi.Router) {
				r.Post("/seed-cosmos", adminHandler.SeedDocumentStore)
			})
		}
	})

	return r
}

func stationRoutes(h *handlers.StationHandler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.QueryStations)
		r.Post("/", h.CreateStation)
		r.Get("/summary", h.GetSummary)

		r.Get("/{number}", h.GetStation)
		r.Put("/{number}", h.UpdateStation)
		r.Delete("/{number}", h.DeleteStation)
	}
}

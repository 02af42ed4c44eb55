package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"travel-buddy-api/internal/api/chat"
	"travel-buddy-api/internal/api/places"
)

// Config contains dependencies needed for the router setup
type Config struct {
	PlacesHandler *places.Handler
	ChatHandler   *chat.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/places/search", cfg.PlacesHandler.SearchPlaces)
		r.Get("/places/nearby", cfg.PlacesHandler.NearbyLocalities)

		r.Post("/recommendations", cfg.ChatHandler.Recommend)

		r.Route("/conversations/{conversationID}", func(r chi.Router) {
			r.Post("/messages", cfg.ChatHandler.RecordMessage)
			r.Get("/context", cfg.ChatHandler.GetContext)
			r.Get("/export", cfg.ChatHandler.ExportHistory)
			r.Delete("/history", cfg.ChatHandler.ClearHistory)
		})
	})

	return r
}

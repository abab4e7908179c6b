/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the web frontend

SECURITY NOTE:
  No authentication middleware; the tracker is a single-tenant personal
  tool and auth is explicitly out of scope.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Whole-document blob API, shape-compatible with older clients
		r.Get("/data", h.GetData)
		r.Post("/data", h.PostData)

		r.Get("/holidays", h.ListHolidays)

		r.Route("/users/{username}", func(r chi.Router) {
			r.Route("/tags", func(r chi.Router) {
				r.Get("/", h.ListTags)
				r.Post("/", h.CreateTag)
				r.Put("/{tagID}", h.UpdateTag)
			})

			r.Route("/logs", func(r chi.Router) {
				r.Get("/", h.ListLogs)
				r.Post("/", h.SaveLog)
				r.Delete("/{logID}", h.DeleteLog)
			})

			r.Get("/summary", h.GetSummary)
			r.Get("/export", h.ExportData)
			r.Post("/import", h.ImportData)

			r.Route("/session", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Post("/start", h.StartSession)
				r.Post("/rest/start", h.StartRest)
				r.Post("/rest/end", h.EndRest)
				r.Post("/stop", h.StopSession)
			})
		})
	})

	return r
}

/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Recoverer:  Panic recovery (500 instead of crash)
  2. RequestID:  Unique ID per request for tracing
  3. requestLogger: Structured request logging via logrus
  4. CORS:       Cross-origin requests for frontends

ROUTES:
  /healthz             Liveness probe
  /point/{id}          Balance read
  /point/{id}/histories History read
  /point/{id}/charge   Credit
  /point/{id}/use      Debit

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, log *logrus.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"ok": "true"})
	})

	r.Route("/point", func(r chi.Router) {
		r.Get("/{id}", h.GetPoint)
		r.Get("/{id}/histories", h.GetHistories)
		r.Patch("/{id}/charge", h.Charge)
		r.Patch("/{id}/use", h.Use)
	})

	return r
}

// requestLogger logs one line per request with method, path, status and
// duration.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}

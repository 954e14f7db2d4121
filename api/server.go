/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:   Unique ID per request for tracing
  2. Recoverer:   Panic recovery (500 instead of crash)
  3. RequestLogger: Structured slog request logging
  4. Metrics:     Prometheus instrumentation
  5. CORS:        Cross-origin requests for a frontend

ROUTE GROUPS:
  /api/bills/*        Bill CRUD and payment lifecycle
  /api/bills/due      Due-bill scan (per-bill or ?days= fixed window)
  /api/payments/batch Staged batch pay with all-or-nothing commit
  /api/scenarios/*    Demo scenario seeding (dev only)
  /metrics            Prometheus metrics
  /healthz            Liveness probe

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, metrics *Metrics) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	if metrics != nil {
		r.Use(metrics.Instrument)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/bills", func(r chi.Router) {
			r.Get("/", h.ListBills)
			r.Post("/", h.CreateBill)
			r.Get("/due", h.ListDueBills)
			r.Get("/{id}", h.GetBill)
			r.Put("/{id}", h.UpdateBill)
			r.Delete("/{id}", h.DeleteBill)
			r.Post("/{id}/pay", h.PayBill)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/batch", h.BatchPay)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

// Package httpapi exposes the baggage and check-in use cases to the desk UI over JSON.
package httpapi

import (
	"net/http"

	"baggage-checkin-service/pkg/logger"
	"baggage-checkin-service/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every route. metricsHandler is mounted at /metrics when not nil.
func NewRouter(h *Handler, m *metrics.Metrics, log logger.Logger, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Instrument(m))
	r.Use(RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/baggage", func(r chi.Router) {
			r.Post("/", h.getOrCreateRecord)
			r.Delete("/items/{itemID}", h.removeItem)
			r.Patch("/items/{itemID}", h.updateItemStatus)
			r.Route("/{recordID}", func(r chi.Router) {
				r.Get("/", h.getRecord)
				r.Post("/items", h.addItem)
				r.Get("/readiness", h.readiness)
				r.Post("/check-in", h.checkInBaggage)
				r.Get("/invoice", h.invoice)
				r.Get("/audit", h.history)
			})
		})

		r.Get("/fares", h.fareRules)
		r.Post("/fares/quote", h.quoteFare)

		r.Get("/reservations/{code}", h.lookupReservation)
		r.Post("/reservations/{code}/check-in", h.confirmCheckIn)
	})

	return r
}

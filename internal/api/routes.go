package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured.
// metricsHandler may be nil, in which case /metrics is not mounted.
func NewRouter(h *Handler, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Get("/projects", h.ListProjects)
		r.Get("/projects/preview", h.PreviewProjects)
		r.Get("/categories", h.ListCategories)

		r.Get("/contact/info", h.ContactInfo)
		r.Post("/contact", h.SubmitContact)

		r.Post("/forms", h.OpenForm)
		r.Route("/forms/{formID}", func(r chi.Router) {
			r.Use(FormMiddleware(h.forms))
			r.Get("/", h.GetForm)
			r.Put("/fields/{field}", h.UpdateField)
			r.Post("/submit", h.SubmitForm)
			r.Delete("/", h.CloseForm)
		})

		r.Get("/notifications", h.ListNotifications)
		r.Get("/notifications/snapshot", h.NotificationSnapshot)
		r.Get("/notifications/{id}", h.GetNotification)
	})

	return r
}

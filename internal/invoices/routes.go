package invoices

import (
	"github.com/go-chi/chi/v5"

	"github.com/gstbill/gstbill/internal/auth"
)

// Routes mounts the invoice endpoints. Preview is open so the form can show
// a running total before login; everything else requires a session.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/preview", h.Preview)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireOwner)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/pdf", h.ExportPDF)
	})

	return r
}

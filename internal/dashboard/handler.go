package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gstbill/gstbill/internal/auth"
	"github.com/gstbill/gstbill/internal/platform/httpx"
	"github.com/gstbill/gstbill/internal/shared"
)

// Handler exposes the dashboard JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts the dashboard endpoint.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireOwner)
	r.Get("/", h.Stats)
	return r
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), shared.OwnerFromContext(r.Context()))
	if err != nil {
		h.logger.Error("dashboard stats", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

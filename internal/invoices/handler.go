package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gstbill/gstbill/internal/platform/httpx"
	"github.com/gstbill/gstbill/internal/shared"
)

// ProfileLoader fetches the owner's business profile for the printable
// invoice header.
type ProfileLoader interface {
	Profile(ctx context.Context, ownerID string) (BusinessProfile, error)
}

// Handler exposes the invoice JSON API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer *PDFRenderer
	profiles ProfileLoader
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, renderer *PDFRenderer, profiles ProfileLoader) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		renderer: renderer,
		profiles: profiles,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}

	ownerID := shared.OwnerFromContext(r.Context())
	inv, err := h.service.Create(r.Context(), ownerID, req)
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := shared.OwnerFromContext(r.Context())
	inv, err := h.service.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}

	ownerID := shared.OwnerFromContext(r.Context())
	inv, err := h.service.Update(r.Context(), ownerID, chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, "update invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := shared.OwnerFromContext(r.Context())
	if err := h.service.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "delete invoice", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pg := shared.NewPagination(queryInt(r, "page", 1), queryInt(r, "per_page", 50), 0)
	req := ListInvoicesRequest{
		OwnerID: shared.OwnerFromContext(r.Context()),
		Search:  r.URL.Query().Get("search"),
		Limit:   pg.PerPage,
		Offset:  pg.Offset(),
	}
	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, "list invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices":   list,
		"pagination": shared.NewPagination(pg.Page, pg.PerPage, total),
	})
}

// Preview computes totals without persisting. Available without a session;
// the returned invoice number is a throwaway placeholder.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Preview(r.Context(), req))
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	ownerID := shared.OwnerFromContext(r.Context())
	inv, err := h.service.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get invoice", err)
		return
	}

	profile, err := h.profiles.Profile(r.Context(), ownerID)
	if err != nil {
		h.respondError(w, "load business profile", err)
		return
	}

	data, err := h.renderer.Render(*inv, profile)
	if err != nil {
		h.respondError(w, "render invoice pdf", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", inv.InvoiceNumber+".pdf"))
	_, _ = w.Write(data)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
	case errors.Is(err, httpx.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

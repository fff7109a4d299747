package products

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gstbill/gstbill/internal/auth"
	"github.com/gstbill/gstbill/internal/platform/httpx"
	"github.com/gstbill/gstbill/internal/shared"
)

// Handler exposes the product JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts the product endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireOwner)
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

type productResponse struct {
	Product
	Status string `json:"status"`
}

func respondProduct(w http.ResponseWriter, status int, p *Product) {
	httpx.JSON(w, status, productResponse{Product: *p, Status: p.StockStatus()})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req SaveProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	p, err := h.service.Create(r.Context(), shared.OwnerFromContext(r.Context()), req)
	if err != nil {
		h.respondError(w, "create product", err)
		return
	}
	respondProduct(w, http.StatusCreated, p)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get product", err)
		return
	}
	respondProduct(w, http.StatusOK, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req SaveProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	p, err := h.service.Update(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, "update product", err)
		return
	}
	respondProduct(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), ListProductsRequest{
		OwnerID: shared.OwnerFromContext(r.Context()),
		Search:  r.URL.Query().Get("search"),
	})
	if err != nil {
		h.respondError(w, "list products", err)
		return
	}
	out := make([]productResponse, 0, len(list))
	for _, p := range list {
		out = append(out, productResponse{Product: p, Status: p.StockStatus()})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": out})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
	case errors.Is(err, httpx.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

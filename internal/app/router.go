package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gstbill/gstbill/internal/auth"
	"github.com/gstbill/gstbill/internal/customers"
	"github.com/gstbill/gstbill/internal/dashboard"
	"github.com/gstbill/gstbill/internal/invoices"
	"github.com/gstbill/gstbill/internal/observability"
	"github.com/gstbill/gstbill/internal/products"
	"github.com/gstbill/gstbill/internal/settings"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	TokenStore       auth.TokenStore
	InvoiceHandler   *invoices.Handler
	ProductHandler   *products.Handler
	CustomerHandler  *customers.Handler
	SettingsHandler  *settings.Handler
	DashboardHandler *dashboard.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:     params.Logger,
		Config:     params.Config,
		TokenStore: params.TokenStore,
		Metrics:    params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/invoices", params.InvoiceHandler.Routes())
		r.Mount("/products", params.ProductHandler.Routes())
		r.Mount("/customers", params.CustomerHandler.Routes())
		r.Mount("/settings", params.SettingsHandler.Routes())
		r.Mount("/dashboard", params.DashboardHandler.Routes())
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

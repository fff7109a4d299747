package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/gstbill/gstbill/internal/jobs"
	"github.com/gstbill/gstbill/internal/products"
)

// StockDecrementer applies stock reductions for sold lines.
type StockDecrementer interface {
	Decrement(ctx context.Context, ownerID string, lines []products.DecrementRequest) error
}

// DashboardWarmer refreshes cached dashboards.
type DashboardWarmer interface {
	Warm(ctx context.Context, ownerID string) error
	WarmAll(ctx context.Context) error
}

// Handlers bundles the task handlers with their dependencies.
type Handlers struct {
	stock     StockDecrementer
	dashboard DashboardWarmer
	metrics   *jobmetrics.Metrics
	logger    *slog.Logger
}

// NewHandlers constructs the task handlers. metrics may be nil.
func NewHandlers(stock StockDecrementer, dashboard DashboardWarmer, metrics *jobmetrics.Metrics, logger *slog.Logger) *Handlers {
	return &Handlers{stock: stock, dashboard: dashboard, metrics: metrics, logger: logger}
}

// HandleStockDecrement processes TaskTypeStockDecrement tasks. A payload
// that cannot be decoded is dropped rather than retried.
func (h *Handlers) HandleStockDecrement(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track(TaskTypeStockDecrement)
	var payload StockDecrementPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("stock decrement payload", slog.Any("error", err))
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	lines := make([]products.DecrementRequest, 0, len(payload.Lines))
	for _, l := range payload.Lines {
		lines = append(lines, products.DecrementRequest{
			Name:     l.Name,
			Price:    l.Price,
			GST:      l.GST,
			Quantity: l.Quantity,
		})
	}
	return tracker.End(h.stock.Decrement(ctx, payload.OwnerID, lines))
}

// HandleDashboardWarmup processes TaskTypeDashboardWarmup tasks. An empty
// owner id warms every owner, which is how the cron sweep runs.
func (h *Handlers) HandleDashboardWarmup(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track(TaskTypeDashboardWarmup)
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("dashboard warmup payload", slog.Any("error", err))
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	if payload.OwnerID == "" {
		return tracker.End(h.dashboard.WarmAll(ctx))
	}
	return tracker.End(h.dashboard.Warm(ctx, payload.OwnerID))
}

// Package jobs defines the background task types and the Asynq worker
// that processes them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeStockDecrement reduces product stock after an invoice save.
	TaskTypeStockDecrement = "stock:decrement"
	// TaskTypeDashboardWarmup recomputes and caches an owner's dashboard.
	TaskTypeDashboardWarmup = "dashboard:warmup"
)

// StockLine is one sold line of a saved invoice. The worker matches it
// to a product by exact (name, price, gst) values.
type StockLine struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	GST      float64 `json:"gst"`
	Quantity float64 `json:"quantity"`
}

// StockDecrementPayload carries the sold lines of one invoice.
type StockDecrementPayload struct {
	OwnerID string      `json:"owner_id"`
	Lines   []StockLine `json:"lines"`
}

// NewStockDecrementTask constructs an Asynq task.
func NewStockDecrementTask(payload StockDecrementPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeStockDecrement, data), nil
}

// DashboardWarmupPayload names the owner whose dashboard to refresh.
type DashboardWarmupPayload struct {
	OwnerID string `json:"owner_id"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDashboardWarmup, data), nil
}

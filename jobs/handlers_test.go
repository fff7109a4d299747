package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstbill/gstbill/internal/products"
)

type mockDecrementer struct {
	ownerID string
	lines   []products.DecrementRequest
	err     error
}

func (m *mockDecrementer) Decrement(_ context.Context, ownerID string, lines []products.DecrementRequest) error {
	m.ownerID = ownerID
	m.lines = lines
	return m.err
}

type mockWarmer struct {
	warmed  []string
	warmAll int
	err     error
}

func (m *mockWarmer) Warm(_ context.Context, ownerID string) error {
	m.warmed = append(m.warmed, ownerID)
	return m.err
}

func (m *mockWarmer) WarmAll(_ context.Context) error {
	m.warmAll++
	return m.err
}

func newTestHandlers(stock *mockDecrementer, dash *mockWarmer) *Handlers {
	return NewHandlers(stock, dash, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleStockDecrement(t *testing.T) {
	stock := &mockDecrementer{}
	h := newTestHandlers(stock, &mockWarmer{})

	task, err := NewStockDecrementTask(StockDecrementPayload{
		OwnerID: "owner-1",
		Lines: []StockLine{
			{Name: "Cylinder", Price: 900, GST: 5, Quantity: 2},
			{Name: "Regulator", Price: 300, GST: 18, Quantity: 1},
		},
	})
	require.NoError(t, err)

	require.NoError(t, h.HandleStockDecrement(context.Background(), task))
	assert.Equal(t, "owner-1", stock.ownerID)
	require.Len(t, stock.lines, 2)
	assert.Equal(t, "Cylinder", stock.lines[0].Name)
	assert.InDelta(t, 900, stock.lines[0].Price, 1e-9)
	assert.InDelta(t, 2, stock.lines[0].Quantity, 1e-9)
}

func TestHandleStockDecrementBadPayloadSkipsRetry(t *testing.T) {
	stock := &mockDecrementer{}
	h := newTestHandlers(stock, &mockWarmer{})

	task := asynq.NewTask(TaskTypeStockDecrement, []byte("not json"))
	err := h.HandleStockDecrement(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, stock.ownerID)
}

func TestHandleDashboardWarmup(t *testing.T) {
	dash := &mockWarmer{}
	h := newTestHandlers(&mockDecrementer{}, dash)

	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{OwnerID: "owner-1"})
	require.NoError(t, err)

	require.NoError(t, h.HandleDashboardWarmup(context.Background(), task))
	assert.Equal(t, []string{"owner-1"}, dash.warmed)
}

func TestHandleDashboardWarmupSweepsAllOwners(t *testing.T) {
	dash := &mockWarmer{}
	h := newTestHandlers(&mockDecrementer{}, dash)

	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{})
	require.NoError(t, err)

	require.NoError(t, h.HandleDashboardWarmup(context.Background(), task))
	assert.Equal(t, 1, dash.warmAll)
	assert.Empty(t, dash.warmed)
}

func TestStockDecrementPayloadRoundTrip(t *testing.T) {
	task, err := NewStockDecrementTask(StockDecrementPayload{
		OwnerID: "owner-1",
		Lines:   []StockLine{{Name: "Pipe", Price: 50, GST: 12, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeStockDecrement, task.Type())

	var decoded StockDecrementPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, "owner-1", decoded.OwnerID)
	require.Len(t, decoded.Lines, 1)
	assert.InDelta(t, 12, decoded.Lines[0].GST, 1e-9)
}

package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstbill/gstbill/internal/billing"
	"github.com/gstbill/gstbill/internal/platform/httpx"
	"github.com/gstbill/gstbill/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	invoices map[string]*Invoice
	order    []string
	seqs     map[string]int64
	nextID   int

	seqError    error
	createError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		invoices: make(map[string]*Invoice),
		seqs:     make(map[string]int64),
	}
}

func (m *mockRepository) Create(ctx context.Context, inv Invoice) (string, error) {
	if m.createError != nil {
		return "", m.createError
	}
	m.nextID++
	id := fmt.Sprintf("inv-%d", m.nextID)
	inv.ID = id
	m.invoices[id] = &inv
	m.order = append(m.order, id)
	return id, nil
}

func (m *mockRepository) Get(ctx context.Context, ownerID, id string) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.CreatedBy != ownerID {
		return nil, shared.ErrNotFound
	}
	copied := *inv
	return &copied, nil
}

func (m *mockRepository) Update(ctx context.Context, ownerID string, inv Invoice) error {
	existing, ok := m.invoices[inv.ID]
	if !ok || existing.CreatedBy != ownerID {
		return shared.ErrNotFound
	}
	m.invoices[inv.ID] = &inv
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, ownerID, id string) error {
	inv, ok := m.invoices[id]
	if !ok || inv.CreatedBy != ownerID {
		return shared.ErrNotFound
	}
	delete(m.invoices, id)
	return nil
}

func (m *mockRepository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	result := []Invoice{}
	for i := len(m.order) - 1; i >= 0; i-- {
		if inv, ok := m.invoices[m.order[i]]; ok && inv.CreatedBy == req.OwnerID {
			result = append(result, *inv)
		}
	}
	return result, len(result), nil
}

func (m *mockRepository) NextSeq(ctx context.Context, ownerID string, year int) (int64, error) {
	if m.seqError != nil {
		return 0, m.seqError
	}
	key := fmt.Sprintf("%s:%d", ownerID, year)
	m.seqs[key]++
	return m.seqs[key], nil
}

func (m *mockRepository) LatestNumber(ctx context.Context, ownerID string) (string, error) {
	for i := len(m.order) - 1; i >= 0; i-- {
		if inv, ok := m.invoices[m.order[i]]; ok && inv.CreatedBy == ownerID {
			return inv.InvoiceNumber, nil
		}
	}
	return "", nil
}

type mockEnqueuer struct {
	calls [][]StockLine
	owner string
	err   error
}

func (m *mockEnqueuer) EnqueueStockDecrement(ctx context.Context, ownerID string, lines []StockLine) error {
	if m.err != nil {
		return m.err
	}
	m.owner = ownerID
	m.calls = append(m.calls, lines)
	return nil
}

func newTestService(repo *mockRepository, stock StockEnqueuer) *Service {
	calc := billing.NewCalculator(billing.PriceExclusive)
	alloc := billing.NewAllocator(repo, repo, slog.Default())
	return NewService(repo, calc, alloc, stock, slog.Default())
}

func sampleRequest() CreateInvoiceRequest {
	return CreateInvoiceRequest{
		CustomerName:   "Ramesh Kumar",
		CustomerMobile: "9876543210",
		Lines: []LineItemRequest{
			{Name: "Cylinder", Quantity: 2, UnitPrice: 900, TaxRatePercent: 5},
			{Name: "Regulator", Quantity: 1, UnitPrice: 300, TaxRatePercent: 18},
			{Name: "Pipe", Quantity: 4, UnitPrice: 50, TaxRatePercent: 12},
		},
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateComputesTotalsAndAllocatesNumber(t *testing.T) {
	repo := newMockRepository()
	stock := &mockEnqueuer{}
	svc := newTestService(repo, stock)

	inv, err := svc.Create(context.Background(), "owner-1", sampleRequest())
	require.NoError(t, err)

	assert.InDelta(t, 2300.0, inv.Subtotal, 1e-6)
	assert.InDelta(t, 168.0, inv.TaxAmount, 1e-6)
	assert.InDelta(t, 2468.0, inv.GrandTotal, 1e-6)
	assert.Regexp(t, `^INV-\d{2}-0001$`, inv.InvoiceNumber)
	assert.Equal(t, StatusActive, inv.Status)
	assert.Equal(t, "owner-1", inv.CreatedBy)
	require.Len(t, inv.Products, 3)
	assert.InDelta(t, 1890.0, inv.Products[0].LineTotal, 1e-6)

	// The side effect carries the value tuple of every sold line.
	require.Len(t, stock.calls, 1)
	assert.Equal(t, "owner-1", stock.owner)
	assert.Equal(t, StockLine{Name: "Cylinder", UnitPrice: 900, TaxRatePercent: 5, Quantity: 2}, stock.calls[0][0])
}

func TestCreateSequentialNumbers(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	first, err := svc.Create(context.Background(), "owner-1", sampleRequest())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "owner-1", sampleRequest())
	require.NoError(t, err)

	firstYear, firstSeq, ok := billing.ParseNumber(first.InvoiceNumber)
	require.True(t, ok)
	secondYear, secondSeq, ok := billing.ParseNumber(second.InvoiceNumber)
	require.True(t, ok)
	assert.Equal(t, firstYear, secondYear)
	assert.Equal(t, firstSeq+1, secondSeq)
}

func TestCreateNumberScopedPerOwner(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	a, err := svc.Create(context.Background(), "owner-a", sampleRequest())
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), "owner-b", sampleRequest())
	require.NoError(t, err)

	_, seqA, _ := billing.ParseNumber(a.InvoiceNumber)
	_, seqB, _ := billing.ParseNumber(b.InvoiceNumber)
	assert.Equal(t, int64(1), seqA)
	assert.Equal(t, int64(1), seqB)
}

func TestCreateRejectsMissingCustomerName(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	req := sampleRequest()
	req.CustomerName = ""
	_, err := svc.Create(context.Background(), "owner-1", req)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, repo.invoices)
}

func TestCreateRejectsZeroLineItems(t *testing.T) {
	repo := newMockRepository()
	stock := &mockEnqueuer{}
	svc := newTestService(repo, stock)

	req := sampleRequest()
	req.Lines = nil
	_, err := svc.Create(context.Background(), "owner-1", req)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, repo.invoices)
	assert.Empty(t, stock.calls)
}

func TestCreateSucceedsWhenEnqueueFails(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, &mockEnqueuer{err: errors.New("broker down")})

	inv, err := svc.Create(context.Background(), "owner-1", sampleRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, inv.ID)
}

func TestCreatePersistErrorSurfaces(t *testing.T) {
	repo := newMockRepository()
	repo.createError = errors.New("write failed")
	stock := &mockEnqueuer{}
	svc := newTestService(repo, stock)

	_, err := svc.Create(context.Background(), "owner-1", sampleRequest())
	require.Error(t, err)
	// No save means no stock side effect.
	assert.Empty(t, stock.calls)
}

func TestCreateFallsBackToDerivationWhenSequenceFails(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	first, err := svc.Create(context.Background(), "owner-1", sampleRequest())
	require.NoError(t, err)

	repo.seqError = errors.New("sequence table unavailable")
	second, err := svc.Create(context.Background(), "owner-1", sampleRequest())
	require.NoError(t, err)

	firstYear, firstSeq, ok := billing.ParseNumber(first.InvoiceNumber)
	require.True(t, ok)
	secondYear, secondSeq, ok := billing.ParseNumber(second.InvoiceNumber)
	require.True(t, ok)
	assert.Equal(t, firstSeq+1, secondSeq)
	assert.Equal(t, firstYear, secondYear)
}

func TestUpdateReplacesLinesAndKeepsNumber(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	created, err := svc.Create(context.Background(), "owner-1", sampleRequest())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "owner-1", created.ID, UpdateInvoiceRequest{
		CustomerName: "Suresh",
		Lines: []LineItemRequest{
			{Name: "Stove", Quantity: 1, UnitPrice: 1000, TaxRatePercent: 18},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, created.InvoiceNumber, updated.InvoiceNumber)
	assert.Equal(t, "Suresh", updated.CustomerName)
	require.Len(t, updated.Products, 1)
	assert.InDelta(t, 1000.0, updated.Subtotal, 1e-6)
	assert.InDelta(t, 180.0, updated.TaxAmount, 1e-6)
	assert.InDelta(t, 1180.0, updated.GrandTotal, 1e-6)
	assert.Equal(t, StatusActive, updated.Status)
}

func TestUpdateUnknownInvoice(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	_, err := svc.Update(context.Background(), "owner-1", "missing", UpdateInvoiceRequest{
		CustomerName: "Suresh",
		Lines:        []LineItemRequest{{Name: "Stove", Quantity: 1, UnitPrice: 10}},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteScopedToOwner(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	created, err := svc.Create(context.Background(), "owner-1", sampleRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), "owner-2", created.ID), shared.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), "owner-1", created.ID))
}

func TestPreviewDoesNotPersist(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	preview := svc.Preview(context.Background(), sampleRequest())
	assert.Regexp(t, `^INV-\d{2}-\d{4}$`, preview.InvoiceNumber)
	assert.InDelta(t, 2468.0, preview.GrandTotal, 1e-6)
	assert.Empty(t, repo.invoices)
}

func TestCreateFailSoftLineInput(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	req := CreateInvoiceRequest{
		CustomerName: "Ramesh",
		Lines: []LineItemRequest{
			{Name: "Cylinder", Quantity: -2, UnitPrice: 900, TaxRatePercent: 5},
			{Name: "Pipe", Quantity: 4, UnitPrice: 50, TaxRatePercent: 150},
		},
	}
	inv, err := svc.Create(context.Background(), "owner-1", req)
	require.NoError(t, err)

	// Negative quantity clamps to zero; tax rate above 100 clamps to 100.
	assert.Zero(t, inv.Products[0].LineTotal)
	assert.InDelta(t, 400.0, inv.Products[1].LineTotal, 1e-6)
}

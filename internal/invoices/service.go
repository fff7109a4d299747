package invoices

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/gstbill/gstbill/internal/billing"
	"github.com/gstbill/gstbill/internal/platform/httpx"
)

// StockLine identifies the product a sold line consumed. Products are matched
// by value tuple, not by a stable id; renamed or re-priced products silently
// fail to match. Known limitation carried over from the original system.
type StockLine struct {
	Name           string  `json:"name"`
	UnitPrice      float64 `json:"price"`
	TaxRatePercent float64 `json:"gst"`
	Quantity       float64 `json:"quantity"`
}

// StockEnqueuer hands the stock-decrement side effect to the background
// worker. Enqueue failure must never fail an invoice save.
type StockEnqueuer interface {
	EnqueueStockDecrement(ctx context.Context, ownerID string, lines []StockLine) error
}

// Service implements the invoice operations.
type Service struct {
	repo      Repository
	calc      *billing.Calculator
	allocator *billing.Allocator
	stock     StockEnqueuer
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService constructs a Service. stock may be nil when no worker is wired.
func NewService(repo Repository, calc *billing.Calculator, allocator *billing.Allocator, stock StockEnqueuer, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		calc:      calc,
		allocator: allocator,
		stock:     stock,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Create validates the request, computes totals server side, allocates the
// invoice number and persists the invoice. On success the stock decrement is
// enqueued fire-and-forget.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateInvoiceRequest) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	items, totals := s.computeLines(req.Lines)

	inv := Invoice{
		InvoiceNumber:   s.allocator.Next(ctx, ownerID),
		CustomerName:    req.CustomerName,
		CustomerMobile:  req.CustomerMobile,
		CustomerAddress: req.CustomerAddress,
		Products:        items,
		Subtotal:        billing.Round2(totals.Subtotal),
		TaxAmount:       billing.Round2(totals.TaxAmount),
		GrandTotal:      billing.Round2(totals.GrandTotal),
		Status:          StatusActive,
		CreatedBy:       ownerID,
	}

	id, err := s.repo.Create(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.enqueueStockDecrement(ctx, ownerID, req.Lines)

	return s.repo.Get(ctx, ownerID, id)
}

// Update replaces the customer fields and the whole line-item list,
// recomputing totals. The invoice number never changes on edit.
func (s *Service) Update(ctx context.Context, ownerID, id string, req UpdateInvoiceRequest) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	existing, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	items, totals := s.computeLines(req.Lines)

	status := req.Status
	if status == "" {
		status = existing.Status
	}

	updated := Invoice{
		ID:              existing.ID,
		InvoiceNumber:   existing.InvoiceNumber,
		CustomerName:    req.CustomerName,
		CustomerMobile:  req.CustomerMobile,
		CustomerAddress: req.CustomerAddress,
		Products:        items,
		Subtotal:        billing.Round2(totals.Subtotal),
		TaxAmount:       billing.Round2(totals.TaxAmount),
		GrandTotal:      billing.Round2(totals.GrandTotal),
		Status:          status,
		CreatedBy:       existing.CreatedBy,
	}
	if err := s.repo.Update(ctx, ownerID, updated); err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	return s.repo.Get(ctx, ownerID, id)
}

// Get fetches one invoice scoped to the owner.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Invoice, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Delete removes an invoice.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// List returns the owner's invoices, newest first.
func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	return s.repo.List(ctx, req)
}

// Preview computes totals and a placeholder number without persisting
// anything. The returned number is not stable and must never be stored.
func (s *Service) Preview(ctx context.Context, req CreateInvoiceRequest) Invoice {
	items, totals := s.computeLines(req.Lines)
	return Invoice{
		InvoiceNumber:   s.allocator.Preview(),
		CustomerName:    req.CustomerName,
		CustomerMobile:  req.CustomerMobile,
		CustomerAddress: req.CustomerAddress,
		Products:        items,
		Subtotal:        billing.Round2(totals.Subtotal),
		TaxAmount:       billing.Round2(totals.TaxAmount),
		GrandTotal:      billing.Round2(totals.GrandTotal),
	}
}

func (s *Service) computeLines(lines []LineItemRequest) ([]LineItem, billing.Totals) {
	items := make([]LineItem, 0, len(lines))
	inputs := make([]billing.LineInput, 0, len(lines))
	for _, line := range lines {
		amounts := s.calc.ComputeLine(line.Quantity, line.UnitPrice, line.TaxRatePercent)
		items = append(items, LineItem{
			Name:           line.Name,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			TaxRatePercent: line.TaxRatePercent,
			TaxableValue:   billing.Round2(amounts.TaxableValue),
			TaxAmount:      billing.Round2(amounts.TaxAmount),
			LineTotal:      billing.Round2(amounts.LineTotal),
		})
		inputs = append(inputs, billing.LineInput{
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			TaxRatePercent: line.TaxRatePercent,
		})
	}
	return items, s.calc.ComputeInvoiceTotals(inputs)
}

func (s *Service) enqueueStockDecrement(ctx context.Context, ownerID string, lines []LineItemRequest) {
	if s.stock == nil {
		return
	}
	stockLines := make([]StockLine, 0, len(lines))
	for _, line := range lines {
		stockLines = append(stockLines, StockLine{
			Name:           line.Name,
			UnitPrice:      line.UnitPrice,
			TaxRatePercent: line.TaxRatePercent,
			Quantity:       line.Quantity,
		})
	}
	if err := s.stock.EnqueueStockDecrement(ctx, ownerID, stockLines); err != nil {
		s.logger.Warn("enqueue stock decrement failed, stock counts may drift",
			slog.String("owner", ownerID), slog.Any("error", err))
	}
}

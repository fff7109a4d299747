package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/gstbill/gstbill/internal/platform/httpx"
	"github.com/gstbill/gstbill/internal/shared"
)

// Service implements product and stock operations.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

// Create saves a new product. A zero minimum stock threshold falls back to
// the default of 10.
func (s *Service) Create(ctx context.Context, ownerID string, req SaveProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	p := productFromRequest(req)
	p.CreatedBy = ownerID

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return s.repo.Get(ctx, ownerID, id)
}

// Update replaces a product's fields.
func (s *Service) Update(ctx context.Context, ownerID, id string, req SaveProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	p := productFromRequest(req)
	p.ID = id

	if err := s.repo.Update(ctx, ownerID, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.repo.Get(ctx, ownerID, id)
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Product, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// List returns the owner's products sorted by name.
func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	return s.repo.List(ctx, req)
}

// Decrement applies the post-sale stock reduction for each sold line. A line
// whose value tuple matches no product is logged and skipped; insufficient
// stock clamps at zero with a warning. Only infrastructure failures return an
// error, so the caller's retry policy never re-runs successful matches with
// different outcomes beyond the idempotent clamp.
func (s *Service) Decrement(ctx context.Context, ownerID string, lines []DecrementRequest) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		p, err := s.repo.FindByTuple(ctx, ownerID, line.Name, line.Price, line.GST)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("no product matches sold line, stock not decremented",
					slog.String("owner", ownerID),
					slog.String("name", line.Name),
					slog.Float64("price", line.Price),
					slog.Float64("gst", line.GST))
				continue
			}
			return fmt.Errorf("find product for %q: %w", line.Name, err)
		}

		if p.Stock < line.Quantity {
			s.logger.Warn("insufficient stock, clamping at zero",
				slog.String("owner", ownerID),
				slog.String("product", p.Name),
				slog.Float64("stock", p.Stock),
				slog.Float64("sold", line.Quantity))
		}

		if _, err := s.repo.DecrementStock(ctx, ownerID, p.ID, line.Quantity); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return fmt.Errorf("decrement stock for %q: %w", p.Name, err)
		}
	}
	return nil
}

func productFromRequest(req SaveProductRequest) Product {
	p := Product{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		GST:      req.GST,
		Stock:    req.Stock,
		MinStock: req.MinStock,
	}
	if p.MinStock == 0 {
		p.MinStock = DefaultMinStock
	}
	return p
}

package customers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/gstbill/gstbill/internal/platform/httpx"
)

// Service implements customer operations.
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

// Create saves a new customer.
func (s *Service) Create(ctx context.Context, ownerID string, req SaveCustomerRequest) (*Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	id, err := s.repo.Create(ctx, Customer{
		Name:      req.Name,
		Mobile:    req.Mobile,
		Email:     req.Email,
		Address:   req.Address,
		CreatedBy: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return s.repo.Get(ctx, ownerID, id)
}

// Update replaces a customer's fields.
func (s *Service) Update(ctx context.Context, ownerID, id string, req SaveCustomerRequest) (*Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	err := s.repo.Update(ctx, ownerID, Customer{
		ID:      id,
		Name:    req.Name,
		Mobile:  req.Mobile,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, ownerID, id)
}

// Get fetches one customer.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Customer, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// List returns the owner's customers sorted by name.
func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, error) {
	return s.repo.List(ctx, req)
}

package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/gstbill/gstbill/internal/invoices"
	"github.com/gstbill/gstbill/internal/platform/httpx"
	"github.com/gstbill/gstbill/internal/shared"
)

// Service implements profile get/put.
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

// Get returns the owner's profile. Owners who never saved one get an
// empty profile rather than a not-found error.
func (s *Service) Get(ctx context.Context, ownerID string) (*Profile, error) {
	p, err := s.repo.Get(ctx, ownerID)
	if errors.Is(err, shared.ErrNotFound) {
		return &Profile{OwnerID: ownerID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Put replaces the owner's profile.
func (s *Service) Put(ctx context.Context, ownerID string, req SaveProfileRequest) (*Profile, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	err := s.repo.Put(ctx, Profile{
		OwnerID:      ownerID,
		BusinessName: req.BusinessName,
		GSTIN:        req.GSTIN,
		PAN:          req.PAN,
		Address:      req.Address,
		Phone:        req.Phone,
		BankDetails:  req.BankDetails,
	})
	if err != nil {
		return nil, fmt.Errorf("put profile: %w", err)
	}
	return s.repo.Get(ctx, ownerID)
}

// Profile implements invoices.ProfileLoader so the PDF export can print
// the seller header. A missing profile yields zero-valued fields.
func (s *Service) Profile(ctx context.Context, ownerID string) (invoices.BusinessProfile, error) {
	p, err := s.Get(ctx, ownerID)
	if err != nil {
		return invoices.BusinessProfile{}, err
	}
	return invoices.BusinessProfile{
		Name:        p.BusinessName,
		Address:     p.Address,
		Phone:       p.Phone,
		GSTIN:       p.GSTIN,
		PAN:         p.PAN,
		BankDetails: p.BankDetails,
	}, nil
}

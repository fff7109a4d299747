package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gstbill/gstbill/internal/shared"
)

// Repository persists business profiles in PostgreSQL.
type Repository interface {
	Get(ctx context.Context, ownerID string) (*Profile, error)
	Put(ctx context.Context, p Profile) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, ownerID string) (*Profile, error) {
	var (
		p         Profile
		updatedAt *time.Time
	)
	err := r.pool.QueryRow(ctx, `SELECT owner_id, business_name, gstin, pan, address, phone, bank_details, updated_at
FROM settings WHERE owner_id=$1`, ownerID).
		Scan(&p.OwnerID, &p.BusinessName, &p.GSTIN, &p.PAN, &p.Address, &p.Phone, &p.BankDetails, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("settings: get: %w", err)
	}
	p.UpdatedAt = updatedAt
	return &p, nil
}

func (r *repository) Put(ctx context.Context, p Profile) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO settings
(owner_id, business_name, gstin, pan, address, phone, bank_details, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
ON CONFLICT (owner_id) DO UPDATE SET
business_name=EXCLUDED.business_name, gstin=EXCLUDED.gstin, pan=EXCLUDED.pan,
address=EXCLUDED.address, phone=EXCLUDED.phone, bank_details=EXCLUDED.bank_details,
updated_at=NOW()`,
		p.OwnerID, p.BusinessName, p.GSTIN, p.PAN, p.Address, p.Phone, p.BankDetails)
	if err != nil {
		return fmt.Errorf("settings: put: %w", err)
	}
	return nil
}

package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gstbill/gstbill/internal/shared"
)

// Repository persists customers in PostgreSQL.
type Repository interface {
	Create(ctx context.Context, c Customer) (string, error)
	Get(ctx context.Context, ownerID, id string) (*Customer, error)
	Update(ctx context.Context, ownerID string, c Customer) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const customerColumns = "id, name, mobile, email, address, created_by, created_at, updated_at"

func (r *repository) Create(ctx context.Context, c Customer) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `INSERT INTO customers
(id, name, mobile, email, address, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW())`,
		id, c.Name, c.Mobile, c.Email, c.Address, c.CreatedBy)
	if err != nil {
		return "", fmt.Errorf("customers: insert: %w", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, ownerID, id string) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1 AND created_by=$2`, id, ownerID)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("customers: get: %w", err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, ownerID string, c Customer) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customers
SET name=$1, mobile=$2, email=$3, address=$4, updated_at=NOW()
WHERE id=$5 AND created_by=$6`, c.Name, c.Mobile, c.Email, c.Address, c.ID, ownerID)
	if err != nil {
		return fmt.Errorf("customers: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id=$1 AND created_by=$2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("customers: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, error) {
	where := "WHERE created_by=$1"
	args := []interface{}{req.OwnerID}
	if req.Search != "" {
		where += " AND (name ILIKE $2 OR mobile ILIKE $2 OR email ILIKE $2)"
		args = append(args, "%"+req.Search+"%")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers `+where+` ORDER BY name ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("customers: list: %w", err)
	}
	defer rows.Close()

	result := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("customers: scan: %w", err)
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("customers: rows: %w", err)
	}
	return result, nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var (
		c         Customer
		updatedAt *time.Time
	)
	err := row.Scan(&c.ID, &c.Name, &c.Mobile, &c.Email, &c.Address, &c.CreatedBy, &c.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt = updatedAt
	return &c, nil
}

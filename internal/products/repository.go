package products

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

// Repository persists products in PostgreSQL.
type Repository interface {
	Create(ctx context.Context, p Product) (string, error)
	Get(ctx context.Context, ownerID, id string) (*Product, error)
	Update(ctx context.Context, ownerID string, p Product) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, req ListProductsRequest) ([]Product, error)
	FindByTuple(ctx context.Context, ownerID, name string, price, gst float64) (*Product, error)
	DecrementStock(ctx context.Context, ownerID, id string, qty float64) (float64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = "id, name, category, price, gst, stock, min_stock, created_by, created_at, updated_at"

func (r *repository) Create(ctx context.Context, p Product) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `INSERT INTO products
(id, name, category, price, gst, stock, min_stock, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())`,
		id, p.Name, p.Category, p.Price, p.GST, p.Stock, p.MinStock, p.CreatedBy)
	if err != nil {
		return "", fmt.Errorf("products: insert: %w", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, ownerID, id string) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 AND created_by=$2`, id, ownerID)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("products: get: %w", err)
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, ownerID string, p Product) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products
SET name=$1, category=$2, price=$3, gst=$4, stock=$5, min_stock=$6, updated_at=NOW()
WHERE id=$7 AND created_by=$8`,
		p.Name, p.Category, p.Price, p.GST, p.Stock, p.MinStock, p.ID, ownerID)
	if err != nil {
		return fmt.Errorf("products: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1 AND created_by=$2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("products: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	where := "WHERE created_by=$1"
	args := []interface{}{req.OwnerID}
	if req.Search != "" {
		where += " AND (name ILIKE $2 OR category ILIKE $2)"
		args = append(args, "%"+req.Search+"%")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products `+where+` ORDER BY name ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	result := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("products: scan: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products: rows: %w", err)
	}
	return result, nil
}

// FindByTuple locates a product by the exact value tuple an invoice line
// carries. Returns shared.ErrNotFound when nothing matches.
func (r *repository) FindByTuple(ctx context.Context, ownerID, name string, price, gst float64) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products
WHERE created_by=$1 AND name=$2 AND price=$3 AND gst=$4 LIMIT 1`, ownerID, name, price, gst)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("products: find by tuple: %w", err)
	}
	return p, nil
}

// DecrementStock reduces stock by qty, clamped at zero, and returns the new
// stock level.
func (r *repository) DecrementStock(ctx context.Context, ownerID, id string, qty float64) (float64, error) {
	var stock float64
	err := r.pool.QueryRow(ctx, `UPDATE products
SET stock = GREATEST(stock - $1, 0), updated_at=NOW()
WHERE id=$2 AND created_by=$3
RETURNING stock`, qty, id, ownerID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, fmt.Errorf("products: decrement stock: %w", err)
	}
	return stock, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p         Product
		updatedAt *time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.GST, &p.Stock, &p.MinStock, &p.CreatedBy, &p.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = updatedAt
	return &p, nil
}

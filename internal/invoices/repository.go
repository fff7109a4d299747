package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gstbill/gstbill/internal/shared"
)

// Repository persists invoices in PostgreSQL. Line items are stored as a
// JSONB document column so an invoice row round-trips as one document.
type Repository interface {
	Create(ctx context.Context, inv Invoice) (string, error)
	Get(ctx context.Context, ownerID, id string) (*Invoice, error)
	Update(ctx context.Context, ownerID string, inv Invoice) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)

	// NextSeq and LatestNumber feed the billing allocator.
	NextSeq(ctx context.Context, ownerID string, year int) (int64, error)
	LatestNumber(ctx context.Context, ownerID string) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, inv Invoice) (string, error) {
	id := uuid.NewString()
	products, err := json.Marshal(inv.Products)
	if err != nil {
		return "", fmt.Errorf("invoices: marshal products: %w", err)
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO invoices
(id, invoice_number, customer_name, customer_mobile, customer_address, products, subtotal, tax_amount, grand_total, status, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())`,
		id, inv.InvoiceNumber, inv.CustomerName, inv.CustomerMobile, inv.CustomerAddress,
		products, inv.Subtotal, inv.TaxAmount, inv.GrandTotal, inv.Status, inv.CreatedBy)
	if err != nil {
		return "", fmt.Errorf("invoices: insert: %w", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, ownerID, id string) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, invoice_number, customer_name, customer_mobile, customer_address, products, subtotal, tax_amount, grand_total, status, created_by, created_at, updated_at
FROM invoices WHERE id=$1 AND created_by=$2`, id, ownerID)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("invoices: get: %w", err)
	}
	return inv, nil
}

func (r *repository) Update(ctx context.Context, ownerID string, inv Invoice) error {
	products, err := json.Marshal(inv.Products)
	if err != nil {
		return fmt.Errorf("invoices: marshal products: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE invoices
SET customer_name=$1, customer_mobile=$2, customer_address=$3, products=$4, subtotal=$5, tax_amount=$6, grand_total=$7, status=$8, updated_at=NOW()
WHERE id=$9 AND created_by=$10`,
		inv.CustomerName, inv.CustomerMobile, inv.CustomerAddress, products,
		inv.Subtotal, inv.TaxAmount, inv.GrandTotal, inv.Status, inv.ID, ownerID)
	if err != nil {
		return fmt.Errorf("invoices: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id=$1 AND created_by=$2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("invoices: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	where := "WHERE created_by=$1"
	args := []interface{}{req.OwnerID}
	if req.Search != "" {
		where += " AND (invoice_number ILIKE $2 OR customer_name ILIKE $2 OR customer_mobile ILIKE $2)"
		args = append(args, "%"+req.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM invoices "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("invoices: count: %w", err)
	}

	query := fmt.Sprintf(`SELECT id, invoice_number, customer_name, customer_mobile, customer_address, products, subtotal, tax_amount, grand_total, status, created_by, created_at, updated_at
FROM invoices %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`, where, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("invoices: list: %w", err)
	}
	defer rows.Close()

	result := []Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("invoices: scan: %w", err)
		}
		result = append(result, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("invoices: rows: %w", err)
	}
	return result, total, nil
}

// NextSeq atomically increments the owner's per-year counter. Concurrent
// callers serialize on the upserted row.
func (r *repository) NextSeq(ctx context.Context, ownerID string, year int) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `INSERT INTO invoice_sequences (owner_id, year, seq)
VALUES ($1, $2, 1)
ON CONFLICT (owner_id, year)
DO UPDATE SET seq = invoice_sequences.seq + 1
RETURNING seq`, ownerID, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("invoices: next sequence: %w", err)
	}
	return seq, nil
}

// LatestNumber returns the number of the owner's most recent invoice, with
// ties on created_at broken by descending id. Empty string when none exist.
func (r *repository) LatestNumber(ctx context.Context, ownerID string) (string, error) {
	var number string
	err := r.pool.QueryRow(ctx, `SELECT invoice_number FROM invoices
WHERE created_by=$1 ORDER BY created_at DESC, id DESC LIMIT 1`, ownerID).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("invoices: latest number: %w", err)
	}
	return number, nil
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var (
		inv       Invoice
		products  []byte
		updatedAt *time.Time
	)
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.CustomerName, &inv.CustomerMobile, &inv.CustomerAddress,
		&products, &inv.Subtotal, &inv.TaxAmount, &inv.GrandTotal, &inv.Status, &inv.CreatedBy, &inv.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if len(products) > 0 {
		if err := json.Unmarshal(products, &inv.Products); err != nil {
			return nil, fmt.Errorf("unmarshal products: %w", err)
		}
	}
	inv.UpdatedAt = updatedAt
	return &inv, nil
}

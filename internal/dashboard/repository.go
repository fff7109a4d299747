package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the aggregate queries backing the dashboard.
type Repository interface {
	CountInvoicesSince(ctx context.Context, ownerID string, since time.Time) (int64, error)
	TotalRevenue(ctx context.Context, ownerID string) (float64, error)
	RecentInvoices(ctx context.Context, ownerID string, limit int) ([]RecentInvoice, error)
	Owners(ctx context.Context) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CountInvoicesSince(ctx context.Context, ownerID string, since time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE created_by=$1 AND created_at >= $2`,
		ownerID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("dashboard: count invoices: %w", err)
	}
	return count, nil
}

func (r *repository) TotalRevenue(ctx context.Context, ownerID string) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(grand_total), 0) FROM invoices WHERE created_by=$1`,
		ownerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("dashboard: total revenue: %w", err)
	}
	return total, nil
}

func (r *repository) Owners(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT created_by FROM invoices`)
	if err != nil {
		return nil, fmt.Errorf("dashboard: owners: %w", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("dashboard: scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: rows: %w", err)
	}
	return owners, nil
}

func (r *repository) RecentInvoices(ctx context.Context, ownerID string, limit int) ([]RecentInvoice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, invoice_number, customer_name, grand_total, created_at
FROM invoices WHERE created_by=$1
ORDER BY created_at DESC, id DESC LIMIT $2`,
		ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("dashboard: recent invoices: %w", err)
	}
	defer rows.Close()

	result := []RecentInvoice{}
	for rows.Next() {
		var ri RecentInvoice
		if err := rows.Scan(&ri.ID, &ri.InvoiceNumber, &ri.CustomerName, &ri.GrandTotal, &ri.CreatedAt); err != nil {
			return nil, fmt.Errorf("dashboard: scan: %w", err)
		}
		result = append(result, ri)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: rows: %w", err)
	}
	return result, nil
}

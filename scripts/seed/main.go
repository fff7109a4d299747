// Seed loads a demo dataset: one business profile, a product catalogue
// and a customer book for the owner id passed via SEED_OWNER_ID.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gstbill/gstbill/internal/app"
	"github.com/gstbill/gstbill/internal/platform/db"
)

type seedProduct struct {
	name     string
	category string
	price    float64
	gst      float64
	stock    float64
	minStock float64
}

type seedCustomer struct {
	name    string
	mobile  string
	email   string
	address string
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ownerID := os.Getenv("SEED_OWNER_ID")
	if ownerID == "" {
		logger.Error("SEED_OWNER_ID must be set")
		os.Exit(1)
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed(ctx, pool, ownerID); err != nil {
		logger.Error("seed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("seed complete", slog.String("owner", ownerID))
}

// seed applies the whole dataset in one transaction so a failed run
// leaves nothing behind.
func seed(ctx context.Context, pool *pgxpool.Pool, ownerID string) error {
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		return seedTx(ctx, tx, ownerID)
	})
}

func seedTx(ctx context.Context, tx pgx.Tx, ownerID string) error {
	_, err := tx.Exec(ctx, `INSERT INTO settings
(owner_id, business_name, gstin, pan, address, phone, bank_details, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
ON CONFLICT (owner_id) DO NOTHING`,
		ownerID, "Billa Traders", "33AAAAA0000A1Z5", "AAAAA0000A",
		"45 Bazaar Street, Chennai 600001", "9876543210",
		"SBI A/C 1234567890, IFSC SBIN0000001")
	if err != nil {
		return err
	}

	products := []seedProduct{
		{"LPG Cylinder 14.2kg", "Gas", 900, 5, 40, 10},
		{"Gas Regulator", "Accessories", 300, 18, 25, 10},
		{"Rubber Pipe 1.5m", "Accessories", 50, 12, 100, 20},
		{"Gas Stove 2 Burner", "Appliances", 2400, 18, 8, 5},
		{"Lighter", "Accessories", 40, 12, 60, 15},
	}
	for _, p := range products {
		_, err := tx.Exec(ctx, `INSERT INTO products
(id, name, category, price, gst, stock, min_stock, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())`,
			uuid.NewString(), p.name, p.category, p.price, p.gst, p.stock, p.minStock, ownerID)
		if err != nil {
			return err
		}
	}

	customers := []seedCustomer{
		{"Ravi Kumar", "9812345670", "ravi@example.com", "12 Market Road"},
		{"Anita Sharma", "9823456781", "anita@example.com", "8 Temple Street"},
		{"Suresh Babu", "9834567892", "", "23 Station Road"},
	}
	for _, c := range customers {
		_, err := tx.Exec(ctx, `INSERT INTO customers
(id, name, mobile, email, address, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW())`,
			uuid.NewString(), c.name, c.mobile, c.email, c.address, ownerID)
		if err != nil {
			return err
		}
	}
	return nil
}

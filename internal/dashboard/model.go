// Package dashboard computes aggregate billing statistics per owner.
package dashboard

import "time"

// RecentInvoice is the compact row shown on the dashboard.
type RecentInvoice struct {
	ID            string    `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	CustomerName  string    `json:"customer_name"`
	GrandTotal    float64   `json:"grand_total"`
	CreatedAt     time.Time `json:"created_at"`
}

// Stats is the dashboard payload.
type Stats struct {
	InvoicesToday     int64           `json:"invoices_today"`
	InvoicesThisMonth int64           `json:"invoices_this_month"`
	TotalRevenue      float64         `json:"total_revenue"`
	RecentInvoices    []RecentInvoice `json:"recent_invoices"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

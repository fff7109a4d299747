// Package invoices implements the invoice lifecycle: creation with GST
// computation and number allocation, edits, listing and printable export.
package invoices

import "time"

// LineItem is one product entry on an invoice. Quantity, unit price and GST
// rate are the caller's input; the money fields are derived by the calculator
// and rounded to two decimals before persistence.
type LineItem struct {
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"price"`
	TaxRatePercent float64 `json:"gst"`
	TaxableValue   float64 `json:"taxable_value"`
	TaxAmount      float64 `json:"tax_amount"`
	LineTotal      float64 `json:"total"`
}

// Invoice is the persisted document. Totals are duplicated onto the invoice
// so listings and dashboards never re-walk the line items.
type Invoice struct {
	ID              string     `json:"id"`
	InvoiceNumber   string     `json:"invoice_number"`
	CustomerName    string     `json:"customer_name"`
	CustomerMobile  string     `json:"customer_mobile"`
	CustomerAddress string     `json:"customer_address"`
	Products        []LineItem `json:"products"`
	Subtotal        float64    `json:"subtotal"`
	TaxAmount       float64    `json:"tax_amount"`
	GrandTotal      float64    `json:"grand_total"`
	Status          string     `json:"status"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// StatusActive is the default status assigned on save. Status is free-form
// text, not a state machine.
const StatusActive = "active"

// LineItemRequest carries one line of user input.
type LineItemRequest struct {
	Name           string  `json:"name" validate:"required"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"price"`
	TaxRatePercent float64 `json:"gst"`
}

// CreateInvoiceRequest is the payload for saving a new invoice. Totals are
// always recomputed server side; any client-supplied totals are ignored.
type CreateInvoiceRequest struct {
	CustomerName    string            `json:"customer_name" validate:"required"`
	CustomerMobile  string            `json:"customer_mobile"`
	CustomerAddress string            `json:"customer_address"`
	Lines           []LineItemRequest `json:"products" validate:"required,min=1,dive"`
}

// UpdateInvoiceRequest replaces customer fields and the whole line-item list.
type UpdateInvoiceRequest struct {
	CustomerName    string            `json:"customer_name" validate:"required"`
	CustomerMobile  string            `json:"customer_mobile"`
	CustomerAddress string            `json:"customer_address"`
	Status          string            `json:"status"`
	Lines           []LineItemRequest `json:"products" validate:"required,min=1,dive"`
}

// ListInvoicesRequest filters and paginates the owner's invoices.
type ListInvoicesRequest struct {
	OwnerID string
	Search  string
	Limit   int
	Offset  int
}

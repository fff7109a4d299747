// Package products manages the stock records consumed by invoicing.
package products

import "time"

// Stock status labels shown in the stock table.
const (
	StatusOutOfStock = "Out of Stock"
	StatusLowStock   = "Low Stock"
	StatusInStock    = "In Stock"
)

// DefaultMinStock is applied when a product is saved without a threshold.
const DefaultMinStock = 10

// Product is one stock record. GST is the tax rate applied when the product
// lands on an invoice line.
type Product struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	Price     float64    `json:"price"`
	GST       float64    `json:"gst"`
	Stock     float64    `json:"stock"`
	MinStock  float64    `json:"min_stock"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// StockStatus derives the display status from the stock level.
func (p Product) StockStatus() string {
	switch {
	case p.Stock <= 0:
		return StatusOutOfStock
	case p.Stock <= p.MinStock:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// SaveProductRequest creates or replaces a product.
type SaveProductRequest struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	GST      float64 `json:"gst" validate:"gte=0,lte=100"`
	Stock    float64 `json:"stock" validate:"gte=0"`
	MinStock float64 `json:"min_stock" validate:"gte=0"`
}

// ListProductsRequest filters the owner's products.
type ListProductsRequest struct {
	OwnerID string
	Search  string
}

// DecrementRequest asks for one product's stock to be reduced after a sale.
// The product is located by exact (name, price, gst) match.
type DecrementRequest struct {
	Name     string
	Price    float64
	GST      float64
	Quantity float64
}

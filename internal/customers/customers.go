// Package customers manages the customer book.
package customers

import "time"

// Customer is one customer record, scoped to the owner who created it.
type Customer struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Mobile    string     `json:"mobile"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// SaveCustomerRequest creates or replaces a customer.
type SaveCustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

// ListCustomersRequest filters the owner's customers.
type ListCustomersRequest struct {
	OwnerID string
	Search  string
}

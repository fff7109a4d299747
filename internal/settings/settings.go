// Package settings stores the per-owner business profile printed on
// invoices.
package settings

import "time"

// Profile is the single business-profile document each owner maintains.
type Profile struct {
	OwnerID      string     `json:"-"`
	BusinessName string     `json:"business_name"`
	GSTIN        string     `json:"gstin"`
	PAN          string     `json:"pan"`
	Address      string     `json:"address"`
	Phone        string     `json:"phone"`
	BankDetails  string     `json:"bank_details"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// SaveProfileRequest replaces the owner's profile.
type SaveProfileRequest struct {
	BusinessName string `json:"business_name" validate:"required"`
	GSTIN        string `json:"gstin"`
	PAN          string `json:"pan"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	BankDetails  string `json:"bank_details"`
}

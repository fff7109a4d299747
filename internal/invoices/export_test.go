package invoices

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstbill/gstbill/internal/billing"
)

func TestRenderPDF(t *testing.T) {
	renderer := NewPDFRenderer(billing.PriceExclusive)

	inv := Invoice{
		ID:             "inv-1",
		InvoiceNumber:  "INV-25-0042",
		CustomerName:   "Ramesh Kumar",
		CustomerMobile: "9876543210",
		Products: []LineItem{
			{Name: "Cylinder", Quantity: 2, UnitPrice: 900, TaxRatePercent: 5, TaxableValue: 1800, TaxAmount: 90, LineTotal: 1890},
			{Name: "Regulator", Quantity: 1, UnitPrice: 300, TaxRatePercent: 18, TaxableValue: 300, TaxAmount: 54, LineTotal: 354},
		},
		Subtotal:   2100,
		TaxAmount:  144,
		GrandTotal: 2244,
		Status:     StatusActive,
		CreatedAt:  time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
	}
	profile := BusinessProfile{
		Name:    "BILLA TRADERS",
		Address: "DICHPALLY RS, NIZAMABAD TELANGANA 503175",
		GSTIN:   "36AAAAA0000A1Z5",
		PAN:     "AAAAA0000A",
	}

	data, err := renderer.Render(inv, profile)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderPDFInclusiveConvention(t *testing.T) {
	renderer := NewPDFRenderer(billing.PriceInclusive)

	inv := Invoice{
		InvoiceNumber: "INV-25-0001",
		CustomerName:  "Suresh",
		Products: []LineItem{
			{Name: "Stove", Quantity: 1, UnitPrice: 118, TaxRatePercent: 18, TaxableValue: 100, TaxAmount: 18, LineTotal: 118},
		},
		Subtotal:   100,
		TaxAmount:  18,
		GrandTotal: 118,
		CreatedAt:  time.Now(),
	}

	data, err := renderer.Render(inv, BusinessProfile{Name: "Shop"})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

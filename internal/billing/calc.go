// Package billing holds the invoice arithmetic and document numbering logic.
package billing

import "math"

// PriceConvention declares how unit prices on incoming line items are read.
type PriceConvention string

const (
	// PriceExclusive treats unit prices as pre-tax amounts.
	PriceExclusive PriceConvention = "exclusive"
	// PriceInclusive treats unit prices as tax-inclusive amounts and
	// decomposes them before computing line totals.
	PriceInclusive PriceConvention = "inclusive"
)

// Valid reports whether the convention is one of the known values.
func (c PriceConvention) Valid() bool {
	return c == PriceExclusive || c == PriceInclusive
}

// LineInput carries the numeric fields of one line item.
type LineInput struct {
	Quantity       float64
	UnitPrice      float64
	TaxRatePercent float64
}

// LineAmounts is the computed money breakdown of one line item.
type LineAmounts struct {
	TaxableValue float64
	TaxAmount    float64
	LineTotal    float64
}

// Totals aggregates line amounts across an invoice.
type Totals struct {
	Subtotal   float64
	TaxAmount  float64
	GrandTotal float64
}

// Calculator performs pure invoice arithmetic. It never returns errors:
// malformed numeric input is coerced to zero so partially filled forms still
// produce a running total.
type Calculator struct {
	convention PriceConvention
}

// NewCalculator constructs a calculator. Unknown conventions fall back to
// exclusive pricing.
func NewCalculator(convention PriceConvention) *Calculator {
	if !convention.Valid() {
		convention = PriceExclusive
	}
	return &Calculator{convention: convention}
}

// Convention returns the active price convention.
func (c *Calculator) Convention() PriceConvention {
	return c.convention
}

// ComputeLine computes the taxable value, tax amount and total of a single
// line. Quantity and unit price are clamped to >= 0 and the tax rate to
// [0,100] before use.
func (c *Calculator) ComputeLine(quantity, unitPrice, taxRatePercent float64) LineAmounts {
	quantity = clampNonNegative(quantity)
	unitPrice = clampNonNegative(unitPrice)
	taxRatePercent = clampRate(taxRatePercent)

	if c.convention == PriceInclusive {
		unitPrice, _ = DecomposeInclusive(unitPrice, taxRatePercent)
	}

	taxable := quantity * unitPrice
	tax := taxable * (taxRatePercent / 100)
	return LineAmounts{
		TaxableValue: taxable,
		TaxAmount:    tax,
		LineTotal:    taxable + tax,
	}
}

// ComputeInvoiceTotals folds every line into invoice level totals. An empty
// list yields all-zero totals. Accumulation keeps full float precision;
// rounding happens only at presentation or persistence boundaries via Round2.
func (c *Calculator) ComputeInvoiceTotals(lines []LineInput) Totals {
	var totals Totals
	for _, line := range lines {
		amounts := c.ComputeLine(line.Quantity, line.UnitPrice, line.TaxRatePercent)
		totals.Subtotal += amounts.TaxableValue
		totals.TaxAmount += amounts.TaxAmount
		totals.GrandTotal += amounts.LineTotal
	}
	return totals
}

// DecomposeInclusive splits a tax-inclusive unit price into its pre-tax part
// and the tax carried per unit.
func DecomposeInclusive(unitPrice, taxRatePercent float64) (preTax, taxPerUnit float64) {
	unitPrice = clampNonNegative(unitPrice)
	taxRatePercent = clampRate(taxRatePercent)
	preTax = unitPrice / (1 + taxRatePercent/100)
	return preTax, unitPrice - preTax
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clampRate(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

package invoices

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/gstbill/gstbill/internal/billing"
)

// BusinessProfile carries the seller details printed on the invoice header.
// The caller maps it from the owner's settings document.
type BusinessProfile struct {
	Name        string
	Address     string
	Phone       string
	GSTIN       string
	PAN         string
	BankDetails string
}

// PDFRenderer renders an invoice as a printable TAX INVOICE document.
type PDFRenderer struct {
	convention billing.PriceConvention
	printer    *message.Printer
}

// NewPDFRenderer constructs a renderer using the configured price convention
// so the printed per-unit breakdown matches the stored totals.
func NewPDFRenderer(convention billing.PriceConvention) *PDFRenderer {
	return &PDFRenderer{
		convention: convention,
		printer:    message.NewPrinter(language.MustParse("en-IN")),
	}
}

// Render produces the PDF bytes for one invoice.
func (r *PDFRenderer) Render(inv Invoice, profile BusinessProfile) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tax Invoice "+inv.InvoiceNumber, false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, profile.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, profile.Address, "", 1, "C", false, 0, "")
	if profile.Phone != "" {
		pdf.CellFormat(0, 5, "Phone: "+profile.Phone, "", 1, "C", false, 0, "")
	}
	if profile.GSTIN != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("GSTIN: %s   PAN: %s", profile.GSTIN, profile.PAN), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "TAX INVOICE", "TB", 1, "C", false, 0, "")
	pdf.Ln(2)

	// Invoice meta and customer block
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, "Invoice No: "+inv.InvoiceNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Date: "+inv.CreatedAt.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 6, "Billed To: "+inv.CustomerName, "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Mobile: "+inv.CustomerMobile, "", 1, "R", false, 0, "")
	if inv.CustomerAddress != "" {
		pdf.CellFormat(0, 6, "Address: "+inv.CustomerAddress, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// Line-item table
	widths := []float64{10, 60, 18, 28, 16, 28, 30}
	headers := []string{"No", "Product", "Qty", "Price", "GST %", "GST Amt", "Total"}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, item := range inv.Products {
		unit := item.UnitPrice
		if r.convention == billing.PriceInclusive {
			unit, _ = billing.DecomposeInclusive(item.UnitPrice, item.TaxRatePercent)
		}
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, trimQty(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.money(unit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%g%%", item.TaxRatePercent), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[5], 6, r.money(item.TaxAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[6], 6, r.money(item.LineTotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// Totals block
	pdf.SetFont("Arial", "", 10)
	r.totalRow(pdf, "Subtotal:", inv.Subtotal, false)
	r.totalRow(pdf, "GST:", inv.TaxAmount, false)
	pdf.SetFont("Arial", "B", 11)
	r.totalRow(pdf, "Grand Total:", inv.GrandTotal, true)
	pdf.Ln(2)

	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, "Amount in Words: "+AmountInWords(inv.GrandTotal), "", "L", false)
	pdf.Ln(6)

	// Footer
	pdf.SetFont("Arial", "", 8)
	pdf.MultiCell(0, 4, "Terms & Conditions: 1. Goods once sold cannot be taken back. 2. Payment due within 30 days.", "", "L", false)
	if profile.BankDetails != "" {
		pdf.MultiCell(0, 4, "Bank Details: "+profile.BankDetails, "", "L", false)
	}
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, "For "+profile.Name, "", 1, "R", false, 0, "")
	pdf.Ln(8)
	pdf.CellFormat(0, 5, "(Authorized Signatory)", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoices: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) totalRow(pdf *gofpdf.Fpdf, label string, value float64, border bool) {
	borderStr := ""
	if border {
		borderStr = "T"
	}
	pdf.CellFormat(130, 7, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, label, borderStr, 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, r.money(value), borderStr, 1, "R", false, 0, "")
}

// money formats an amount with en-IN digit grouping, e.g. 1,23,456.78.
func (r *PDFRenderer) money(v float64) string {
	return "Rs " + r.printer.Sprint(number.Decimal(billing.Round2(v), number.Scale(2)))
}

func trimQty(q float64) string {
	return fmt.Sprintf("%g", q)
}

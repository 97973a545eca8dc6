/*
Package export renders assembled invoices as documents and names the files.

PURPOSE:
  The renderer is presentation only. It reads every figure (quantities,
  rates, line totals, subtotal, tax, total) verbatim from the Invoice and
  never recomputes them, so a rendered document always agrees with the
  Validator's view of the same invoice.

LAYOUT (A4 portrait, mm):
  - Provider block (name, address, phone, email, ABN) and INVOICE title
  - Invoice number and date
  - BILL TO: client, NDIS number, address, plan manager
  - Service period
  - Line item table: Item Code | Description | Dates | Qty | Rate | Amount
  - Subtotal, GST, TOTAL
  - Payment details and footer

SEE ALSO:
  - filename.go: output file naming
  - invoice/format.go: currency and date formatting shared with the CLI
*/
package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/invoice"
)

// BankDetails are printed under "Payment Details".
type BankDetails struct {
	AccountName   string
	BSB           string
	AccountNumber string
}

// Company is the provider issuing the invoice.
type Company struct {
	Name    string
	ABN     string
	Address string
	Phone   string
	Email   string
	Bank    BankDetails
}

const (
	pageMargin   = 10.0
	bottomMargin = 15.0
	lineHeight   = 5.0
)

// column widths sum to the printable width of A4 (190mm)
var columns = []struct {
	title string
	width float64
	align string
}{
	{"Item Code", 34, "L"},
	{"Description", 62, "L"},
	{"Dates", 44, "L"},
	{"Qty", 14, "R"},
	{"Rate", 18, "R"},
	{"Amount", 18, "R"},
}

// RenderPDF writes inv as a PDF document to w.
func RenderPDF(w io.Writer, inv *invoice.Invoice, company Company) error {
	if inv == nil {
		return fmt.Errorf("render pdf: nil invoice")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	writeHeader(pdf, tr, inv, company)
	writeClient(pdf, tr, inv)
	writeLineItems(pdf, tr, inv.LineItems)
	writeTotals(pdf, inv)
	writePayment(pdf, tr, company)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// =============================================================================
// SECTIONS
// =============================================================================

func writeHeader(pdf *gofpdf.Fpdf, tr func(string) string, inv *invoice.Invoice, company Company) {
	top := pdf.GetY()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(120, 9, tr(company.Name))
	pdf.Ln(9)

	pdf.SetFont("Arial", "", 8)
	for _, line := range []string{
		company.Address,
		labelled("Phone", company.Phone),
		labelled("Email", company.Email),
	} {
		if line == "" {
			continue
		}
		pdf.Cell(120, 4, tr(line))
		pdf.Ln(4)
	}
	if company.ABN != "" {
		pdf.SetFont("Arial", "B", 8)
		pdf.Cell(120, 4, tr("ABN: "+company.ABN))
		pdf.Ln(4)
	}
	bottom := pdf.GetY()

	pdf.SetXY(130, top)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(70, 9, "INVOICE", "", 2, "R", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(70, 5, tr("Invoice #: "+inv.Number), "", 2, "R", false, 0, "")
	pdf.CellFormat(70, 5, "Date: "+inv.Date.Format(calendar.HeaderLayout), "", 2, "R", false, 0, "")

	pdf.SetXY(pageMargin, max(bottom, pdf.GetY()))
	pdf.Ln(8)
}

func writeClient(pdf *gofpdf.Fpdf, tr func(string) string, inv *invoice.Invoice) {
	client := inv.Client

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(95, 6, "BILL TO:")
	pdf.Ln(7)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(95, 5, tr(client.Name))
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(95, 5, tr("NDIS Number: "+client.NDISNumber))
	pdf.Ln(5)
	if client.Address != "" {
		pdf.Cell(95, 5, tr(client.Address))
		pdf.Ln(5)
	}
	if client.PlanManager != "" {
		pdf.Cell(95, 5, tr("Plan Manager: "+client.PlanManager))
		pdf.Ln(5)
		if client.PlanManagerEmail != "" {
			pdf.Cell(95, 5, tr("Email: "+client.PlanManagerEmail))
			pdf.Ln(5)
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(190, 6, fmt.Sprintf("Service Period: %s - %s",
		inv.Start.Format(calendar.HeaderLayout), inv.End.Format(calendar.HeaderLayout)))
	pdf.Ln(10)
}

func writeTableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range columns {
		ln := 0
		if i == len(columns)-1 {
			ln = 1
		}
		pdf.CellFormat(col.width, 8, col.title, "1", ln, "C", true, 0, "")
	}
	pdf.SetFont("Arial", "", 8)
}

func writeLineItems(pdf *gofpdf.Fpdf, tr func(string) string, items []invoice.LineItem) {
	writeTableHeader(pdf)

	_, pageHeight := pdf.GetPageSize()
	for _, li := range items {
		cells := []string{
			li.ServiceCode,
			li.Description,
			li.Dates,
			invoice.FormatQuantity(li.Quantity),
			invoice.FormatCurrency(li.UnitRate),
			invoice.FormatCurrency(li.Total),
		}

		// Wrap each cell and size the row to the tallest one.
		wrapped := make([][]string, len(cells))
		rows := 1
		for i, text := range cells {
			for _, line := range pdf.SplitLines([]byte(tr(text)), columns[i].width-2) {
				wrapped[i] = append(wrapped[i], string(line))
			}
			rows = max(rows, len(wrapped[i]))
		}
		rowHeight := float64(rows)*lineHeight + 1

		if pdf.GetY()+rowHeight > pageHeight-bottomMargin {
			pdf.AddPage()
			writeTableHeader(pdf)
		}

		x, y := pdf.GetX(), pdf.GetY()
		for i, col := range columns {
			pdf.Rect(x, y, col.width, rowHeight, "D")
			for j, line := range wrapped[i] {
				pdf.SetXY(x+1, y+0.5+float64(j)*lineHeight)
				pdf.CellFormat(col.width-2, lineHeight, line, "", 0, col.align, false, 0, "")
			}
			x += col.width
		}
		pdf.SetXY(pageMargin, y+rowHeight)
	}
}

func writeTotals(pdf *gofpdf.Fpdf, inv *invoice.Invoice) {
	const labelWidth, amountWidth = 152.0, 38.0

	pdf.Ln(5)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(labelWidth, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(amountWidth, 6, invoice.FormatCurrency(inv.Subtotal), "", 1, "R", false, 0, "")
	pdf.CellFormat(labelWidth, 6, "GST:", "", 0, "R", false, 0, "")
	pdf.CellFormat(amountWidth, 6, invoice.FormatCurrency(inv.Tax), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(labelWidth, 9, "TOTAL:", "T", 0, "R", false, 0, "")
	pdf.CellFormat(amountWidth, 9, invoice.FormatCurrency(inv.Total), "T", 1, "R", false, 0, "")
}

func writePayment(pdf *gofpdf.Fpdf, tr func(string) string, company Company) {
	bank := company.Bank
	if bank != (BankDetails{}) {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(190, 6, "Payment Details:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		for _, line := range []string{
			labelled("Account Name", bank.AccountName),
			labelled("BSB", bank.BSB),
			labelled("Account Number", bank.AccountNumber),
		} {
			if line == "" {
				continue
			}
			pdf.Cell(190, 5, tr(line))
			pdf.Ln(5)
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(190, 4, "Thank you for your business!", "", 1, "C", false, 0, "")
	if company.Email != "" {
		pdf.CellFormat(190, 4, tr("For queries, please contact "+company.Email), "", 1, "C", false, 0, "")
	}
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

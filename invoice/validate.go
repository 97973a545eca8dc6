/*
validate.go - Invoice consistency checks

PURPOSE:
  Re-derives every figure of an invoice from its line items and reports
  discrepancies. Nothing here returns an error or mutates the invoice: the
  result is a list of findings a caller can use to gate export.

CHECKS (tolerance 0.01):
  - each line:   round(quantity x rate, 2) vs stored total  -> LineItemMismatch
  - subtotal:    sum of line totals vs stored subtotal       -> TotalMismatch
  - tax:         subtotal x tax rate vs stored tax           -> TotalMismatch
  - total:       subtotal + tax vs stored total              -> TotalMismatch
  - period:      start after end                             -> RangeInvalid
  - client:      blank name or NDIS number                   -> IncompleteClient

SUMMARY:
  Travel lines count toward km, every other line toward hours.
*/
package invoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/brightsupport/invoice-engine/calendar"
)

// Tolerance is the largest difference accepted as currency rounding.
var Tolerance = decimal.RequireFromString("0.01")

// =============================================================================
// FINDINGS
// =============================================================================

type FindingKind string

const (
	LineItemMismatch FindingKind = "lineItemMismatch"
	TotalMismatch    FindingKind = "totalMismatch"
	RangeInvalid     FindingKind = "rangeInvalid"
	IncompleteClient FindingKind = "incompleteClient"
)

// Label is the group heading used by FormatFindings.
func (k FindingKind) Label() string {
	switch k {
	case LineItemMismatch:
		return "line item"
	case TotalMismatch:
		return "total"
	case RangeInvalid:
		return "date range"
	case IncompleteClient:
		return "client"
	}
	return string(k)
}

// Finding is one discrepancy. Expected/Actual are set for numeric checks.
type Finding struct {
	Kind        FindingKind      `json:"kind"`
	Message     string           `json:"message"`
	ServiceCode string           `json:"service_code,omitempty"`
	Expected    *decimal.Decimal `json:"expected,omitempty"`
	Actual      *decimal.Decimal `json:"actual,omitempty"`
}

// Summary holds the re-derived figures.
type Summary struct {
	TotalHours decimal.Decimal `json:"total_hours"`
	TotalKm    decimal.Decimal `json:"total_km"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// Validation is the validator's verdict.
type Validation struct {
	IsValid  bool      `json:"is_valid"`
	Findings []Finding `json:"findings"`
	Summary  Summary   `json:"summary"`
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks invoices built with the given tax rate.
type Validator struct {
	TaxRate decimal.Decimal
}

func (v Validator) Validate(inv *Invoice) Validation {
	findings := []Finding{}
	numeric := func(kind FindingKind, code string, expected, actual decimal.Decimal, format string, args ...any) {
		if expected.Sub(actual).Abs().GreaterThan(Tolerance) {
			e, a := expected, actual
			findings = append(findings, Finding{
				Kind:        kind,
				ServiceCode: code,
				Message:     fmt.Sprintf(format, args...),
				Expected:    &e,
				Actual:      &a,
			})
		}
	}

	hours, km, subtotal := decimal.Zero, decimal.Zero, decimal.Zero
	for _, li := range inv.LineItems {
		expected := lineTotal(li.Quantity, li.UnitRate)
		actual := li.Total.Round(2)
		numeric(LineItemMismatch, li.ServiceCode, expected, actual,
			"line item %q total mismatch: %s × %s = %s, but got %s",
			li.ServiceCode, FormatQuantity(li.Quantity), FormatCurrency(li.UnitRate),
			FormatCurrency(expected), FormatCurrency(actual))

		subtotal = subtotal.Add(li.Total)
		if li.IsTravel() {
			km = km.Add(li.Quantity)
		} else {
			hours = hours.Add(li.Quantity)
		}
	}

	subtotal = subtotal.Round(2)
	numeric(TotalMismatch, "", subtotal, inv.Subtotal.Round(2),
		"subtotal mismatch: sum of line items = %s, but invoice subtotal = %s",
		FormatCurrency(subtotal), FormatCurrency(inv.Subtotal))

	expectedTax := inv.Subtotal.Mul(v.TaxRate).Round(2)
	numeric(TotalMismatch, "", expectedTax, inv.Tax.Round(2),
		"tax mismatch: expected %s, got %s", FormatCurrency(expectedTax), FormatCurrency(inv.Tax))

	expectedTotal := inv.Subtotal.Add(inv.Tax).Round(2)
	numeric(TotalMismatch, "", expectedTotal, inv.Total.Round(2),
		"total mismatch: %s + %s = %s, but got %s",
		FormatCurrency(inv.Subtotal), FormatCurrency(inv.Tax), FormatCurrency(expectedTotal), FormatCurrency(inv.Total))

	if inv.Start.After(inv.End) {
		findings = append(findings, Finding{
			Kind: RangeInvalid,
			Message: fmt.Sprintf("date range invalid: start date (%s) is after end date (%s)",
				inv.Start.Format(calendar.DisplayLayout), inv.End.Format(calendar.DisplayLayout)),
		})
	}

	if missing := inv.Client.Missing(); len(missing) > 0 {
		findings = append(findings, Finding{
			Kind:    IncompleteClient,
			Message: "client information incomplete: name and NDIS number are required",
		})
	}

	return Validation{
		IsValid:  len(findings) == 0,
		Findings: findings,
		Summary:  Summary{TotalHours: hours, TotalKm: km, Subtotal: subtotal},
	}
}

// FormatFindings groups findings by kind, in order of first appearance:
//
//	LINE ITEM ERRORS:
//	  • line item "X" total mismatch: ...
func FormatFindings(findings []Finding) string {
	if len(findings) == 0 {
		return ""
	}
	var (
		order   []FindingKind
		grouped = map[FindingKind][]Finding{}
	)
	for _, f := range findings {
		if _, seen := grouped[f.Kind]; !seen {
			order = append(order, f.Kind)
		}
		grouped[f.Kind] = append(grouped[f.Kind], f)
	}

	var b strings.Builder
	for _, kind := range order {
		fmt.Fprintf(&b, "\n%s ERRORS:\n", strings.ToUpper(kind.Label()))
		for _, f := range grouped[kind] {
			fmt.Fprintf(&b, "  • %s\n", f.Message)
		}
	}
	return b.String()
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brightsupport/invoice-engine/invoice"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE.json",
		Short: "Re-check the arithmetic of a saved invoice",
		Long: `Read an invoice (or the output of "calculate --json") and recompute every line
total, the subtotal, tax and total. Exits non-zero when any check fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			inv, err := decodeInvoice(data)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			v := a.engine.Validator().Validate(inv)
			out := cmd.OutOrStdout()
			if !v.IsValid {
				fmt.Fprint(out, invoice.FormatFindings(v.Findings))
				return errInvalidInvoice
			}

			fmt.Fprintf(out, "Invoice %s is valid\n", inv.Number)
			fmt.Fprintf(out, "  Hours:    %s\n", invoice.FormatQuantity(v.Summary.TotalHours))
			fmt.Fprintf(out, "  Km:       %s\n", invoice.FormatQuantity(v.Summary.TotalKm))
			fmt.Fprintf(out, "  Subtotal: %s\n", invoice.FormatCurrency(v.Summary.Subtotal))
			return nil
		},
	}
}

// decodeInvoice accepts a bare invoice or a calculation wrapping one.
func decodeInvoice(data []byte) (*invoice.Invoice, error) {
	var wrapped struct {
		Invoice *invoice.Invoice `json:"invoice"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Invoice != nil {
		return wrapped.Invoice, nil
	}

	var inv invoice.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

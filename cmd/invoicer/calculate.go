package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/export"
	"github.com/brightsupport/invoice-engine/invoice"
)

var errInvalidInvoice = errors.New("invoice failed validation")

func newCalculateCmd(a *app) *cobra.Command {
	var (
		start, end, number, date              string
		client                                invoice.ClientInfo
		daytime, evening, sleepover, travelKm string
		overrides, holidays, excluded         []string
		randomize, asJSON                     bool
		pdfPath                               string
	)

	defaults := a.cfg.Billing.DefaultSchedule

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate an invoice for a service period",
		Long: `Categorize every day of the period (weekday, Saturday, Sunday, public holiday),
apply the schedule and per-day overrides, price the buckets against the catalog
and print the invoice. The result is validated before it is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			req, err := buildRequest(a, start, end, number, date, client,
				daytime, evening, sleepover, travelKm, overrides, holidays, excluded)
			if err != nil {
				return err
			}

			engine := a.engine
			if randomize {
				custom := *a.engine
				custom.Travel = invoice.TravelRandomized
				engine = &custom
			}

			calc, err := engine.Calculate(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to calculate invoice: %w", err)
			}
			if pdfPath != "" && calc.Validation.IsValid && calc.Invoice.Number == "" {
				if calc.Invoice.Number, err = a.numbers.Next(ctx, calc.Invoice.Date); err != nil {
					return err
				}
			}

			for _, w := range calc.Warnings {
				a.log.Warn().Str("category", string(w.Category)).Msg(w.Message)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(calc); err != nil {
					return err
				}
			} else {
				printInvoice(out, calc)
			}

			if pdfPath != "" {
				if !calc.Validation.IsValid {
					return fmt.Errorf("not writing PDF: %w", errInvalidInvoice)
				}
				path, err := writePDF(a, pdfPath, calc.Invoice)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&start, "start", "", "First day of the service period (YYYY-MM-DD)")
	f.StringVar(&end, "end", "", "Last day of the service period (YYYY-MM-DD)")
	f.StringVar(&number, "number", "", "Invoice number (allocated automatically for --pdf)")
	f.StringVar(&date, "date", "", "Invoice date (default today)")
	f.StringVar(&client.Name, "client", "", "Participant name")
	f.StringVar(&client.NDISNumber, "ndis", "", "Participant NDIS number")
	f.StringVar(&client.Address, "address", "", "Participant address")
	f.StringVar(&client.PlanManager, "plan-manager", "", "Plan manager name")
	f.StringVar(&client.PlanManagerEmail, "plan-manager-email", "", "Plan manager email")
	f.StringVar(&daytime, "daytime", defaults.Daytime.String(), "Default daytime hours per day")
	f.StringVar(&evening, "evening", defaults.Evening.String(), "Default evening hours per day")
	f.StringVar(&sleepover, "sleepover", defaults.Sleepover.String(), "Default sleepover units per day")
	f.StringVar(&travelKm, "travel-km", a.cfg.Billing.TravelKmPerDay.String(), "Default travel km per billed day")
	f.StringArrayVar(&overrides, "override", nil, "Per-day schedule DATE=daytime,evening,sleepover[,km] (repeatable)")
	f.StringArrayVar(&holidays, "holiday", nil, "Manual public holiday DATE[=Name] (repeatable)")
	f.StringSliceVar(&excluded, "exclude", nil, "Dates not to bill (comma separated or repeatable)")
	f.BoolVar(&randomize, "randomize", false, "Randomize the daily travel breakdown (total unchanged)")
	f.BoolVar(&asJSON, "json", false, "Print the calculation as JSON")
	f.StringVar(&pdfPath, "pdf", "", "Write a PDF to this file, or into this directory")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	return cmd
}

func buildRequest(a *app, start, end, number, date string, client invoice.ClientInfo,
	daytime, evening, sleepover, travelKm string, overrides, holidays, excluded []string,
) (invoice.Request, error) {
	var (
		req invoice.Request
		err error
	)
	req.Number = number
	req.Client = client

	if req.Start, err = calendar.ParseDate(start); err != nil {
		return req, fmt.Errorf("--start: %w", err)
	}
	if req.End, err = calendar.ParseDate(end); err != nil {
		return req, fmt.Errorf("--end: %w", err)
	}
	req.Date = calendar.FromTime(a.now())
	if date != "" {
		if req.Date, err = calendar.ParseDate(date); err != nil {
			return req, fmt.Errorf("--date: %w", err)
		}
	}

	if req.DefaultSchedule.Daytime, err = parseDecimal(daytime); err != nil {
		return req, fmt.Errorf("--daytime: %w", err)
	}
	if req.DefaultSchedule.Evening, err = parseDecimal(evening); err != nil {
		return req, fmt.Errorf("--evening: %w", err)
	}
	if req.DefaultSchedule.Sleepover, err = parseDecimal(sleepover); err != nil {
		return req, fmt.Errorf("--sleepover: %w", err)
	}
	if req.TravelKmPerDay, err = parseDecimal(travelKm); err != nil {
		return req, fmt.Errorf("--travel-km: %w", err)
	}

	if req.Overrides, err = parseOverrides(overrides); err != nil {
		return req, err
	}
	if req.ManualHolidays, err = parseHolidays(holidays); err != nil {
		return req, err
	}
	if req.ExcludedDates, err = parseDates(excluded); err != nil {
		return req, fmt.Errorf("--exclude: %w", err)
	}
	return req, nil
}

func printInvoice(w io.Writer, calc *invoice.Calculation) {
	inv := calc.Invoice

	if inv.Number != "" {
		fmt.Fprintf(w, "Invoice %s  (%s)\n", inv.Number, inv.Date.Format(calendar.HeaderLayout))
	}
	fmt.Fprintf(w, "Client:  %s  (NDIS %s)\n", inv.Client.Name, inv.Client.NDISNumber)
	fmt.Fprintf(w, "Period:  %s - %s\n\n",
		inv.Start.Format(calendar.HeaderLayout), inv.End.Format(calendar.HeaderLayout))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tDESCRIPTION\tQTY\tRATE\tTOTAL")
	for _, li := range inv.LineItems {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			li.ServiceCode, li.Description, invoice.FormatQuantity(li.Quantity),
			invoice.FormatCurrency(li.UnitRate), invoice.FormatCurrency(li.Total))
		if li.Dates != "" {
			fmt.Fprintf(tw, "\t  %s\t\t\t\n", li.Dates)
		}
	}
	tw.Flush()

	fmt.Fprintf(w, "\nSubtotal: %s\n", invoice.FormatCurrency(inv.Subtotal))
	fmt.Fprintf(w, "GST:      %s\n", invoice.FormatCurrency(inv.Tax))
	fmt.Fprintf(w, "TOTAL:    %s\n", invoice.FormatCurrency(inv.Total))

	for _, warning := range calc.Warnings {
		fmt.Fprintf(w, "\nWarning: %s", warning.Message)
	}
	if len(calc.Warnings) > 0 {
		fmt.Fprintln(w)
	}
	if !calc.Validation.IsValid {
		fmt.Fprint(w, invoice.FormatFindings(calc.Validation.Findings))
	}
}

// writePDF renders inv to path, or to a generated file name inside path when
// it is a directory.
func writePDF(a *app, path string, inv *invoice.Invoice) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, export.Filename(inv.Number, "pdf", inv.Start, inv.End, inv.Client.Name, a.now()))
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.RenderPDF(f, inv, a.cfg.Company.Provider()); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

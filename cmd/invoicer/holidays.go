package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brightsupport/invoice-engine/calendar"
)

func newHolidaysCmd(a *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List public holidays for the configured region",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = a.now().Year()
			}

			holidays := a.calendar.Holidays(year)
			out := cmd.OutOrStdout()
			if len(holidays) == 0 {
				fmt.Fprintf(out, "No %s holidays on record for %d.\n", a.calendar.Region(), year)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, h := range holidays {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Date.Format(calendar.DisplayLayout), h.Date.Weekday(), h.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year to list (default: this year)")
	return cmd
}

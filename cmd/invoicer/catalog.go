package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brightsupport/invoice-engine/catalog"
	"github.com/brightsupport/invoice-engine/invoice"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the service catalog",
		Long:  "List, export, import and reset the support items and rates used for pricing.",
	}

	cmd.AddCommand(
		newCatalogListCmd(a),
		newCatalogExportCmd(a),
		newCatalogImportCmd(a),
		newCatalogResetCmd(a),
	)

	return cmd
}

func newCatalogListCmd(a *app) *cobra.Command {
	var category, query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog.Load(cmd.Context())
			if err != nil {
				return err
			}
			cat := catalog.Category(category)
			if cat != "" && !cat.Valid() {
				return fmt.Errorf("unknown category %q", category)
			}

			entries := c.Filter(cat, query)
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No catalog entries found.")
				return nil
			}
			printEntries(cmd, entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only entries of this category")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by code or description")
	return cmd
}

func printEntries(cmd *cobra.Command, entries []catalog.Entry) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tCODE\tRATE\tACTIVE\tDESCRIPTION")
	for _, e := range entries {
		active := "yes"
		if !e.Active {
			active = "no"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Category.Label(), e.Code, invoice.FormatCurrency(e.Rate), active, e.Description)
	}
	tw.Flush()
}

func newCatalogExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as JSON (stdout or --output)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog.Load(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" {
				return c.Export(cmd.OutOrStdout())
			}
			if info, err := os.Stat(output); err == nil && info.IsDir() {
				output = filepath.Join(output, catalog.ExportFilename(a.now()))
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := c.Export(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries to %s\n", c.Len(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or a directory to write a timestamped file into (default: stdout)")
	return cmd
}

func newCatalogImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE.json",
		Short: "Replace the catalog with the entries in FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := catalog.DecodeEntries(f)
			if err != nil {
				return err
			}
			c, err := a.catalog.Import(cmd.Context(), entries)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries.\n", c.Len())
			return nil
		},
	}
}

func newCatalogResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard catalog edits and restore the default rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog.Reset(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog reset to %d default entries.\n", c.Len())
			return nil
		},
	}
}

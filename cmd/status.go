package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored revenue coverage by quarter",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("status"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		companyID, err := st.EnsureCompany(ctx, cfg.Company.Symbol, cfg.Company.Name)
		if err != nil {
			return err
		}

		coverage, err := st.Coverage(ctx, companyID)
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		out := cmd.OutOrStdout()

		if len(coverage) == 0 {
			p.Fprintf(out, "No stored quarters for %s\n", cfg.Company.Symbol)
			return nil
		}

		p.Fprintf(out, "%-10s %15s %10s %-25s\n", "PERIOD", "REVENUE", "SEGMENTS", "SOURCE")
		for _, c := range coverage {
			p.Fprintf(out, "%-10s %15d %10d %-25s\n", c.Period, c.Revenue, c.Segments, c.Source)
		}
		p.Fprintf(out, "\n%d stored quarters for %s\n", len(coverage), cfg.Company.Symbol)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

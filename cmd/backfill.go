package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marketlens/reportcli/internal/backfill"
	"github.com/marketlens/reportcli/internal/report"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Seed curated historical quarters and segment estimates",
	Long:  "Inserts hand-confirmed and trend-estimated quarterly figures, then derives share-based segment estimates for quarters without segment coverage. Existing records are never touched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("backfill"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		b := backfill.New(st, cfg.Company.Symbol, cfg.Company.Name, report.DefaultCatalog().TransitionStart)
		result, err := b.Run(ctx)
		if err != nil {
			return err
		}

		cmd.Printf("Backfill complete: %d financial records, %d segment estimates inserted\n",
			result.FinancialsInserted, result.SegmentsInserted)
		zap.L().Info("backfill complete",
			zap.Int("financials", result.FinancialsInserted),
			zap.Int("segments", result.SegmentsInserted))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backfillCmd)
}

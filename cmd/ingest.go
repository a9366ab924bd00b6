package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/marketlens/reportcli/internal/model"
	"github.com/marketlens/reportcli/internal/report"
)

var ingestSchemaFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Extract revenue data from report text files",
	Long:  "Reads every .txt report in a directory, resolves each file's fiscal period, extracts total and per-segment revenue, and persists new records.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			cfg.Ingest.ReportsDir = args[0]
		}
		if ingestSchemaFile != "" {
			cfg.Ingest.SchemaFile = ingestSchemaFile
		}
		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		ctx := cmd.Context()

		catalog, err := report.LoadCatalog(cfg.Ingest.SchemaFile)
		if err != nil {
			return err
		}

		docs, err := loadDocuments(cfg.Ingest.ReportsDir)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return eris.Errorf("no .txt reports found in %s", cfg.Ingest.ReportsDir)
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		companyID, err := st.EnsureCompany(ctx, cfg.Company.Symbol, cfg.Company.Name)
		if err != nil {
			return err
		}

		engine := report.NewEngine(st, catalog, companyID, model.SourceOfficialReport)
		outcomes := engine.Run(ctx, docs)
		summary := model.Summarize(outcomes)

		printSummary(cmd, outcomes, summary)

		zap.L().Info("ingest complete",
			zap.Int("processed", summary.Processed),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("financials_saved", summary.FinancialSaved),
			zap.Int("segments_saved", summary.SegmentsSaved))

		if summary.Succeeded == 0 {
			return eris.New("no documents processed successfully")
		}
		return nil
	},
}

// loadDocuments reads every .txt file in dir in lexical order.
func loadDocuments(dir string) ([]report.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "read reports dir %s", dir)
	}

	var docs []report.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		text, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, eris.Wrapf(err, "read report %s", entry.Name())
		}
		docs = append(docs, report.Document{Filename: entry.Name(), Text: string(text)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}

func printSummary(cmd *cobra.Command, outcomes []model.Outcome, summary model.RunSummary) {
	p := message.NewPrinter(language.English)
	out := cmd.OutOrStdout()

	for _, o := range outcomes {
		if !o.OK() {
			p.Fprintf(out, "  %-60s %s\n", o.Filename, o.Status)
			continue
		}
		p.Fprintf(out, "  %-60s %s  total $%d  segments %d (%d new)\n",
			o.Filename, o.Period.Label, o.TotalRevenue, len(o.Segments), o.SegmentsSaved)
	}

	p.Fprintf(out, "\nProcessed %d documents: %d succeeded, %d failed\n",
		summary.Processed, summary.Succeeded, summary.Processed-summary.Succeeded)
	p.Fprintf(out, "Saved %d financial records and %d segment records\n",
		summary.FinancialSaved, summary.SegmentsSaved)
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSchemaFile, "schemas", "", "YAML file with segment schema overrides")
	rootCmd.AddCommand(ingestCmd)
}

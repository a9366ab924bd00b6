package store

import (
	"context"

	"github.com/marketlens/reportcli/internal/model"
)

// PeriodCoverage is one row of the coverage report: a stored company-wide
// revenue figure and how many segment rows accompany it.
type PeriodCoverage struct {
	Period        string       `json:"period"`
	FiscalYear    int          `json:"fiscal_year"`
	FiscalQuarter int          `json:"fiscal_quarter"`
	Revenue       int64        `json:"revenue"`
	Source        model.Source `json:"data_source"`
	Segments      int          `json:"segments"`
}

// Store defines the persistence interface for extracted financial data.
// Inserted rows are immutable: every write path is insert-if-absent keyed on
// (company, period, data_source) for financials and
// (company, period, category, data_source) for segments.
type Store interface {
	// Companies
	EnsureCompany(ctx context.Context, symbol, name string) (string, error)

	// Financials
	FinancialExists(ctx context.Context, companyID, period string, source model.Source) (bool, error)
	InsertFinancial(ctx context.Context, companyID string, rec model.FinancialRecord) error
	InsertFinancials(ctx context.Context, companyID string, recs []model.FinancialRecord) (int, error)
	Financials(ctx context.Context, companyID string) ([]model.FinancialRecord, error)

	// Segments
	SegmentExists(ctx context.Context, companyID, period, category string, source model.Source) (bool, error)
	InsertSegment(ctx context.Context, companyID string, rec model.SegmentRecord) error
	InsertSegments(ctx context.Context, companyID string, recs []model.SegmentRecord) (int, error)
	SegmentsForPeriod(ctx context.Context, companyID, period string) ([]model.SegmentRecord, error)

	// Reporting
	Coverage(ctx context.Context, companyID string) ([]PeriodCoverage, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

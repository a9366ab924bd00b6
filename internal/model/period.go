package model

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Period identifies one fiscal quarter. It is immutable once resolved;
// Label is a display artifact always derived from (FiscalYear, FiscalQuarter),
// never parsed back.
type Period struct {
	FiscalYear    int    `json:"fiscal_year"`
	FiscalQuarter int    `json:"fiscal_quarter"`
	Label         string `json:"period"`
}

// NewPeriod builds a Period with its canonical label.
func NewPeriod(year, quarter int) (Period, error) {
	if quarter < 1 || quarter > 4 {
		return Period{}, eris.Errorf("model: fiscal quarter out of range: %d", quarter)
	}
	if year < 1900 || year > 2200 {
		return Period{}, eris.Errorf("model: fiscal year out of range: %d", year)
	}
	return Period{
		FiscalYear:    year,
		FiscalQuarter: quarter,
		Label:         PeriodLabel(year, quarter),
	}, nil
}

// PeriodLabel returns the canonical display label for a fiscal quarter,
// e.g. "Q1-2025".
func PeriodLabel(year, quarter int) string {
	return fmt.Sprintf("Q%d-%d", quarter, year)
}

func (p Period) String() string {
	return p.Label
}

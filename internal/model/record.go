package model

// Source tags the provenance of a persisted record. Lower-confidence sources
// never overwrite higher-confidence ones: each source writes under its own
// key, and readers prefer official report extractions.
type Source string

const (
	// SourceOfficialReport marks values extracted from the text of an
	// official quarterly report.
	SourceOfficialReport Source = "official_report_text"

	// SourceEarningsReport marks hand-confirmed figures taken from earnings
	// coverage rather than parsed report text.
	SourceEarningsReport Source = "earnings_report"

	// SourceTrendEstimation marks quarters filled in from trend analysis.
	SourceTrendEstimation Source = "trend_estimation"

	// SourceEstimatedFromFinancial marks segment rows derived from a total
	// revenue figure using historical share percentages.
	SourceEstimatedFromFinancial Source = "estimated_from_financial"
)

// FinancialRecord is one company-wide revenue figure for a fiscal quarter.
// Revenue is in absolute currency units (USD).
type FinancialRecord struct {
	Period  Period `json:"period"`
	Revenue int64  `json:"revenue"`
	Source  Source `json:"data_source"`
}

// SegmentRecord is one business segment's revenue for a fiscal quarter.
// Records are never mutated after creation; a re-run supersedes rather than
// updates, subject to the store's existence check.
type SegmentRecord struct {
	Period            Period   `json:"period"`
	CategoryName      string   `json:"category_name"`
	Revenue           int64    `json:"revenue"`
	RevenuePercentage float64  `json:"revenue_percentage"`
	GrowthRate        *float64 `json:"yoy_growth,omitempty"`
	GrossMargin       *float64 `json:"gross_margin,omitempty"`
	Source            Source   `json:"data_source"`
}

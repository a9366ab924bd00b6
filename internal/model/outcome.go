package model

// OutcomeStatus classifies how processing one document ended. All failure
// statuses are document-scoped; none aborts a run.
type OutcomeStatus string

const (
	StatusSuccess                 OutcomeStatus = "success"
	StatusPeriodParseFailed       OutcomeStatus = "period_parse_failed"
	StatusTextExtractionFailed    OutcomeStatus = "text_extraction_failed"
	StatusRevenueExtractionFailed OutcomeStatus = "revenue_extraction_failed"
)

// Outcome is the result of processing one report document. A document either
// yields an Outcome or is skipped entirely; there is no partial retry.
type Outcome struct {
	Filename     string          `json:"filename"`
	Period       *Period         `json:"period,omitempty"`
	Status       OutcomeStatus   `json:"status"`
	TotalRevenue int64           `json:"total_revenue,omitempty"`
	Segments     []SegmentRecord `json:"segments,omitempty"`

	// Persistence results: FinancialSaved is false when the existence check
	// suppressed the insert, SegmentsSaved counts non-suppressed segments.
	FinancialSaved bool `json:"financial_saved"`
	SegmentsSaved  int  `json:"segments_saved"`
}

// OK reports whether the document was processed to completion.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// RunSummary aggregates outcomes across one ingestion run.
type RunSummary struct {
	Processed      int                   `json:"processed"`
	Succeeded      int                   `json:"succeeded"`
	FinancialSaved int                   `json:"financial_saved"`
	SegmentsSaved  int                   `json:"segments_saved"`
	Failures       map[string]string     `json:"failures,omitempty"` // filename → reason
	ByStatus       map[OutcomeStatus]int `json:"by_status,omitempty"`
}

// Summarize folds a list of outcomes into a run summary.
func Summarize(outcomes []Outcome) RunSummary {
	s := RunSummary{
		Failures: make(map[string]string),
		ByStatus: make(map[OutcomeStatus]int),
	}
	for _, o := range outcomes {
		s.Processed++
		s.ByStatus[o.Status]++
		if o.OK() {
			s.Succeeded++
			if o.FinancialSaved {
				s.FinancialSaved++
			}
			s.SegmentsSaved += o.SegmentsSaved
		} else {
			s.Failures[o.Filename] = string(o.Status)
		}
	}
	return s
}

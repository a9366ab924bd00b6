// Package report implements the report-text extraction engine: it resolves a
// document's fiscal period from its filename, extracts total and per-segment
// revenue figures from the report text with era-appropriate pattern schemas,
// mines each match's surroundings for growth and margin, range-checks every
// value, and hands deduplicated records to a persistence boundary.
package report

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/marketlens/reportcli/internal/model"
)

// Boundary is the persistence collaborator. The engine only checks then
// inserts; it never updates or deletes. Existence keys are
// (company, period, source) for financials and
// (company, period, category, source) for segments.
type Boundary interface {
	FinancialExists(ctx context.Context, companyID, period string, source model.Source) (bool, error)
	InsertFinancial(ctx context.Context, companyID string, rec model.FinancialRecord) error
	SegmentExists(ctx context.Context, companyID, period, category string, source model.Source) (bool, error)
	InsertSegment(ctx context.Context, companyID string, rec model.SegmentRecord) error
}

// Document is one report to process: a filename carrying the period phrasing
// and the already-extracted plain text of the report.
type Document struct {
	Filename string
	Text     string
}

// Engine runs the extraction pipeline. Nothing is shared across documents
// except the injected boundary; every other entity lives and dies with the
// document that produced it.
type Engine struct {
	boundary  Boundary
	catalog   *Catalog
	companyID string
	source    model.Source
}

// NewEngine builds an engine for one company. A nil catalog selects the
// built-in defaults.
func NewEngine(boundary Boundary, catalog *Catalog, companyID string, source model.Source) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{
		boundary:  boundary,
		catalog:   catalog,
		companyID: companyID,
		source:    source,
	}
}

// Run processes documents strictly sequentially: each document is fully
// resolved, extracted, filtered, and persisted before the next begins.
// A document's failure never halts the run; persistence errors fail only
// that document.
func (e *Engine) Run(ctx context.Context, docs []Document) []model.Outcome {
	outcomes := make([]model.Outcome, 0, len(docs))
	for _, doc := range docs {
		outcome, err := e.Process(ctx, doc)
		if err != nil {
			zap.L().Error("document processing failed",
				zap.String("filename", doc.Filename),
				zap.Error(err))
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// Process runs the full pipeline for one document. Expected failure modes
// come back as outcome statuses, not errors; the error return is reserved
// for unexpected conditions such as a failing persistence call.
func (e *Engine) Process(ctx context.Context, doc Document) (model.Outcome, error) {
	log := zap.L().With(zap.String("filename", doc.Filename))
	outcome := model.Outcome{Filename: doc.Filename}

	period, ok := ResolvePeriod(doc.Filename)
	if !ok {
		log.Warn("no period phrasing in filename")
		outcome.Status = model.StatusPeriodParseFailed
		return outcome, nil
	}
	outcome.Period = &period
	log = log.With(zap.String("period", period.Label))

	if strings.TrimSpace(doc.Text) == "" {
		log.Warn("empty document text")
		outcome.Status = model.StatusTextExtractionFailed
		return outcome, nil
	}

	// Total revenue first: segment percentages depend on it, and segment
	// extraction is meaningless without it.
	total, ok := ExtractMetric(doc.Text, e.catalog.Total)
	if !ok {
		log.Warn("no plausible total revenue")
		outcome.Status = model.StatusRevenueExtractionFailed
		return outcome, nil
	}
	outcome.TotalRevenue = total.Value
	log.Info("total revenue extracted", zap.Int64("revenue", total.Value))

	schema, matches := e.extractSegments(doc.Text, period.FiscalYear)
	if len(matches) > 0 && len(matches) < len(schema.Segments) {
		log.Info("partial segmentation",
			zap.String("schema", schema.Name),
			zap.Int("found", len(matches)),
			zap.Int("expected", len(schema.Segments)))
	}

	for _, m := range matches {
		window := Window(doc.Text, m.value.Start, m.value.End)
		rec := model.SegmentRecord{
			Period:            period,
			CategoryName:      m.name,
			Revenue:           m.value.Value,
			RevenuePercentage: float64(m.value.Value) / float64(total.Value) * 100,
			GrowthRate:        GrowthRate(window, e.catalog.Growth),
			GrossMargin:       GrossMargin(window, e.catalog.Margin),
			Source:            e.source,
		}
		outcome.Segments = append(outcome.Segments, rec)
	}

	if err := e.persist(ctx, &outcome); err != nil {
		return outcome, eris.Wrapf(err, "report: persist %s", doc.Filename)
	}

	outcome.Status = model.StatusSuccess
	log.Info("document processed",
		zap.Int("segments", len(outcome.Segments)),
		zap.Int("segments_saved", outcome.SegmentsSaved),
		zap.Bool("financial_saved", outcome.FinancialSaved))
	return outcome, nil
}

// segmentMatch pairs a schema segment name with its extracted value.
type segmentMatch struct {
	name  string
	value Extracted
}

// extractSegments applies the era's schema(s). In the transition band the
// new schema is tried first; if it matches fewer than two segments the
// legacy schema is tried, and whichever matched more categories wins (the
// new schema on a tie, since the band leans forward).
func (e *Engine) extractSegments(text string, year int) (*Schema, []segmentMatch) {
	schemas := e.catalog.Select(year)

	schema := schemas[0]
	matches := matchSchema(text, schema)
	if len(matches) >= minSegmentsForNewSchema || len(schemas) == 1 {
		return schema, matches
	}

	fallback := matchSchema(text, schemas[1])
	if len(fallback) > len(matches) {
		return schemas[1], fallback
	}
	return schema, matches
}

func matchSchema(text string, schema *Schema) []segmentMatch {
	var matches []segmentMatch
	for _, spec := range schema.Segments {
		if v, ok := ExtractMetric(text, spec); ok {
			matches = append(matches, segmentMatch{name: spec.Name, value: v})
		}
	}
	return matches
}

// persist writes the financial record and each segment record through the
// boundary, suppressing anything whose key already exists. Re-running the
// engine over the same document and persistence state is therefore a no-op.
func (e *Engine) persist(ctx context.Context, outcome *model.Outcome) error {
	period := outcome.Period.Label

	exists, err := e.boundary.FinancialExists(ctx, e.companyID, period, e.source)
	if err != nil {
		return eris.Wrap(err, "financial exists check")
	}
	if !exists {
		rec := model.FinancialRecord{
			Period:  *outcome.Period,
			Revenue: outcome.TotalRevenue,
			Source:  e.source,
		}
		if err := e.boundary.InsertFinancial(ctx, e.companyID, rec); err != nil {
			return eris.Wrap(err, "insert financial")
		}
		outcome.FinancialSaved = true
	}

	for _, rec := range outcome.Segments {
		exists, err := e.boundary.SegmentExists(ctx, e.companyID, period, rec.CategoryName, e.source)
		if err != nil {
			return eris.Wrapf(err, "segment exists check %s", rec.CategoryName)
		}
		if exists {
			continue
		}
		if err := e.boundary.InsertSegment(ctx, e.companyID, rec); err != nil {
			return eris.Wrapf(err, "insert segment %s", rec.CategoryName)
		}
		outcome.SegmentsSaved++
	}

	return nil
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/reportcli/internal/model"
	"github.com/marketlens/reportcli/internal/report"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_EnsureCompany_Idempotent(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	id1, err := s.EnsureCompany(ctx, "NTGR", "NETGEAR, Inc.")
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	id2, err := s.EnsureCompany(ctx, "NTGR", "NETGEAR Inc")
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "same symbol must resolve to the same company")
}

func TestSQLiteStore_FinancialRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	companyID, err := s.EnsureCompany(ctx, "NTGR", "NETGEAR, Inc.")
	require.NoError(t, err)

	period, err := model.NewPeriod(2025, 1)
	require.NoError(t, err)

	exists, err := s.FinancialExists(ctx, companyID, "Q1-2025", model.SourceOfficialReport)
	require.NoError(t, err)
	assert.False(t, exists)

	rec := model.FinancialRecord{Period: period, Revenue: 162_100_000, Source: model.SourceOfficialReport}
	require.NoError(t, s.InsertFinancial(ctx, companyID, rec))

	exists, err = s.FinancialExists(ctx, companyID, "Q1-2025", model.SourceOfficialReport)
	require.NoError(t, err)
	assert.True(t, exists)

	// Same period under a different source is a distinct key.
	exists, err = s.FinancialExists(ctx, companyID, "Q1-2025", model.SourceTrendEstimation)
	require.NoError(t, err)
	assert.False(t, exists)

	recs, err := s.Financials(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(162_100_000), recs[0].Revenue)
	assert.Equal(t, "Q1-2025", recs[0].Period.Label)
	assert.Equal(t, model.SourceOfficialReport, recs[0].Source)
}

func TestSQLiteStore_SegmentRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	companyID, err := s.EnsureCompany(ctx, "NTGR", "NETGEAR, Inc.")
	require.NoError(t, err)

	period, err := model.NewPeriod(2025, 1)
	require.NoError(t, err)

	growth := -8.7
	margin := 28.5
	require.NoError(t, s.InsertSegment(ctx, companyID, model.SegmentRecord{
		Period:            period,
		CategoryName:      "Home Networking",
		Revenue:           61_400_000,
		RevenuePercentage: 37.9,
		GrowthRate:        &growth,
		GrossMargin:       &margin,
		Source:            model.SourceOfficialReport,
	}))
	require.NoError(t, s.InsertSegment(ctx, companyID, model.SegmentRecord{
		Period:            period,
		CategoryName:      "Mobile",
		Revenue:           21_500_000,
		RevenuePercentage: 13.3,
		Source:            model.SourceOfficialReport,
	}))

	recs, err := s.SegmentsForPeriod(ctx, companyID, "Q1-2025")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Ordered by revenue descending.
	assert.Equal(t, "Home Networking", recs[0].CategoryName)
	require.NotNil(t, recs[0].GrowthRate)
	assert.Equal(t, -8.7, *recs[0].GrowthRate)
	require.NotNil(t, recs[0].GrossMargin)
	assert.Equal(t, 28.5, *recs[0].GrossMargin)

	assert.Equal(t, "Mobile", recs[1].CategoryName)
	assert.Nil(t, recs[1].GrowthRate)
	assert.Nil(t, recs[1].GrossMargin)
}

func TestSQLiteStore_BulkInsertSkipsExisting(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	companyID, err := s.EnsureCompany(ctx, "NTGR", "NETGEAR, Inc.")
	require.NoError(t, err)

	mk := func(year, quarter int, revenue int64) model.FinancialRecord {
		p, err := model.NewPeriod(year, quarter)
		require.NoError(t, err)
		return model.FinancialRecord{Period: p, Revenue: revenue, Source: model.SourceEarningsReport}
	}

	recs := []model.FinancialRecord{
		mk(2024, 1, 164_600_000),
		mk(2024, 2, 143_900_000),
		mk(2024, 3, 182_900_000),
	}

	n, err := s.InsertFinancials(ctx, companyID, recs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Second pass inserts nothing; stored figures are immutable.
	recs[0].Revenue = 999
	n, err = s.InsertFinancials(ctx, companyID, recs)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	stored, err := s.Financials(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, rec := range stored {
		assert.NotEqual(t, int64(999), rec.Revenue)
	}
}

func TestSQLiteStore_BulkInsertSegments(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	companyID, err := s.EnsureCompany(ctx, "NTGR", "NETGEAR, Inc.")
	require.NoError(t, err)

	period, err := model.NewPeriod(2024, 4)
	require.NoError(t, err)

	recs := []model.SegmentRecord{
		{Period: period, CategoryName: "NETGEAR for Business", Revenue: 82_000_000, RevenuePercentage: 45, Source: model.SourceEstimatedFromFinancial},
		{Period: period, CategoryName: "Home Networking", Revenue: 73_000_000, RevenuePercentage: 40, Source: model.SourceEstimatedFromFinancial},
		{Period: period, CategoryName: "Mobile", Revenue: 27_400_000, RevenuePercentage: 15, Source: model.SourceEstimatedFromFinancial},
	}

	n, err := s.InsertSegments(ctx, companyID, recs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.InsertSegments(ctx, companyID, recs)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSQLiteStore_Coverage(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	companyID, err := s.EnsureCompany(ctx, "NTGR", "NETGEAR, Inc.")
	require.NoError(t, err)

	q1, err := model.NewPeriod(2025, 1)
	require.NoError(t, err)
	q4, err := model.NewPeriod(2024, 4)
	require.NoError(t, err)

	require.NoError(t, s.InsertFinancial(ctx, companyID, model.FinancialRecord{
		Period: q1, Revenue: 162_100_000, Source: model.SourceOfficialReport,
	}))
	require.NoError(t, s.InsertFinancial(ctx, companyID, model.FinancialRecord{
		Period: q4, Revenue: 182_400_000, Source: model.SourceEarningsReport,
	}))
	require.NoError(t, s.InsertSegment(ctx, companyID, model.SegmentRecord{
		Period: q1, CategoryName: "Mobile", Revenue: 21_500_000, RevenuePercentage: 13.3,
		Source: model.SourceOfficialReport,
	}))

	coverage, err := s.Coverage(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, coverage, 2)

	// Newest first.
	assert.Equal(t, "Q1-2025", coverage[0].Period)
	assert.Equal(t, 1, coverage[0].Segments)
	assert.Equal(t, "Q4-2024", coverage[1].Period)
	assert.Equal(t, 0, coverage[1].Segments)
}

// Both stores back the extraction engine's persistence boundary.
var (
	_ report.Boundary = (*SQLiteStore)(nil)
	_ report.Boundary = (*PostgresStore)(nil)
	_ Store           = (*SQLiteStore)(nil)
	_ Store           = (*PostgresStore)(nil)
)

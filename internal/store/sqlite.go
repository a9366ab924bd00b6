package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/marketlens/reportcli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It exists for
// local runs and tests; the schema mirrors the PostgreSQL one.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	symbol     TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS financial_data (
	id             TEXT PRIMARY KEY,
	company_id     TEXT NOT NULL REFERENCES companies(id),
	period         TEXT NOT NULL,
	fiscal_year    INTEGER NOT NULL,
	fiscal_quarter INTEGER NOT NULL,
	revenue        INTEGER NOT NULL,
	data_source    TEXT NOT NULL,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (company_id, period, data_source)
);

CREATE TABLE IF NOT EXISTS product_line_revenue (
	id                 TEXT PRIMARY KEY,
	company_id         TEXT NOT NULL REFERENCES companies(id),
	period             TEXT NOT NULL,
	fiscal_year        INTEGER NOT NULL,
	fiscal_quarter     INTEGER NOT NULL,
	category_name      TEXT NOT NULL,
	revenue            INTEGER NOT NULL,
	revenue_percentage REAL NOT NULL DEFAULT 0,
	yoy_growth         REAL,
	gross_margin       REAL,
	data_source        TEXT NOT NULL,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (company_id, period, category_name, data_source)
);

CREATE INDEX IF NOT EXISTS idx_financial_data_company ON financial_data(company_id);
CREATE INDEX IF NOT EXISTS idx_product_line_company ON product_line_revenue(company_id);
CREATE INDEX IF NOT EXISTS idx_product_line_period ON product_line_revenue(company_id, period);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) EnsureCompany(ctx context.Context, symbol, name string) (string, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (id, symbol, name, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (symbol) DO UPDATE SET name = excluded.name`,
		uuid.New().String(), symbol, name, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: ensure company %s", symbol)
	}

	var id string
	err = s.db.QueryRowContext(ctx, `SELECT id FROM companies WHERE symbol = ?`, symbol).Scan(&id)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: lookup company %s", symbol)
	}
	return id, nil
}

func (s *SQLiteStore) FinancialExists(ctx context.Context, companyID, period string, source model.Source) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM financial_data WHERE company_id = ? AND period = ? AND data_source = ?)`,
		companyID, period, string(source),
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: financial exists %s", period)
	}
	return exists, nil
}

func (s *SQLiteStore) InsertFinancial(ctx context.Context, companyID string, rec model.FinancialRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO financial_data (id, company_id, period, fiscal_year, fiscal_quarter, revenue, data_source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), companyID, rec.Period.Label,
		rec.Period.FiscalYear, rec.Period.FiscalQuarter,
		rec.Revenue, string(rec.Source), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert financial %s", rec.Period.Label)
}

func (s *SQLiteStore) InsertFinancials(ctx context.Context, companyID string, recs []model.FinancialRecord) (int, error) {
	inserted := 0
	now := time.Now().UTC()
	for _, rec := range recs {
		res, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO financial_data (id, company_id, period, fiscal_year, fiscal_quarter, revenue, data_source, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), companyID, rec.Period.Label,
			rec.Period.FiscalYear, rec.Period.FiscalQuarter,
			rec.Revenue, string(rec.Source), now,
		)
		if err != nil {
			return inserted, eris.Wrapf(err, "sqlite: bulk insert financial %s", rec.Period.Label)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, eris.Wrap(err, "sqlite: rows affected")
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (s *SQLiteStore) Financials(ctx context.Context, companyID string) ([]model.FinancialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT period, fiscal_year, fiscal_quarter, revenue, data_source
		 FROM financial_data
		 WHERE company_id = ?
		 ORDER BY fiscal_year DESC, fiscal_quarter DESC`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list financials")
	}
	defer rows.Close()

	var recs []model.FinancialRecord
	for rows.Next() {
		var rec model.FinancialRecord
		var source string
		if err := rows.Scan(&rec.Period.Label, &rec.Period.FiscalYear, &rec.Period.FiscalQuarter, &rec.Revenue, &source); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan financial")
		}
		rec.Source = model.Source(source)
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list financials iterate")
}

func (s *SQLiteStore) SegmentExists(ctx context.Context, companyID, period, category string, source model.Source) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM product_line_revenue WHERE company_id = ? AND period = ? AND category_name = ? AND data_source = ?)`,
		companyID, period, category, string(source),
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: segment exists %s/%s", period, category)
	}
	return exists, nil
}

func (s *SQLiteStore) InsertSegment(ctx context.Context, companyID string, rec model.SegmentRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO product_line_revenue (id, company_id, period, fiscal_year, fiscal_quarter, category_name, revenue, revenue_percentage, yoy_growth, gross_margin, data_source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), companyID, rec.Period.Label,
		rec.Period.FiscalYear, rec.Period.FiscalQuarter,
		rec.CategoryName, rec.Revenue, rec.RevenuePercentage,
		rec.GrowthRate, rec.GrossMargin, string(rec.Source), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert segment %s/%s", rec.Period.Label, rec.CategoryName)
}

func (s *SQLiteStore) InsertSegments(ctx context.Context, companyID string, recs []model.SegmentRecord) (int, error) {
	inserted := 0
	now := time.Now().UTC()
	for _, rec := range recs {
		res, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO product_line_revenue (id, company_id, period, fiscal_year, fiscal_quarter, category_name, revenue, revenue_percentage, yoy_growth, gross_margin, data_source, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), companyID, rec.Period.Label,
			rec.Period.FiscalYear, rec.Period.FiscalQuarter,
			rec.CategoryName, rec.Revenue, rec.RevenuePercentage,
			rec.GrowthRate, rec.GrossMargin, string(rec.Source), now,
		)
		if err != nil {
			return inserted, eris.Wrapf(err, "sqlite: bulk insert segment %s/%s", rec.Period.Label, rec.CategoryName)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, eris.Wrap(err, "sqlite: rows affected")
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (s *SQLiteStore) SegmentsForPeriod(ctx context.Context, companyID, period string) ([]model.SegmentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT period, fiscal_year, fiscal_quarter, category_name, revenue, revenue_percentage, yoy_growth, gross_margin, data_source
		 FROM product_line_revenue
		 WHERE company_id = ? AND period = ?
		 ORDER BY revenue DESC`,
		companyID, period,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: segments for %s", period)
	}
	defer rows.Close()

	var recs []model.SegmentRecord
	for rows.Next() {
		var rec model.SegmentRecord
		var source string
		if err := rows.Scan(&rec.Period.Label, &rec.Period.FiscalYear, &rec.Period.FiscalQuarter,
			&rec.CategoryName, &rec.Revenue, &rec.RevenuePercentage,
			&rec.GrowthRate, &rec.GrossMargin, &source); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan segment")
		}
		rec.Source = model.Source(source)
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: segments iterate")
}

func (s *SQLiteStore) Coverage(ctx context.Context, companyID string) ([]PeriodCoverage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.period, f.fiscal_year, f.fiscal_quarter, f.revenue, f.data_source,
		        (SELECT COUNT(*) FROM product_line_revenue p
		         WHERE p.company_id = f.company_id AND p.period = f.period) AS segments
		 FROM financial_data f
		 WHERE f.company_id = ?
		 ORDER BY f.fiscal_year DESC, f.fiscal_quarter DESC, f.data_source`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: coverage")
	}
	defer rows.Close()

	var coverage []PeriodCoverage
	for rows.Next() {
		var c PeriodCoverage
		var source string
		if err := rows.Scan(&c.Period, &c.FiscalYear, &c.FiscalQuarter, &c.Revenue, &source, &c.Segments); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan coverage")
		}
		c.Source = model.Source(source)
		coverage = append(coverage, c)
	}
	return coverage, eris.Wrap(rows.Err(), "sqlite: coverage iterate")
}

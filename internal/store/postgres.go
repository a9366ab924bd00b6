package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/marketlens/reportcli/internal/db"
	"github.com/marketlens/reportcli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest store operations: the ingest loop runs the
// existence checks and inserts once per record.
var preparedStatements = map[string]string{
	"financial_exists": `SELECT EXISTS(SELECT 1 FROM financial_data WHERE company_id = $1 AND period = $2 AND data_source = $3)`,
	"insert_financial": `INSERT INTO financial_data (id, company_id, period, fiscal_year, fiscal_quarter, revenue, data_source, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"segment_exists":   `SELECT EXISTS(SELECT 1 FROM product_line_revenue WHERE company_id = $1 AND period = $2 AND category_name = $3 AND data_source = $4)`,
	"insert_segment":   `INSERT INTO product_line_revenue (id, company_id, period, fiscal_year, fiscal_quarter, category_name, revenue, revenue_percentage, yoy_growth, gross_margin, data_source, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	symbol     TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS financial_data (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id     TEXT NOT NULL REFERENCES companies(id),
	period         TEXT NOT NULL,
	fiscal_year    INTEGER NOT NULL,
	fiscal_quarter INTEGER NOT NULL,
	revenue        BIGINT NOT NULL,
	data_source    TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (company_id, period, data_source)
);

CREATE TABLE IF NOT EXISTS product_line_revenue (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id         TEXT NOT NULL REFERENCES companies(id),
	period             TEXT NOT NULL,
	fiscal_year        INTEGER NOT NULL,
	fiscal_quarter     INTEGER NOT NULL,
	category_name      TEXT NOT NULL,
	revenue            BIGINT NOT NULL,
	revenue_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
	yoy_growth         DOUBLE PRECISION,
	gross_margin       DOUBLE PRECISION,
	data_source        TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (company_id, period, category_name, data_source)
);

CREATE INDEX IF NOT EXISTS idx_financial_data_company ON financial_data(company_id);
CREATE INDEX IF NOT EXISTS idx_financial_data_period ON financial_data(company_id, fiscal_year DESC, fiscal_quarter DESC);
CREATE INDEX IF NOT EXISTS idx_product_line_company ON product_line_revenue(company_id);
CREATE INDEX IF NOT EXISTS idx_product_line_period ON product_line_revenue(company_id, period);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) EnsureCompany(ctx context.Context, symbol, name string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO companies (id, symbol, name, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (symbol) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		uuid.New().String(), symbol, name, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: ensure company %s", symbol)
	}
	return id, nil
}

func (s *PostgresStore) FinancialExists(ctx context.Context, companyID, period string, source model.Source) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM financial_data WHERE company_id = $1 AND period = $2 AND data_source = $3)`,
		companyID, period, string(source),
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: financial exists %s", period)
	}
	return exists, nil
}

func (s *PostgresStore) InsertFinancial(ctx context.Context, companyID string, rec model.FinancialRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO financial_data (id, company_id, period, fiscal_year, fiscal_quarter, revenue, data_source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New().String(), companyID, rec.Period.Label,
		rec.Period.FiscalYear, rec.Period.FiscalQuarter,
		rec.Revenue, string(rec.Source), time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: insert financial %s", rec.Period.Label)
}

func (s *PostgresStore) InsertFinancials(ctx context.Context, companyID string, recs []model.FinancialRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []any{
			uuid.New().String(), companyID, rec.Period.Label,
			rec.Period.FiscalYear, rec.Period.FiscalQuarter,
			rec.Revenue, string(rec.Source), now,
		})
	}

	n, err := db.BulkInsertIgnore(ctx, s.pool, db.InsertConfig{
		Table:        "financial_data",
		Columns:      []string{"id", "company_id", "period", "fiscal_year", "fiscal_quarter", "revenue", "data_source", "created_at"},
		ConflictKeys: []string{"company_id", "period", "data_source"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: bulk insert financials")
	}
	return int(n), nil
}

func (s *PostgresStore) Financials(ctx context.Context, companyID string) ([]model.FinancialRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT period, fiscal_year, fiscal_quarter, revenue, data_source
		 FROM financial_data
		 WHERE company_id = $1
		 ORDER BY fiscal_year DESC, fiscal_quarter DESC`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list financials")
	}
	defer rows.Close()

	var recs []model.FinancialRecord
	for rows.Next() {
		var rec model.FinancialRecord
		var source string
		if err := rows.Scan(&rec.Period.Label, &rec.Period.FiscalYear, &rec.Period.FiscalQuarter, &rec.Revenue, &source); err != nil {
			return nil, eris.Wrap(err, "postgres: scan financial")
		}
		rec.Source = model.Source(source)
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list financials iterate")
}

func (s *PostgresStore) SegmentExists(ctx context.Context, companyID, period, category string, source model.Source) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM product_line_revenue WHERE company_id = $1 AND period = $2 AND category_name = $3 AND data_source = $4)`,
		companyID, period, category, string(source),
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: segment exists %s/%s", period, category)
	}
	return exists, nil
}

func (s *PostgresStore) InsertSegment(ctx context.Context, companyID string, rec model.SegmentRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO product_line_revenue (id, company_id, period, fiscal_year, fiscal_quarter, category_name, revenue, revenue_percentage, yoy_growth, gross_margin, data_source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.New().String(), companyID, rec.Period.Label,
		rec.Period.FiscalYear, rec.Period.FiscalQuarter,
		rec.CategoryName, rec.Revenue, rec.RevenuePercentage,
		rec.GrowthRate, rec.GrossMargin, string(rec.Source), time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: insert segment %s/%s", rec.Period.Label, rec.CategoryName)
}

func (s *PostgresStore) InsertSegments(ctx context.Context, companyID string, recs []model.SegmentRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []any{
			uuid.New().String(), companyID, rec.Period.Label,
			rec.Period.FiscalYear, rec.Period.FiscalQuarter,
			rec.CategoryName, rec.Revenue, rec.RevenuePercentage,
			rec.GrowthRate, rec.GrossMargin, string(rec.Source), now,
		})
	}

	n, err := db.BulkInsertIgnore(ctx, s.pool, db.InsertConfig{
		Table: "product_line_revenue",
		Columns: []string{
			"id", "company_id", "period", "fiscal_year", "fiscal_quarter",
			"category_name", "revenue", "revenue_percentage",
			"yoy_growth", "gross_margin", "data_source", "created_at",
		},
		ConflictKeys: []string{"company_id", "period", "category_name", "data_source"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: bulk insert segments")
	}
	return int(n), nil
}

func (s *PostgresStore) SegmentsForPeriod(ctx context.Context, companyID, period string) ([]model.SegmentRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT period, fiscal_year, fiscal_quarter, category_name, revenue, revenue_percentage, yoy_growth, gross_margin, data_source
		 FROM product_line_revenue
		 WHERE company_id = $1 AND period = $2
		 ORDER BY revenue DESC`,
		companyID, period,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: segments for %s", period)
	}
	defer rows.Close()

	var recs []model.SegmentRecord
	for rows.Next() {
		var rec model.SegmentRecord
		var source string
		if err := rows.Scan(&rec.Period.Label, &rec.Period.FiscalYear, &rec.Period.FiscalQuarter,
			&rec.CategoryName, &rec.Revenue, &rec.RevenuePercentage,
			&rec.GrowthRate, &rec.GrossMargin, &source); err != nil {
			return nil, eris.Wrap(err, "postgres: scan segment")
		}
		rec.Source = model.Source(source)
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: segments iterate")
}

func (s *PostgresStore) Coverage(ctx context.Context, companyID string) ([]PeriodCoverage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT f.period, f.fiscal_year, f.fiscal_quarter, f.revenue, f.data_source,
		        (SELECT COUNT(*) FROM product_line_revenue p
		         WHERE p.company_id = f.company_id AND p.period = f.period) AS segments
		 FROM financial_data f
		 WHERE f.company_id = $1
		 ORDER BY f.fiscal_year DESC, f.fiscal_quarter DESC, f.data_source`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: coverage")
	}
	defer rows.Close()

	var coverage []PeriodCoverage
	for rows.Next() {
		var c PeriodCoverage
		var source string
		if err := rows.Scan(&c.Period, &c.FiscalYear, &c.FiscalQuarter, &c.Revenue, &source, &c.Segments); err != nil {
			return nil, eris.Wrap(err, "postgres: scan coverage")
		}
		c.Source = model.Source(source)
		coverage = append(coverage, c)
	}
	return coverage, eris.Wrap(rows.Err(), "postgres: coverage iterate")
}

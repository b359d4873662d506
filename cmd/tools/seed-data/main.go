// cmd/tools/seed-data/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/config"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/database"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
)

// Sample data matches the demo portfolio shown on the dashboard: one
// active fund with two years of history and one general partner.

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS deals (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		zipcode TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		total_units INTEGER NOT NULL,
		purchase_price DOUBLE PRECISION NOT NULL,
		construction_cost DOUBLE PRECISION NOT NULL,
		closing_costs DOUBLE PRECISION NOT NULL,
		avg_monthly_rent DOUBLE PRECISION NOT NULL,
		operating_expense_ratio DOUBLE PRECISION NOT NULL,
		loan_to_value DOUBLE PRECISION NOT NULL,
		annual_interest_rate DOUBLE PRECISION NOT NULL,
		loan_term_years INTEGER NOT NULL,
		holding_period_years INTEGER NOT NULL,
		exit_cap_rate DOUBLE PRECISION NOT NULL,
		total_project_cost DOUBLE PRECISION NOT NULL,
		loan_amount DOUBLE PRECISION NOT NULL,
		equity_required DOUBLE PRECISION NOT NULL,
		annual_debt_service DOUBLE PRECISION NOT NULL,
		noi_year1 DOUBLE PRECISION NOT NULL,
		annual_cash_flows JSONB NOT NULL DEFAULT '[]',
		exit_sale_price DOUBLE PRECISION NOT NULL,
		sale_proceeds DOUBLE PRECISION NOT NULL,
		irr DOUBLE PRECISION NOT NULL,
		irr_converged BOOLEAN NOT NULL DEFAULT TRUE,
		equity_multiple DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_deals_status ON deals (status)`,
	`CREATE TABLE IF NOT EXISTS funds (
		id BIGSERIAL PRIMARY KEY,
		fund_name TEXT NOT NULL,
		fund_size DOUBLE PRECISION NOT NULL,
		vintage_year INTEGER NOT NULL,
		status TEXT NOT NULL,
		investment_period_start DATE,
		investment_period_end DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS fund_metrics (
		id BIGSERIAL PRIMARY KEY,
		fund_id BIGINT NOT NULL REFERENCES funds (id),
		as_of_date DATE NOT NULL,
		deployed_capital DOUBLE PRECISION NOT NULL,
		remaining_capital DOUBLE PRECISION NOT NULL,
		net_irr DOUBLE PRECISION NOT NULL,
		tvpi DOUBLE PRECISION NOT NULL,
		dpi DOUBLE PRECISION NOT NULL,
		total_value DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quarterly_performance (
		id BIGSERIAL PRIMARY KEY,
		fund_id BIGINT NOT NULL REFERENCES funds (id),
		year INTEGER NOT NULL,
		quarter INTEGER NOT NULL,
		irr DOUBLE PRECISION NOT NULL,
		UNIQUE (fund_id, year, quarter)
	)`,
	`CREATE TABLE IF NOT EXISTS investment_strategies (
		id BIGSERIAL PRIMARY KEY,
		fund_id BIGINT NOT NULL REFERENCES funds (id),
		strategy_name TEXT NOT NULL,
		deployed_capital DOUBLE PRECISION NOT NULL,
		current_value DOUBLE PRECISION NOT NULL,
		allocation_percent DOUBLE PRECISION NOT NULL,
		irr DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fund_cash_flows (
		id BIGSERIAL PRIMARY KEY,
		fund_id BIGINT NOT NULL REFERENCES funds (id),
		year INTEGER NOT NULL,
		quarter INTEGER NOT NULL,
		capital_calls DOUBLE PRECISION NOT NULL,
		distributions DOUBLE PRECISION NOT NULL,
		net_cash_flow DOUBLE PRECISION NOT NULL,
		UNIQUE (fund_id, year, quarter)
	)`,
	`CREATE TABLE IF NOT EXISTS fund_activities (
		id BIGSERIAL PRIMARY KEY,
		fund_id BIGINT NOT NULL REFERENCES funds (id),
		activity_date DATE NOT NULL,
		description TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		activity_type TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS benchmark_data (
		id BIGSERIAL PRIMARY KEY,
		fund_id BIGINT NOT NULL REFERENCES funds (id),
		metric_name TEXT NOT NULL,
		fund_value DOUBLE PRECISION NOT NULL,
		industry_benchmark DOUBLE PRECISION NOT NULL,
		as_of_date DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS general_partners (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		firm TEXT NOT NULL,
		founded_year INTEGER NOT NULL,
		aum DOUBLE PRECISION NOT NULL,
		fund_count INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS gp_quarterly_performance (
		id BIGSERIAL PRIMARY KEY,
		gp_id BIGINT NOT NULL REFERENCES general_partners (id),
		year INTEGER NOT NULL,
		quarter INTEGER NOT NULL,
		irr DOUBLE PRECISION NOT NULL,
		UNIQUE (gp_id, year, quarter)
	)`,
	`CREATE TABLE IF NOT EXISTS gp_portfolio_summary (
		id BIGSERIAL PRIMARY KEY,
		gp_id BIGINT NOT NULL REFERENCES general_partners (id),
		year INTEGER NOT NULL,
		quartile INTEGER NOT NULL,
		deal_count INTEGER NOT NULL,
		total_aum DOUBLE PRECISION NOT NULL,
		avg_irr DOUBLE PRECISION NOT NULL,
		UNIQUE (gp_id, year, quartile)
	)`,
}

func main() {
	schemaOnly := flag.Bool("schema-only", false, "create tables and exit without inserting sample data")
	force := flag.Bool("force", false, "delete existing sample data before reseeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres ping failed", zap.Error(err))
	}

	if err := createSchema(ctx, pg); err != nil {
		zapLog.Fatal("schema creation failed", zap.Error(err))
	}
	zapLog.Info("Schema is up to date")

	if *schemaOnly {
		return
	}

	seeded, err := seedSampleData(ctx, pg, *force, zapLog)
	if err != nil {
		zapLog.Fatal("seeding failed", zap.Error(err))
	}
	if !seeded {
		zapLog.Info("Sample data already exists. Skipping seeding.")
		return
	}
	zapLog.Info("Sample data seeded successfully")
}

func createSchema(ctx context.Context, pg *database.PostgresClient) error {
	for _, stmt := range schemaStatements {
		if _, err := pg.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}

func seedSampleData(ctx context.Context, pg *database.PostgresClient, force bool, zapLog *zap.Logger) (bool, error) {
	const fundName = "Aequitas Real Estate Fund I"

	var existing int
	err := pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM funds WHERE fund_name = $1`, fundName).Scan(&existing)
	if err != nil {
		return false, err
	}
	if existing > 0 && !force {
		return false, nil
	}

	tx, err := pg.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if force {
		zapLog.Info("Clearing existing sample data...")
		clear := []string{
			`DELETE FROM gp_portfolio_summary`,
			`DELETE FROM gp_quarterly_performance`,
			`DELETE FROM general_partners`,
			`DELETE FROM benchmark_data`,
			`DELETE FROM fund_activities`,
			`DELETE FROM fund_cash_flows`,
			`DELETE FROM investment_strategies`,
			`DELETE FROM quarterly_performance`,
			`DELETE FROM fund_metrics`,
			`DELETE FROM funds`,
		}
		for _, stmt := range clear {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return false, err
			}
		}
	}

	var fundID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO funds (fund_name, fund_size, vintage_year, status,
			investment_period_start, investment_period_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		fundName, 450_000_000.0, 2022, "active",
		time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
	).Scan(&fundID)
	if err != nil {
		return false, fmt.Errorf("insert fund: %w", err)
	}

	asOf := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO fund_metrics (fund_id, as_of_date, deployed_capital,
			remaining_capital, net_irr, tvpi, dpi, total_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		fundID, asOf, 373_000_000.0, 77_000_000.0, 12.4, 1.7, 0.3, 637_000_000.0)
	if err != nil {
		return false, fmt.Errorf("insert fund metrics: %w", err)
	}

	quarterlyIRR := []struct {
		year, quarter int
		irr           float64
	}{
		{2023, 1, 10.2}, {2023, 2, 10.8}, {2023, 3, 11.5}, {2023, 4, 11.9},
		{2024, 1, 12.0}, {2024, 2, 12.2}, {2024, 3, 12.3}, {2024, 4, 12.4},
	}
	for _, q := range quarterlyIRR {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO quarterly_performance (fund_id, year, quarter, irr)
			VALUES ($1, $2, $3, $4)`, fundID, q.year, q.quarter, q.irr)
		if err != nil {
			return false, fmt.Errorf("insert quarterly performance: %w", err)
		}
	}

	strategies := []struct {
		name                     string
		deployed, current, alloc float64
		irr                      float64
	}{
		{"Acquisitions", 259_000_000, 310_000_000, 60, 14.0},
		{"Development", 114_000_000, 130_000_000, 40, 9.0},
	}
	for _, s := range strategies {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO investment_strategies (fund_id, strategy_name,
				deployed_capital, current_value, allocation_percent, irr)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			fundID, s.name, s.deployed, s.current, s.alloc, s.irr)
		if err != nil {
			return false, fmt.Errorf("insert strategy: %w", err)
		}
	}

	cashFlows := []struct {
		year, quarter             int
		calls, distributions, net float64
	}{
		{2023, 1, 2_500_000, 800_000, -1_700_000},
		{2023, 2, 2_300_000, 900_000, -1_400_000},
		{2023, 3, 2_400_000, 1_100_000, -1_300_000},
		{2023, 4, 2_200_000, 1_200_000, -1_000_000},
		{2024, 1, 2_100_000, 1_300_000, -800_000},
		{2024, 2, 2_000_000, 1_000_000, -1_000_000},
		{2024, 3, 1_800_000, 1_100_000, -700_000},
		{2024, 4, 2_200_000, 800_000, -1_400_000},
	}
	for _, cf := range cashFlows {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO fund_cash_flows (fund_id, year, quarter,
				capital_calls, distributions, net_cash_flow)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			fundID, cf.year, cf.quarter, cf.calls, cf.distributions, cf.net)
		if err != nil {
			return false, fmt.Errorf("insert cash flow: %w", err)
		}
	}

	benchmarks := []struct {
		metric         string
		fund, industry float64
	}{
		{"Net IRR", 12.4, 10.8},
		{"TVPI", 1.7, 1.4},
		{"DPI", 0.3, 0.3},
	}
	for _, b := range benchmarks {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO benchmark_data (fund_id, metric_name, fund_value,
				industry_benchmark, as_of_date)
			VALUES ($1, $2, $3, $4, $5)`,
			fundID, b.metric, b.fund, b.industry, asOf)
		if err != nil {
			return false, fmt.Errorf("insert benchmark: %w", err)
		}
	}

	activities := []struct {
		date                 time.Time
		description          string
		amount               float64
		status, activityType string
	}{
		{time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
			"Riverside Commons refinancing distribution", 410_000_000, "Completed", "distribution"},
		{time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC),
			"New acquisition - Metro Gardens, Denver", 28_000_000, "In Progress", "acquisition"},
		{time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
			"Harbor Park quarterly distribution", 2_800_000, "Scheduled", "distribution"},
		{time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			"Greenwood Funding - Sunrise Phase 2", 15_000_000, "Scheduled", "capital_call"},
	}
	for _, a := range activities {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO fund_activities (fund_id, activity_date, description,
				amount, status, activity_type)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			fundID, a.date, a.description, a.amount, a.status, a.activityType)
		if err != nil {
			return false, fmt.Errorf("insert activity: %w", err)
		}
	}

	var gpID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO general_partners (name, firm, founded_year, aum, fund_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		"Webb Capital Partners", "Webb Capital Management LLC", 2012, 68_000_000.0, 3,
	).Scan(&gpID)
	if err != nil {
		return false, fmt.Errorf("insert general partner: %w", err)
	}

	gpQuarters := []struct {
		year, quarter int
		irr           float64
	}{
		{2023, 3, 12.8}, {2023, 4, 13.2},
		{2024, 1, 13.5}, {2024, 2, 14.1}, {2024, 3, 14.5}, {2024, 4, 14.73},
	}
	for _, q := range gpQuarters {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO gp_quarterly_performance (gp_id, year, quarter, irr)
			VALUES ($1, $2, $3, $4)`, gpID, q.year, q.quarter, q.irr)
		if err != nil {
			return false, fmt.Errorf("insert gp quarterly performance: %w", err)
		}
	}

	gpSummary := []struct {
		quartile, dealCount int
		totalAUM, avgIRR    float64
	}{
		{1, 4, 22_000_000, 18.2},
		{2, 7, 26_000_000, 14.9},
		{3, 5, 14_000_000, 11.3},
		{4, 2, 6_000_000, 7.8},
	}
	for _, s := range gpSummary {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO gp_portfolio_summary (gp_id, year, quartile,
				deal_count, total_aum, avg_irr)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			gpID, 2024, s.quartile, s.dealCount, s.totalAUM, s.avgIRR)
		if err != nil {
			return false, fmt.Errorf("insert gp portfolio summary: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	zapLog.Info("Seeded demo portfolio",
		zap.Int64("fundId", fundID),
		zap.Int64("gpId", gpID),
	)
	return true, nil
}

package funds

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository reads the fund and GP reporting tables. These tables are
// populated by the seed tool and offline reporting jobs; the API only reads
// them.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetFund(ctx context.Context, fundID int64) (*Fund, error) {
	var f Fund
	err := r.db.QueryRowContext(ctx, `
		SELECT id, fund_name, fund_size, vintage_year, status,
		       investment_period_start, investment_period_end,
		       created_at, updated_at
		FROM funds WHERE id = $1`, fundID).Scan(
		&f.ID, &f.Name, &f.Size, &f.VintageYear, &f.Status,
		&f.InvestmentPeriodStart, &f.InvestmentPeriodEnd,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetLatestMetrics returns the most recent metrics snapshot, or nil when
// the fund has none yet.
func (r *Repository) GetLatestMetrics(ctx context.Context, fundID int64) (*Metrics, error) {
	var m Metrics
	err := r.db.QueryRowContext(ctx, `
		SELECT fund_id, as_of_date, deployed_capital, remaining_capital,
		       net_irr, tvpi, dpi, total_value
		FROM fund_metrics WHERE fund_id = $1
		ORDER BY as_of_date DESC LIMIT 1`, fundID).Scan(
		&m.FundID, &m.AsOfDate, &m.DeployedCapital, &m.RemainingCapital,
		&m.NetIRR, &m.TVPI, &m.DPI, &m.TotalValue,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) ListQuarterlyPerformance(ctx context.Context, fundID int64, limit int) ([]QuarterlyPerformance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fund_id, year, quarter, irr
		FROM quarterly_performance WHERE fund_id = $1
		ORDER BY year DESC, quarter DESC LIMIT $2`, fundID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuarterlyPerformance
	for rows.Next() {
		var p QuarterlyPerformance
		if err := rows.Scan(&p.FundID, &p.Year, &p.Quarter, &p.IRR); err != nil {
			return nil, err
		}
		p.QuarterLabel = quarterLabel(p.Quarter, p.Year)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) ListStrategies(ctx context.Context, fundID int64) ([]Strategy, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fund_id, strategy_name, deployed_capital, current_value,
		       allocation_percent, irr
		FROM investment_strategies WHERE fund_id = $1
		ORDER BY allocation_percent DESC`, fundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Strategy
	for rows.Next() {
		var s Strategy
		if err := rows.Scan(&s.FundID, &s.Name, &s.DeployedCapital,
			&s.CurrentValue, &s.AllocationPercent, &s.IRR); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListCashFlows returns quarterly cash flows in chronological order.
func (r *Repository) ListCashFlows(ctx context.Context, fundID int64, limit int) ([]CashFlow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fund_id, year, quarter, capital_calls, distributions, net_cash_flow
		FROM fund_cash_flows WHERE fund_id = $1
		ORDER BY year ASC, quarter ASC LIMIT $2`, fundID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CashFlow
	for rows.Next() {
		var cf CashFlow
		if err := rows.Scan(&cf.FundID, &cf.Year, &cf.Quarter,
			&cf.CapitalCalls, &cf.Distributions, &cf.NetCashFlow); err != nil {
			return nil, err
		}
		cf.QuarterLabel = quarterLabel(cf.Quarter, cf.Year)
		out = append(out, cf)
	}
	return out, rows.Err()
}

func (r *Repository) ListActivities(ctx context.Context, fundID int64, limit int) ([]Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fund_id, activity_date, description, amount, status, activity_type
		FROM fund_activities WHERE fund_id = $1
		ORDER BY activity_date DESC LIMIT $2`, fundID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.FundID, &a.ActivityDate, &a.Description,
			&a.Amount, &a.Status, &a.ActivityType); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) ListBenchmarks(ctx context.Context, fundID int64) ([]Benchmark, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fund_id, metric_name, fund_value, industry_benchmark, as_of_date
		FROM benchmark_data WHERE fund_id = $1
		ORDER BY metric_name ASC`, fundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Benchmark
	for rows.Next() {
		var b Benchmark
		if err := rows.Scan(&b.FundID, &b.MetricName, &b.FundValue,
			&b.IndustryBenchmark, &b.AsOfDate); err != nil {
			return nil, err
		}
		b.Outperformance = b.FundValue - b.IndustryBenchmark
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) GetGP(ctx context.Context, gpID int64) (*GeneralPartner, error) {
	var gp GeneralPartner
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, firm, founded_year, aum, fund_count, created_at
		FROM general_partners WHERE id = $1`, gpID).Scan(
		&gp.ID, &gp.Name, &gp.Firm, &gp.FoundedYear,
		&gp.AUM, &gp.FundCount, &gp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &gp, nil
}

func (r *Repository) ListGPQuarterlyPerformance(ctx context.Context, gpID int64, limit int) ([]GPQuarterlyPerformance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT gp_id, year, quarter, irr
		FROM gp_quarterly_performance WHERE gp_id = $1
		ORDER BY year DESC, quarter DESC LIMIT $2`, gpID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GPQuarterlyPerformance
	for rows.Next() {
		var p GPQuarterlyPerformance
		if err := rows.Scan(&p.GPID, &p.Year, &p.Quarter, &p.IRR); err != nil {
			return nil, err
		}
		p.QuarterLabel = quarterLabel(p.Quarter, p.Year)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListGPPortfolioSummary returns quartile buckets for the given year, or for
// the GP's most recent year when year is zero.
func (r *Repository) ListGPPortfolioSummary(ctx context.Context, gpID int64, year int) ([]GPPortfolioSummary, error) {
	if year == 0 {
		err := r.db.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(year), 0) FROM gp_portfolio_summary WHERE gp_id = $1`,
			gpID).Scan(&year)
		if err != nil {
			return nil, err
		}
		if year == 0 {
			return nil, nil
		}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT gp_id, year, quartile, deal_count, total_aum, avg_irr
		FROM gp_portfolio_summary WHERE gp_id = $1 AND year = $2
		ORDER BY quartile ASC`, gpID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GPPortfolioSummary
	for rows.Next() {
		var s GPPortfolioSummary
		if err := rows.Scan(&s.GPID, &s.Year, &s.Quartile,
			&s.DealCount, &s.TotalAUM, &s.AvgIRR); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func quarterLabel(quarter, year int) string {
	return fmt.Sprintf("Q%d %d", quarter, year)
}

package deals

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/underwriting"
)

// dealColumns is the full select list, kept in one place so every query
// scans identically.
const dealColumns = `id, name, location, zipcode, status,
	total_units, purchase_price, construction_cost, closing_costs,
	avg_monthly_rent, operating_expense_ratio, loan_to_value,
	annual_interest_rate, loan_term_years, holding_period_years, exit_cap_rate,
	total_project_cost, loan_amount, equity_required, annual_debt_service,
	noi_year1, annual_cash_flows, exit_sale_price, sale_proceeds,
	irr, irr_converged, equity_multiple,
	created_at, updated_at`

// Repository persists deals in Postgres. Metric columns are denormalized
// engine output; the service layer guarantees they match the parameter
// columns on every write.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, d *Deal) (int64, error) {
	cashFlows, err := json.Marshal(d.Metrics.AnnualCashFlows)
	if err != nil {
		return 0, fmt.Errorf("encode cash flows: %w", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO deals (
			name, location, zipcode, status,
			total_units, purchase_price, construction_cost, closing_costs,
			avg_monthly_rent, operating_expense_ratio, loan_to_value,
			annual_interest_rate, loan_term_years, holding_period_years, exit_cap_rate,
			total_project_cost, loan_amount, equity_required, annual_debt_service,
			noi_year1, annual_cash_flows, exit_sale_price, sale_proceeds,
			irr, irr_converged, equity_multiple,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26,
			NOW(), NOW()
		) RETURNING id`,
		d.Name, d.Location, d.Zipcode, string(d.Status),
		d.Parameters.TotalUnits, d.Parameters.PurchasePrice,
		d.Parameters.ConstructionCost, d.Parameters.ClosingCosts,
		d.Parameters.AvgMonthlyRent, d.Parameters.OperatingExpenseRatio,
		d.Parameters.LoanToValue, d.Parameters.AnnualInterestRate,
		d.Parameters.LoanTermYears, d.Parameters.HoldingPeriodYears,
		d.Parameters.ExitCapRate,
		d.Metrics.TotalProjectCost, d.Metrics.LoanAmount,
		d.Metrics.EquityRequired, d.Metrics.AnnualDebtService,
		d.Metrics.NetOperatingIncomeYear1, cashFlows,
		d.Metrics.ExitSalePrice, d.Metrics.SaleProceeds,
		d.Metrics.IRR, d.Metrics.IRRConverged, d.Metrics.EquityMultiple,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Deal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE id = $1`, id)
	return scanDeal(row)
}

// List returns deals most recently updated first. A zero status means no
// status filter.
func (r *Repository) List(ctx context.Context, status Status, limit int) ([]Deal, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status != "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+dealColumns+` FROM deals WHERE status = $1 ORDER BY updated_at DESC LIMIT $2`,
			string(status), limit)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+dealColumns+` FROM deals ORDER BY updated_at DESC LIMIT $1`,
			limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, d *Deal) error {
	cashFlows, err := json.Marshal(d.Metrics.AnnualCashFlows)
	if err != nil {
		return fmt.Errorf("encode cash flows: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE deals SET
			name = $1, location = $2, zipcode = $3, status = $4,
			total_units = $5, purchase_price = $6, construction_cost = $7,
			closing_costs = $8, avg_monthly_rent = $9,
			operating_expense_ratio = $10, loan_to_value = $11,
			annual_interest_rate = $12, loan_term_years = $13,
			holding_period_years = $14, exit_cap_rate = $15,
			total_project_cost = $16, loan_amount = $17, equity_required = $18,
			annual_debt_service = $19, noi_year1 = $20, annual_cash_flows = $21,
			exit_sale_price = $22, sale_proceeds = $23,
			irr = $24, irr_converged = $25, equity_multiple = $26,
			updated_at = NOW()
		WHERE id = $27`,
		d.Name, d.Location, d.Zipcode, string(d.Status),
		d.Parameters.TotalUnits, d.Parameters.PurchasePrice,
		d.Parameters.ConstructionCost, d.Parameters.ClosingCosts,
		d.Parameters.AvgMonthlyRent, d.Parameters.OperatingExpenseRatio,
		d.Parameters.LoanToValue, d.Parameters.AnnualInterestRate,
		d.Parameters.LoanTermYears, d.Parameters.HoldingPeriodYears,
		d.Parameters.ExitCapRate,
		d.Metrics.TotalProjectCost, d.Metrics.LoanAmount,
		d.Metrics.EquityRequired, d.Metrics.AnnualDebtService,
		d.Metrics.NetOperatingIncomeYear1, cashFlows,
		d.Metrics.ExitSalePrice, d.Metrics.SaleProceeds,
		d.Metrics.IRR, d.Metrics.IRRConverged, d.Metrics.EquityMultiple,
		d.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDeal(row rowScanner) (*Deal, error) {
	var (
		d         Deal
		m         underwriting.DealMetrics
		status    string
		cashFlows []byte
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.Location, &d.Zipcode, &status,
		&d.Parameters.TotalUnits, &d.Parameters.PurchasePrice,
		&d.Parameters.ConstructionCost, &d.Parameters.ClosingCosts,
		&d.Parameters.AvgMonthlyRent, &d.Parameters.OperatingExpenseRatio,
		&d.Parameters.LoanToValue, &d.Parameters.AnnualInterestRate,
		&d.Parameters.LoanTermYears, &d.Parameters.HoldingPeriodYears,
		&d.Parameters.ExitCapRate,
		&m.TotalProjectCost, &m.LoanAmount, &m.EquityRequired,
		&m.AnnualDebtService, &m.NetOperatingIncomeYear1, &cashFlows,
		&m.ExitSalePrice, &m.SaleProceeds,
		&m.IRR, &m.IRRConverged, &m.EquityMultiple,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(cashFlows) > 0 {
		if err := json.Unmarshal(cashFlows, &m.AnnualCashFlows); err != nil {
			return nil, fmt.Errorf("decode cash flows: %w", err)
		}
	}
	d.Status = Status(status)
	d.Metrics = &m
	return &d, nil
}

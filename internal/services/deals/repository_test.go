package deals

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/underwriting"
)

var dealColumnNames = []string{
	"id", "name", "location", "zipcode", "status",
	"total_units", "purchase_price", "construction_cost", "closing_costs",
	"avg_monthly_rent", "operating_expense_ratio", "loan_to_value",
	"annual_interest_rate", "loan_term_years", "holding_period_years", "exit_cap_rate",
	"total_project_cost", "loan_amount", "equity_required", "annual_debt_service",
	"noi_year1", "annual_cash_flows", "exit_sale_price", "sale_proceeds",
	"irr", "irr_converged", "equity_multiple",
	"created_at", "updated_at",
}

func sampleDealRow(id int64, name, status string, updatedAt time.Time) []driverValue {
	return []driverValue{
		id, name, "Sacramento, CA", "95814", status,
		200, 15_000_000.0, 25_000_000.0, 3_000_000.0,
		1200.0, 0.35, 75.0,
		0.065, 30, 10, 0.06,
		43_000_000.0, 32_250_000.0, 10_750_000.0, 2_446_105.0,
		1_778_400.0, []byte(`[-667705.0, 3560249.0]`), 36_131_006.0, 3_881_006.0,
		-15.9, true, 0.897,
		updatedAt.Add(-time.Hour), updatedAt,
	}
}

type driverValue = driver.Value

func addRow(rows *sqlmock.Rows, vals []driverValue) *sqlmock.Rows {
	return rows.AddRow(vals...)
}

func sampleDeal() *Deal {
	params := underwriting.DealParameters{
		TotalUnits:            200,
		PurchasePrice:         15_000_000,
		ConstructionCost:      25_000_000,
		ClosingCosts:          3_000_000,
		AvgMonthlyRent:        1200,
		OperatingExpenseRatio: 0.35,
		AnnualInterestRate:    0.065,
		LoanTermYears:         30,
		LoanToValue:           75,
		ExitCapRate:           0.06,
		HoldingPeriodYears:    10,
	}
	m, err := underwriting.ComputeDealMetrics(params)
	if err != nil {
		panic(err)
	}
	return &Deal{
		Name:       "Riverfront Commons",
		Location:   "Sacramento, CA",
		Zipcode:    "95814",
		Status:     StatusPotential,
		Parameters: params,
		Metrics:    m,
	}
}

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(db), mock
}

func TestRepository_Insert(t *testing.T) {
	repo, mock := newMockRepo(t)
	d := sampleDeal()

	mock.ExpectQuery(`INSERT INTO deals`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.Insert(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	rows := addRow(sqlmock.NewRows(dealColumnNames),
		sampleDealRow(7, "Riverfront Commons", "potential", now))
	mock.ExpectQuery(`SELECT .+ FROM deals WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	d, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), d.ID)
	assert.Equal(t, "Riverfront Commons", d.Name)
	assert.Equal(t, StatusPotential, d.Status)
	assert.Equal(t, 200, d.Parameters.TotalUnits)
	assert.InDelta(t, 43_000_000, d.Metrics.TotalProjectCost, 1e-6)
	require.Len(t, d.Metrics.AnnualCashFlows, 2)
	assert.InDelta(t, -667705.0, d.Metrics.AnnualCashFlows[0], 1e-6)
	assert.Equal(t, now, d.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NoRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM deals WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRepository_List_FiltersByStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(dealColumnNames)
	addRow(rows, sampleDealRow(2, "Deal B", "ongoing", now))
	addRow(rows, sampleDealRow(1, "Deal A", "ongoing", now.Add(-time.Minute)))

	mock.ExpectQuery(`SELECT .+ FROM deals WHERE status = \$1 ORDER BY updated_at DESC LIMIT \$2`).
		WithArgs("ongoing", 50).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), StatusOngoing, 50)
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "Deal B", list[0].Name)
	assert.Equal(t, "Deal A", list[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_NoFilter(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM deals ORDER BY updated_at DESC LIMIT \$1`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(dealColumnNames))

	list, err := repo.List(context.Background(), "", 100)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update_NoRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	d := sampleDeal()
	d.ID = 404

	mock.ExpectExec(`UPDATE deals SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), d)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM deals WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec(`DELETE FROM deals WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = repo.Delete(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

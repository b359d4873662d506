package underwriting

import (
	"fmt"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
)

// DealParameters is the immutable input to one underwriting computation.
// Money fields share one unit (whole dollars). Rates are fractions except
// LoanToValue, which is a percentage per industry convention.
type DealParameters struct {
	TotalUnits int `json:"totalUnits"`

	PurchasePrice    float64 `json:"purchasePrice"`
	ConstructionCost float64 `json:"constructionCost"`
	ClosingCosts     float64 `json:"closingCosts"`
	AvgMonthlyRent   float64 `json:"avgMonthlyRent"`

	// OperatingExpenseRatio is the fraction of effective gross income
	// consumed by operating expenses, in [0, 1].
	OperatingExpenseRatio float64 `json:"operatingExpenseRatio"`

	// LoanToValue is the financed share of total project cost, in (0, 100].
	LoanToValue float64 `json:"loanToValue"`

	AnnualInterestRate float64 `json:"annualInterestRate"`
	LoanTermYears      int     `json:"loanTermYears"`
	HoldingPeriodYears int     `json:"holdingPeriodYears"`

	// ExitCapRate is the capitalization rate applied to the forward exit
	// NOI; must be strictly positive.
	ExitCapRate float64 `json:"exitCapRate"`
}

// Validate checks every input invariant. It is the single validation step:
// once it passes, the engine computes without further input checks.
func (p DealParameters) Validate() error {
	if p.TotalUnits < 0 {
		return apperrors.NewInvalidParameterError("totalUnits",
			fmt.Sprintf("must be non-negative, got %d", p.TotalUnits))
	}
	if p.PurchasePrice < 0 {
		return apperrors.NewInvalidParameterError("purchasePrice",
			fmt.Sprintf("must be non-negative, got %g", p.PurchasePrice))
	}
	if p.ConstructionCost < 0 {
		return apperrors.NewInvalidParameterError("constructionCost",
			fmt.Sprintf("must be non-negative, got %g", p.ConstructionCost))
	}
	if p.ClosingCosts < 0 {
		return apperrors.NewInvalidParameterError("closingCosts",
			fmt.Sprintf("must be non-negative, got %g", p.ClosingCosts))
	}
	if p.AvgMonthlyRent < 0 {
		return apperrors.NewInvalidParameterError("avgMonthlyRent",
			fmt.Sprintf("must be non-negative, got %g", p.AvgMonthlyRent))
	}
	if p.OperatingExpenseRatio < 0 || p.OperatingExpenseRatio > 1 {
		return apperrors.NewInvalidParameterError("operatingExpenseRatio",
			fmt.Sprintf("must be in [0, 1], got %g", p.OperatingExpenseRatio))
	}
	if p.LoanToValue <= 0 || p.LoanToValue > 100 {
		return apperrors.NewInvalidParameterError("loanToValue",
			fmt.Sprintf("must be in (0, 100], got %g", p.LoanToValue))
	}
	if p.LoanTermYears <= 0 {
		return apperrors.NewInvalidParameterError("loanTermYears",
			fmt.Sprintf("must be positive, got %d", p.LoanTermYears))
	}
	if p.HoldingPeriodYears <= 0 {
		return apperrors.NewInvalidParameterError("holdingPeriodYears",
			fmt.Sprintf("must be positive, got %d", p.HoldingPeriodYears))
	}
	if p.ExitCapRate <= 0 {
		return apperrors.NewInvalidParameterError("exitCapRate",
			fmt.Sprintf("must be strictly positive, got %g", p.ExitCapRate))
	}
	return nil
}

// DealMetrics is the derived output of one underwriting computation. It has
// no identity of its own: it is recomputed in full whenever any parameter
// changes and never stored stale.
type DealMetrics struct {
	TotalProjectCost float64 `json:"totalProjectCost"`
	LoanAmount       float64 `json:"loanAmount"`
	EquityRequired   float64 `json:"equityRequired"`

	AnnualDebtService       float64 `json:"annualDebtService"`
	NetOperatingIncomeYear1 float64 `json:"netOperatingIncomeYear1"`

	// AnnualCashFlows holds one net cash flow per hold year, chronological.
	// Sale proceeds are folded into the final entry.
	AnnualCashFlows []float64 `json:"annualCashFlows"`

	ExitSalePrice float64 `json:"exitSalePrice"`
	SaleProceeds  float64 `json:"saleProceeds"`

	// IRR is the solved annualized return, as a percentage. IRRConverged
	// is false when the solver stopped on its iteration cap or a vanishing
	// derivative; the rate is then a best-effort estimate.
	IRR          float64 `json:"irr"`
	IRRConverged bool    `json:"irrConverged"`

	// IRRIterations is how many Newton-Raphson steps the solver took. It
	// is diagnostic output and is not persisted with the deal.
	IRRIterations int `json:"irrIterations"`

	EquityMultiple float64 `json:"equityMultiple"`

	Ratios DealRatios `json:"ratios"`
	Risks  []RiskFlag `json:"risks"`
}

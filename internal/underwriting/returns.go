package underwriting

import (
	"fmt"
	"math"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
)

// appreciationByDecile is the annual capital-gain rate per rent decile,
// midpoints of the observed US ranges. Cheaper stock appreciates faster.
var appreciationByDecile = [10]float64{
	3.25, 3.04, 2.66, 2.34, 2.11, 1.79, 1.69, 1.48, 1.23, 0.93,
}

// ValueProjection is a compound-growth forecast of property value.
type ValueProjection struct {
	CurrentValue   float64 `json:"currentValue"`
	ProjectedValue float64 `json:"projectedValue"`
	Years          int     `json:"years"`
	AnnualRatePct  float64 `json:"annualRatePct"`
	TotalGrowthPct float64 `json:"totalGrowthPct"`
}

// ReturnAnalysis decomposes a deal's expected annual return into income and
// appreciation, unlevered and levered.
type ReturnAnalysis struct {
	Tier             RentTier        `json:"tier"`
	Yield            YieldAnalysis   `json:"yield"`
	CapitalGainYield float64         `json:"capitalGainYield"`
	UnleveredReturn  float64         `json:"unleveredReturn"`
	CostOfDebt       float64         `json:"costOfDebt"`
	LoanToValue      float64         `json:"loanToValue"`
	LeveredReturn    float64         `json:"leveredReturn"`
	LeverageEffect   float64         `json:"leverageEffect"`
	ValueProjection  ValueProjection `json:"valueProjection"`
}

// AppreciationRate returns the default annual appreciation percentage for a
// rent decile.
func AppreciationRate(decile int) (float64, error) {
	if decile < 1 || decile > 10 {
		return 0, apperrors.NewInvalidParameterError("decile",
			fmt.Sprintf("must be in [1, 10], got %d", decile))
	}
	return appreciationByDecile[decile-1], nil
}

// ProjectValue compounds a property value forward at an annual rate.
func ProjectValue(currentValue, annualRatePct float64, years int) ValueProjection {
	projected := currentValue * math.Pow(1+annualRatePct/percentDivisor, float64(years))

	p := ValueProjection{
		CurrentValue:   currentValue,
		ProjectedValue: projected,
		Years:          years,
		AnnualRatePct:  annualRatePct,
	}
	if currentValue > 0 {
		p.TotalGrowthPct = (projected - currentValue) / currentValue * percentDivisor
	}
	return p
}

// UnleveredReturn is income return plus appreciation, both as percentages.
func UnleveredReturn(netYield, capitalGainYield float64) float64 {
	return netYield + capitalGainYield
}

// LeveredReturn amplifies the unlevered return by the debt spread:
//
//	levered = unlevered + (unlevered - costOfDebt) * ltv / (1 - ltv)
//
// ltv is a fraction; 1.0 (fully financed) has no finite levered return.
func LeveredReturn(unlevered, costOfDebt, ltv float64) (float64, error) {
	if ltv >= 1.0 {
		return 0, apperrors.NewInvalidParameterError("loanToValue",
			fmt.Sprintf("must be below 100%% for a levered return, got %g", ltv*percentDivisor))
	}
	if ltv <= 0 {
		return unlevered, nil
	}
	return unlevered + (unlevered-costOfDebt)*ltv/(1-ltv), nil
}

// AnalyzeReturns runs the full income-plus-appreciation decomposition for a
// deal. The rent decile is classified from the deal's own average rent, and
// the value projection spans the holding period.
func AnalyzeReturns(params DealParameters, bedrooms int) (*ReturnAnalysis, error) {
	tier, err := ClassifyRent(params.AvgMonthlyRent, bedrooms)
	if err != nil {
		return nil, err
	}

	yield, err := AnalyzeYield(params, tier.Decile)
	if err != nil {
		return nil, err
	}

	rate, err := AppreciationRate(tier.Decile)
	if err != nil {
		return nil, err
	}

	unlevered := UnleveredReturn(yield.NetYield, rate)
	costOfDebt := params.AnnualInterestRate * percentDivisor
	ltv := params.LoanToValue / percentDivisor

	levered, err := LeveredReturn(unlevered, costOfDebt, ltv)
	if err != nil {
		return nil, err
	}

	return &ReturnAnalysis{
		Tier:             tier,
		Yield:            *yield,
		CapitalGainYield: rate,
		UnleveredReturn:  unlevered,
		CostOfDebt:       costOfDebt,
		LoanToValue:      params.LoanToValue,
		LeveredReturn:    levered,
		LeverageEffect:   levered - unlevered,
		ValueProjection:  ProjectValue(params.PurchasePrice, rate, params.HoldingPeriodYears),
	}, nil
}

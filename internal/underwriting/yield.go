package underwriting

import (
	"fmt"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
)

// CostComponents decomposes operating costs as percentages of annual rent.
// The per-decile defaults reflect observed US patterns: maintenance and
// default costs fall as rent rises, turnover is comparatively flat, and
// management fees shrink with portfolio scale.
type CostComponents struct {
	MaintenancePct float64 `json:"maintenancePct"`
	PropertyTaxPct float64 `json:"propertyTaxPct"`
	TurnoverPct    float64 `json:"turnoverPct"`
	DefaultPct     float64 `json:"defaultPct"`
	ManagementPct  float64 `json:"managementPct"`
	TotalPct       float64 `json:"totalPct"`
}

// YieldAnalysis is a vacancy-adjusted yield decomposition for a deal.
type YieldAnalysis struct {
	GrossYield          float64        `json:"grossYield"`
	Costs               CostComponents `json:"costs"`
	NetYield            float64        `json:"netYield"`
	AnnualEffectiveRent float64        `json:"annualEffectiveRent"`
	PropertyValue       float64        `json:"propertyValue"`
}

// Per-decile cost defaults, index 0 = D1.
var (
	maintenanceByDecile = [10]float64{1.5, 1.4, 1.3, 1.2, 1.1, 1.0, 0.9, 0.8, 0.7, 0.6}
	turnoverByDecile    = [10]float64{2.5, 2.4, 2.3, 2.2, 2.1, 2.0, 1.9, 1.8, 1.8, 1.8}
	defaultByDecile     = [10]float64{0.9, 0.9, 0.8, 0.8, 0.7, 0.7, 0.6, 0.6, 0.5, 0.5}
)

// propertyTaxRate is the annual levy as a fraction of property value.
const propertyTaxRate = 0.011

// GrossYield is annual rent over property value, as a percentage.
func GrossYield(annualRent, propertyValue float64) (float64, error) {
	if propertyValue <= 0 {
		return 0, apperrors.NewInvalidParameterError("propertyValue",
			fmt.Sprintf("must be strictly positive, got %g", propertyValue))
	}
	return annualRent / propertyValue * percentDivisor, nil
}

// EstimateCostComponents builds the cost stack for a decile. Property tax is
// derived from value when both value and rent are known, otherwise estimated
// from the decile; management cost depends on unit count only.
func EstimateCostComponents(decile, units int, propertyValue, annualRent float64) (CostComponents, error) {
	if decile < 1 || decile > 10 {
		return CostComponents{}, apperrors.NewInvalidParameterError("decile",
			fmt.Sprintf("must be in [1, 10], got %d", decile))
	}

	c := CostComponents{
		MaintenancePct: maintenanceByDecile[decile-1],
		TurnoverPct:    turnoverByDecile[decile-1],
		DefaultPct:     defaultByDecile[decile-1],
		ManagementPct:  managementCostPct(units),
	}

	if propertyValue > 0 && annualRent > 0 {
		c.PropertyTaxPct = propertyValue * propertyTaxRate / annualRent * percentDivisor
	} else if decile <= 5 {
		c.PropertyTaxPct = 1.5
	} else {
		c.PropertyTaxPct = 1.0
	}

	c.TotalPct = c.MaintenancePct + c.PropertyTaxPct + c.TurnoverPct +
		c.DefaultPct + c.ManagementPct
	return c, nil
}

// managementCostPct reflects scale economies in third-party management.
func managementCostPct(units int) float64 {
	switch {
	case units >= 10:
		return 4.0
	case units >= 2:
		return 5.0
	default:
		return 6.5
	}
}

// NetYield is the gross yield net of the full cost stack.
func NetYield(grossYield float64, costs CostComponents) float64 {
	return grossYield - costs.TotalPct
}

// AnalyzeYield runs the full decomposition over a deal's parameters using
// the purchase price as property value and the standard vacancy haircut.
func AnalyzeYield(params DealParameters, decile int) (*YieldAnalysis, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	effectiveRent := float64(params.TotalUnits) * params.AvgMonthlyRent *
		monthsPerYear * (1 - VacancyRate)

	gross, err := GrossYield(effectiveRent, params.PurchasePrice)
	if err != nil {
		return nil, err
	}

	costs, err := EstimateCostComponents(decile, params.TotalUnits,
		params.PurchasePrice, effectiveRent)
	if err != nil {
		return nil, err
	}

	return &YieldAnalysis{
		GrossYield:          gross,
		Costs:               costs,
		NetYield:            NetYield(gross, costs),
		AnnualEffectiveRent: effectiveRent,
		PropertyValue:       params.PurchasePrice,
	}, nil
}

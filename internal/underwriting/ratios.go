package underwriting

// DealRatios are screening ratios derived from the same pro-forma pass.
// Percentages are expressed as percent, coverage and occupancy as fractions.
type DealRatios struct {
	// DebtServiceCoverage is year-1 NOI over annual debt service; zero
	// when the deal carries no debt service.
	DebtServiceCoverage float64 `json:"debtServiceCoverage"`

	// GrossYieldOnCost is gross potential rent over total project cost.
	GrossYieldOnCost float64 `json:"grossYieldOnCost"`

	// CapRateOnCost is year-1 NOI over total project cost.
	CapRateOnCost float64 `json:"capRateOnCost"`

	// BreakEvenOccupancy is the occupancy at which income just covers
	// operating expenses plus debt service.
	BreakEvenOccupancy float64 `json:"breakEvenOccupancy"`

	// CashOnCashReturn is year-1 cash flow over equity, before sale.
	CashOnCashReturn float64 `json:"cashOnCashReturn"`
}

// RiskFlag marks a screening concern surfaced alongside the metrics. Flags
// are advisory; they never block the computation.
type RiskFlag string

const (
	RiskNegativeYearOneCashFlow RiskFlag = "NEGATIVE_YEAR_ONE_CASH_FLOW"
	RiskThinDebtCoverage        RiskFlag = "THIN_DEBT_COVERAGE"
	RiskIRRNotConverged         RiskFlag = "IRR_NOT_CONVERGED"
	RiskHighBreakEvenOccupancy  RiskFlag = "HIGH_BREAK_EVEN_OCCUPANCY"
)

const (
	minHealthyDebtCoverage = 1.20
	maxHealthyBreakEven    = 0.95
)

func deriveRatios(params DealParameters, m *DealMetrics, grossPotentialRent, operatingExpenses float64) DealRatios {
	var r DealRatios
	if m.AnnualDebtService > 0 {
		r.DebtServiceCoverage = m.NetOperatingIncomeYear1 / m.AnnualDebtService
	}
	if m.TotalProjectCost > 0 {
		r.GrossYieldOnCost = grossPotentialRent / m.TotalProjectCost * percentDivisor
		r.CapRateOnCost = m.NetOperatingIncomeYear1 / m.TotalProjectCost * percentDivisor
	}
	if grossPotentialRent > 0 {
		r.BreakEvenOccupancy = (operatingExpenses + m.AnnualDebtService) / grossPotentialRent
	}
	if m.EquityRequired > 0 {
		r.CashOnCashReturn = m.AnnualCashFlows[0] / m.EquityRequired * percentDivisor
	}
	return r
}

func flagRisks(m *DealMetrics) []RiskFlag {
	flags := make([]RiskFlag, 0, 4)
	if m.AnnualCashFlows[0] < 0 {
		flags = append(flags, RiskNegativeYearOneCashFlow)
	}
	if m.AnnualDebtService > 0 && m.Ratios.DebtServiceCoverage < minHealthyDebtCoverage {
		flags = append(flags, RiskThinDebtCoverage)
	}
	if !m.IRRConverged {
		flags = append(flags, RiskIRRNotConverged)
	}
	if m.Ratios.BreakEvenOccupancy > maxHealthyBreakEven {
		flags = append(flags, RiskHighBreakEvenOccupancy)
	}
	return flags
}

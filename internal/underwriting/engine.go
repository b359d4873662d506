package underwriting

import "math"

// ComputeDealMetrics runs the full pro-forma for one parameter set: capital
// stack, amortized debt service, a vacancy-adjusted NOI projection with 2%
// annual growth, a cap-rate exit, and the levered return metrics on the
// resulting cash-flow stream. The computation is pure; identical parameters
// always produce identical metrics.
func ComputeDealMetrics(params DealParameters) (*DealMetrics, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	totalProjectCost := params.PurchasePrice + params.ConstructionCost + params.ClosingCosts
	loanAmount := totalProjectCost * params.LoanToValue / percentDivisor
	equityRequired := totalProjectCost - loanAmount

	monthlyPayment := monthlyDebtPayment(loanAmount, params.AnnualInterestRate, params.LoanTermYears)
	annualDebtService := monthlyPayment * monthsPerYear

	grossPotentialRent := float64(params.TotalUnits) * params.AvgMonthlyRent * monthsPerYear
	effectiveGrossIncome := grossPotentialRent * (1 - VacancyRate)
	operatingExpenses := effectiveGrossIncome * params.OperatingExpenseRatio
	noiYear1 := effectiveGrossIncome - operatingExpenses

	cashFlows := make([]float64, params.HoldingPeriodYears)
	noi := noiYear1
	for year := 0; year < params.HoldingPeriodYears; year++ {
		if year > 0 {
			noi *= 1 + NOIGrowthRate
		}
		cashFlows[year] = noi - annualDebtService
	}

	// Exit at a forward cap rate on the final-year NOI. Loan payoff uses
	// the original balance; amortization paydown is ignored, which makes
	// the sale proceeds conservative.
	exitNOI := noi * (1 + ExitNOIGrowthRate)
	exitSalePrice := exitNOI / params.ExitCapRate
	saleProceeds := exitSalePrice - loanAmount
	cashFlows[params.HoldingPeriodYears-1] += saleProceeds

	irrStream := make([]float64, 0, params.HoldingPeriodYears+1)
	irrStream = append(irrStream, -equityRequired)
	irrStream = append(irrStream, cashFlows...)
	irr := SolveIRR(irrStream)

	var totalDistributions float64
	for _, cf := range cashFlows {
		totalDistributions += cf
	}
	equityMultiple := 0.0
	if equityRequired > 0 {
		equityMultiple = (totalDistributions + equityRequired) / equityRequired
	}

	m := &DealMetrics{
		TotalProjectCost:        totalProjectCost,
		LoanAmount:              loanAmount,
		EquityRequired:          equityRequired,
		AnnualDebtService:       annualDebtService,
		NetOperatingIncomeYear1: noiYear1,
		AnnualCashFlows:         cashFlows,
		ExitSalePrice:           exitSalePrice,
		SaleProceeds:            saleProceeds,
		IRR:                     irr.Rate * percentDivisor,
		IRRConverged:            irr.Converged,
		IRRIterations:           irr.Iterations,
		EquityMultiple:          equityMultiple,
	}
	m.Ratios = deriveRatios(params, m, grossPotentialRent, operatingExpenses)
	m.Risks = flagRisks(m)
	return m, nil
}

// monthlyDebtPayment computes the level payment that fully amortizes the
// principal over the term. A zero rate degenerates to straight-line
// repayment rather than dividing by zero.
func monthlyDebtPayment(principal, annualRate float64, termYears int) float64 {
	termMonths := float64(termYears * monthsPerYear)
	if annualRate == 0 {
		return principal / termMonths
	}
	monthlyRate := annualRate / monthsPerYear
	factor := math.Pow(1+monthlyRate, termMonths)
	return principal * monthlyRate * factor / (factor - 1)
}

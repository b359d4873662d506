package underwriting

// Fixed pro-forma assumptions. These are deliberately constants rather than
// configuration: keeping them pinned makes every computed metric reproducible
// bit-for-bit for a given parameter set.
const (
	// VacancyRate is the share of gross potential rent lost to vacancy.
	VacancyRate = 0.05

	// NOIGrowthRate compounds net operating income annually from year 2 on.
	NOIGrowthRate = 0.02

	// ExitNOIGrowthRate is applied once to the final-year NOI to proxy a
	// forward-looking cap-rate sale.
	ExitNOIGrowthRate = 0.02

	monthsPerYear  = 12
	percentDivisor = 100.0
)

// IRR solver settings.
const (
	// IRRInitialGuess is the starting discount rate for the solver.
	IRRInitialGuess = 0.10

	// IRRTolerance bounds both the NPV residual and the rate step at
	// convergence.
	IRRTolerance = 1e-5

	// IRRMaxIterations caps the solver; past it the last iterate is
	// returned as a best-effort estimate.
	IRRMaxIterations = 1000

	// derivativeFloor guards the Newton update against division by a
	// vanishing derivative.
	derivativeFloor = 1e-12
)

package underwriting

import "math"

// IRRResult is the outcome of one solver run. Rate is a decimal fraction;
// callers convert to percent for presentation.
type IRRResult struct {
	Rate       float64
	Iterations int
	Converged  bool
}

// NPV discounts the cash-flow stream at the given rate. cashFlows[0] is the
// time-zero flow and is not discounted.
func NPV(rate float64, cashFlows []float64) float64 {
	var sum float64
	for t, c := range cashFlows {
		sum += c / math.Pow(1+rate, float64(t))
	}
	return sum
}

// npvDerivative is dNPV/dr at the given rate.
func npvDerivative(rate float64, cashFlows []float64) float64 {
	var sum float64
	for t, c := range cashFlows {
		if t == 0 {
			continue
		}
		sum -= float64(t) * c / math.Pow(1+rate, float64(t+1))
	}
	return sum
}

// SolveIRR finds the rate where the stream's NPV crosses zero, using
// Newton-Raphson from a fixed initial guess. It never returns NaN or Inf:
// when the derivative vanishes or the iteration cap is hit, the last finite
// iterate comes back with Converged false so callers can surface the solver
// state instead of failing the whole computation.
func SolveIRR(cashFlows []float64) IRRResult {
	rate := IRRInitialGuess

	for i := 1; i <= IRRMaxIterations; i++ {
		npv := NPV(rate, cashFlows)
		if math.Abs(npv) < IRRTolerance {
			return IRRResult{Rate: rate, Iterations: i, Converged: true}
		}

		deriv := npvDerivative(rate, cashFlows)
		if math.Abs(deriv) < derivativeFloor {
			return IRRResult{Rate: rate, Iterations: i, Converged: false}
		}

		next := rate - npv/deriv
		if next <= -1 {
			// Discounting is undefined at or below -100%; bisect toward
			// the boundary instead of stepping past it.
			next = (rate - 1) / 2
		}

		if math.Abs(next-rate) < IRRTolerance {
			return IRRResult{Rate: next, Iterations: i, Converged: true}
		}
		rate = next
	}

	return IRRResult{Rate: rate, Iterations: IRRMaxIterations, Converged: false}
}

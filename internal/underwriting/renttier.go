package underwriting

import (
	"fmt"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
)

// RentTier is a property's position in the national rent distribution.
// Deciles run 1 (cheapest 10%) to 10 (most expensive 10%); low deciles have
// historically delivered the wider yield and appreciation spreads.
type RentTier struct {
	Decile int    `json:"decile"`
	Label  string `json:"label"`

	// Percentile is the midpoint of the decile band.
	Percentile float64 `json:"percentile"`

	// ComparisonToMedian is the percent distance from the D5 threshold.
	ComparisonToMedian float64 `json:"comparisonToMedian"`
}

// nationalRentThresholds are monthly-rent upper bounds per decile for a
// two-bedroom unit. Used when no market-specific thresholds are loaded.
var nationalRentThresholds = [10]float64{
	600, 800, 1000, 1200, 1400, 1700, 2000, 2400, 3000, 4500,
}

const medianDecile = 5

// bedroomRentMultiplier scales the two-bedroom baseline thresholds.
func bedroomRentMultiplier(bedrooms int) float64 {
	switch {
	case bedrooms >= 4:
		return 1.6
	case bedrooms == 3:
		return 1.3
	case bedrooms <= 1:
		return 0.7
	default:
		return 1.0
	}
}

// ClassifyRent places a monthly rent into its national decile. Rents above
// the top threshold classify as D10.
func ClassifyRent(monthlyRent float64, bedrooms int) (RentTier, error) {
	if monthlyRent <= 0 {
		return RentTier{}, apperrors.NewInvalidParameterError("monthlyRent",
			fmt.Sprintf("must be strictly positive, got %g", monthlyRent))
	}

	mult := bedroomRentMultiplier(bedrooms)

	tier := RentTier{Decile: 10, Percentile: 95}
	for i, threshold := range nationalRentThresholds {
		if monthlyRent <= threshold*mult {
			tier.Decile = i + 1
			tier.Percentile = float64(i)*10 + 5
			break
		}
	}
	tier.Label = fmt.Sprintf("D%d", tier.Decile)

	median := nationalRentThresholds[medianDecile-1] * mult
	tier.ComparisonToMedian = (monthlyRent - median) / median * percentDivisor

	return tier, nil
}

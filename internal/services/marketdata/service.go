// Package marketdata assembles the per-ZIP market context used to prefill
// underwriting assumptions, blending RentCast rental intelligence with ACS
// demographics.
package marketdata

import (
	"context"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/validation"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/census"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/fred"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/rentcast"
)

// DemographicsProvider is the slice of the census service the aggregator uses.
type DemographicsProvider interface {
	GetDemographics(ctx context.Context, zipcode string) (*census.Demographics, error)
}

// RentalStatsProvider is the slice of the rentcast service the aggregator uses.
type RentalStatsProvider interface {
	GetMarketStatistics(ctx context.Context, zipcode, dataType string) (*rentcast.MarketStatistics, error)
}

// RateProvider supplies the current financing-rate benchmark.
type RateProvider interface {
	GetLatestObservation(ctx context.Context, seriesID string) (float64, error)
}

// MarketContext is the blended per-ZIP snapshot.
type MarketContext struct {
	Zipcode        string  `json:"zipcode"`
	MedianRent     float64 `json:"medianRent"`
	MedianIncome   float64 `json:"medianIncome"`
	OccupancyRate  float64 `json:"occupancyRate"`
	HouseholdCount int     `json:"householdCount"`

	// RentSource records which provider supplied MedianRent.
	RentSource string `json:"rentSource"`

	// Mortgage30Year is the current financing benchmark, zero when FRED
	// is unreachable.
	Mortgage30Year float64 `json:"mortgage30Year"`
}

const (
	rentSourceRentCast = "rentcast"
	rentSourceCensus   = "census"
)

// Service blends the three upstream providers into one market context.
type Service struct {
	demographics DemographicsProvider
	rentals      RentalStatsProvider
	rates        RateProvider
	log          logger.Logger
}

func New(demographics DemographicsProvider, rentals RentalStatsProvider, rates RateProvider, log logger.Logger) *Service {
	return &Service{
		demographics: demographics,
		rentals:      rentals,
		rates:        rates,
		log:          log,
	}
}

// GetMarketContext returns the blended snapshot for a ZIP code. Median rent
// prefers RentCast's market median and falls back to the ACS median gross
// rent; demographics always come from the ACS. The context is reported as
// missing only when neither source knows the ZIP.
func (s *Service) GetMarketContext(ctx context.Context, zipcode string) (*MarketContext, error) {
	if !validation.IsZipcode(zipcode) {
		return nil, apperrors.NewInvalidZipcodeError(zipcode)
	}

	out := &MarketContext{Zipcode: zipcode}

	demo, demoErr := s.demographics.GetDemographics(ctx, zipcode)
	if demoErr == nil {
		out.MedianIncome = float64(demo.Income.MedianHouseholdIncome)
		out.OccupancyRate = demo.Housing.OccupancyRate
		out.HouseholdCount = demo.Population.TotalHouseholds
		out.MedianRent = float64(demo.Housing.MedianGrossRent)
		out.RentSource = rentSourceCensus
	} else {
		s.log.Warn("demographics unavailable for market context", map[string]interface{}{
			"zipcode": zipcode,
			"error":   demoErr.Error(),
		})
	}

	stats, rentErr := s.rentals.GetMarketStatistics(ctx, zipcode, "Rental")
	if rentErr == nil && stats.MedianRent > 0 {
		out.MedianRent = stats.MedianRent
		out.RentSource = rentSourceRentCast
	} else if rentErr != nil {
		s.log.Warn("rental statistics unavailable for market context", map[string]interface{}{
			"zipcode": zipcode,
			"error":   rentErr.Error(),
		})
	}

	if demoErr != nil && rentErr != nil {
		return nil, apperrors.NewMarketDataNotFoundError(zipcode)
	}

	if rate, err := s.rates.GetLatestObservation(ctx, fred.SeriesMortgage30Y); err == nil {
		out.Mortgage30Year = rate
	}

	return out, nil
}

package marketdata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/census"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/rentcast"
)

type fakeDemographics struct {
	demo *census.Demographics
	err  error
}

func (f *fakeDemographics) GetDemographics(ctx context.Context, zipcode string) (*census.Demographics, error) {
	return f.demo, f.err
}

type fakeRentals struct {
	stats *rentcast.MarketStatistics
	err   error
}

func (f *fakeRentals) GetMarketStatistics(ctx context.Context, zipcode, dataType string) (*rentcast.MarketStatistics, error) {
	return f.stats, f.err
}

type fakeRates struct {
	rate float64
	err  error
}

func (f *fakeRates) GetLatestObservation(ctx context.Context, seriesID string) (float64, error) {
	return f.rate, f.err
}

func sampleDemographics() *census.Demographics {
	return &census.Demographics{
		Zipcode: "95814",
		Population: census.Population{
			TotalHouseholds: 9000,
		},
		Income: census.Income{
			MedianHouseholdIncome: 85000,
		},
		Housing: census.Housing{
			MedianGrossRent: 1850,
			OccupancyRate:   95.0,
		},
	}
}

func TestGetMarketContext_PrefersRentCastRent(t *testing.T) {
	svc := New(
		&fakeDemographics{demo: sampleDemographics()},
		&fakeRentals{stats: &rentcast.MarketStatistics{MedianRent: 2100}},
		&fakeRates{rate: 6.52},
		logger.NewNoOpLogger(),
	)

	got, err := svc.GetMarketContext(context.Background(), "95814")
	require.NoError(t, err)

	assert.InDelta(t, 2100, got.MedianRent, 1e-9)
	assert.Equal(t, "rentcast", got.RentSource)
	assert.InDelta(t, 85000, got.MedianIncome, 1e-9)
	assert.InDelta(t, 95.0, got.OccupancyRate, 1e-9)
	assert.Equal(t, 9000, got.HouseholdCount)
	assert.InDelta(t, 6.52, got.Mortgage30Year, 1e-9)
}

func TestGetMarketContext_FallsBackToCensusRent(t *testing.T) {
	svc := New(
		&fakeDemographics{demo: sampleDemographics()},
		&fakeRentals{err: apperrors.NewRentCastAPIError(errors.New("down"))},
		&fakeRates{rate: 6.52},
		logger.NewNoOpLogger(),
	)

	got, err := svc.GetMarketContext(context.Background(), "95814")
	require.NoError(t, err)

	assert.InDelta(t, 1850, got.MedianRent, 1e-9)
	assert.Equal(t, "census", got.RentSource)
}

func TestGetMarketContext_NotFoundWhenBothSourcesFail(t *testing.T) {
	svc := New(
		&fakeDemographics{err: apperrors.NewMarketDataNotFoundError("99999")},
		&fakeRentals{err: apperrors.NewRentCastAPIError(errors.New("down"))},
		&fakeRates{rate: 6.52},
		logger.NewNoOpLogger(),
	)

	_, err := svc.GetMarketContext(context.Background(), "99999")
	require.Error(t, err)

	se, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeMarketDataNotFound, se.Code)
}

func TestGetMarketContext_SurvivesMissingRateBenchmark(t *testing.T) {
	svc := New(
		&fakeDemographics{demo: sampleDemographics()},
		&fakeRentals{stats: &rentcast.MarketStatistics{MedianRent: 2100}},
		&fakeRates{err: errors.New("fred down")},
		logger.NewNoOpLogger(),
	)

	got, err := svc.GetMarketContext(context.Background(), "95814")
	require.NoError(t, err)
	assert.Zero(t, got.Mortgage30Year)
}

func TestGetMarketContext_InvalidZip(t *testing.T) {
	svc := New(&fakeDemographics{}, &fakeRentals{}, &fakeRates{}, logger.NewNoOpLogger())

	_, err := svc.GetMarketContext(context.Background(), "abc")
	require.Error(t, err)

	se, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidZipcode, se.Code)
}

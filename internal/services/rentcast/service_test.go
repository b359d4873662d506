package rentcast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/cache"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/config"
	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
)

const avmFixture = `{
	"address": "100 Main St, Sacramento, CA 95814",
	"zipCode": "95814",
	"bedrooms": 2,
	"bathrooms": 2,
	"squareFootage": 1050,
	"rent": 2150,
	"rentRangeLow": 1950,
	"rentRangeHigh": 2350,
	"pricePerSquareFoot": 2.05,
	"propertyType": "Apartment",
	"comparables": [
		{"address": "120 Oak Ave", "distance": 0.4, "bedrooms": 2, "bathrooms": 2,
		 "squareFootage": 980, "price": 2050, "daysOnMarket": 12},
		{"address": "88 Pine Ct", "distance": 1.1, "bedrooms": 2, "bathrooms": 1.5,
		 "squareFootage": 1100, "price": 2250, "daysOnMarket": 30}
	]
}`

const marketsFixture = `{
	"month": "2026-07",
	"averageRent": 2080,
	"medianRent": 1995,
	"averageRent1Bed": 1700,
	"averageRent2Bed": 2100,
	"averageRent3Bed": 2600,
	"totalListings": 184,
	"averageDaysOnMarket": 21.5,
	"inventoryLevel": "balanced",
	"history": [
		{"date": "2026-06", "averageRent": 2060, "medianRent": 1980, "listingCount": 171},
		{"date": "2026-07", "averageRent": 2080, "medianRent": 1995, "listingCount": 184}
	]
}`

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.RentCastAPIConfig{
		BaseURL: srv.URL,
		APIKey:  "rc-test-key",
		Timeout: 5000,
	}
	return New(cfg, time.Hour, cache.NewMemory(100), logger.NewNoOpLogger())
}

func TestGetRentEstimate(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rc-test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "/avm/rent/long-term", r.URL.Path)
		assert.Equal(t, "95814", r.URL.Query().Get("zipCode"))
		assert.Equal(t, "2", r.URL.Query().Get("bedrooms"))
		_, _ = w.Write([]byte(avmFixture))
	}))

	est, err := svc.GetRentEstimate(context.Background(), EstimateQuery{
		Zipcode:  "95814",
		Bedrooms: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, "95814", est.Zipcode)
	assert.InDelta(t, 2150, est.EstimatedRent, 1e-9)
	assert.InDelta(t, 1950, est.RentRangeLow, 1e-9)
	assert.InDelta(t, 2350, est.RentRangeHigh, 1e-9)
	assert.Equal(t, "Apartment", est.PropertyType)
}

func TestGetRentEstimate_RequiresAddressOrZip(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called without a locator")
	}))

	_, err := svc.GetRentEstimate(context.Background(), EstimateQuery{})
	require.Error(t, err)

	se, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidParameter, se.Code)
}

func TestGetRentEstimate_CachesByQuery(t *testing.T) {
	var requests atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(avmFixture))
	}))

	ctx := context.Background()
	q := EstimateQuery{Zipcode: "95814", Bedrooms: 2}

	_, err := svc.GetRentEstimate(ctx, q)
	require.NoError(t, err)
	_, err = svc.GetRentEstimate(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())

	// A different query must not hit the same cache entry.
	q.Bedrooms = 3
	_, err = svc.GetRentEstimate(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
}

func TestGetRentalComparables(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Counts outside [1, 25] are clamped before reaching upstream.
		assert.Equal(t, "25", r.URL.Query().Get("compCount"))
		assert.Equal(t, "5", r.URL.Query().Get("radius"))
		_, _ = w.Write([]byte(avmFixture))
	}))

	comps, err := svc.GetRentalComparables(context.Background(),
		EstimateQuery{Zipcode: "95814"}, 100, 0)
	require.NoError(t, err)

	require.Len(t, comps, 2)
	assert.Equal(t, "120 Oak Ave", comps[0].Address)
	assert.InDelta(t, 0.4, comps[0].DistanceMiles, 1e-9)
	assert.InDelta(t, 2050, comps[0].ListedRent, 1e-9)
	assert.Equal(t, 30, comps[1].DaysOnMarket)
}

func TestGetMarketStatistics(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "Rental", r.URL.Query().Get("dataType"))
		_, _ = w.Write([]byte(marketsFixture))
	}))

	stats, err := svc.GetMarketStatistics(context.Background(), "95814", "")
	require.NoError(t, err)

	assert.Equal(t, "2026-07", stats.DataMonth)
	assert.InDelta(t, 2080, stats.AvgRent, 1e-9)
	assert.InDelta(t, 1995, stats.MedianRent, 1e-9)
	assert.Equal(t, 184, stats.TotalListings)
	assert.Equal(t, "balanced", stats.InventoryLevel)
}

func TestGetMarketStatistics_InvalidZip(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called for malformed ZIPs")
	}))

	_, err := svc.GetMarketStatistics(context.Background(), "9581", "Rental")
	require.Error(t, err)

	se, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidZipcode, se.Code)
}

func TestGetMarketStatistics_NotFound(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := svc.GetMarketStatistics(context.Background(), "99999", "Rental")
	require.Error(t, err)

	se, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeMarketDataNotFound, se.Code)
}

func TestGetMarketTrends(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "12", r.URL.Query().Get("historyRange"))
		_, _ = w.Write([]byte(marketsFixture))
	}))

	trends, err := svc.GetMarketTrends(context.Background(), "95814", 12, "Rental")
	require.NoError(t, err)

	require.Len(t, trends, 2)
	assert.Equal(t, "2026-06", trends[0].Date)
	assert.InDelta(t, 2060, trends[0].AvgRent, 1e-9)
	assert.Equal(t, 184, trends[1].ListingCount)
}

func TestGetPropertyValuation(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/avm/rent/long-term":
			_, _ = w.Write([]byte(avmFixture))
		case "/markets":
			_, _ = w.Write([]byte(marketsFixture))
		default:
			http.NotFound(w, r)
		}
	}))

	val, err := svc.GetPropertyValuation(context.Background(), EstimateQuery{Zipcode: "95814"})
	require.NoError(t, err)

	require.NotNil(t, val.RentEstimate)
	assert.InDelta(t, 2150, val.RentEstimate.EstimatedRent, 1e-9)
	assert.Len(t, val.Comparables, 2)
	require.NotNil(t, val.MarketStats)
	assert.InDelta(t, 1995, val.MarketStats.MedianRent, 1e-9)
}

func TestGetPropertyValuation_DegradesWithoutMarketStats(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/markets" {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(avmFixture))
	}))

	val, err := svc.GetPropertyValuation(context.Background(), EstimateQuery{Zipcode: "95814"})
	require.NoError(t, err)

	require.NotNil(t, val.RentEstimate)
	assert.Nil(t, val.MarketStats)
}

package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/cache"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/config"
	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/httpclient"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/metrics"
)

const providerName = "fred"

// FRED series IDs backing the macro snapshot.
const (
	SeriesFedFunds         = "FEDFUNDS"
	SeriesPrimeRate        = "DPRIME"
	SeriesMortgage30Y      = "MORTGAGE30US"
	SeriesMortgage15Y      = "MORTGAGE15US"
	SeriesTreasury10Y      = "DGS10"
	SeriesTreasury2Y       = "DGS2"
	SeriesCPI              = "CPIAUCSL"
	SeriesCoreCPI          = "CPILFESL"
	SeriesPCE              = "PCEPI"
	SeriesHousingStarts    = "HOUST"
	SeriesBuildingPermits  = "PERMIT"
	SeriesExistingSales    = "EXHOSLUSM495S"
	SeriesNewSales         = "HSN1F"
	SeriesCaseShiller      = "CSUSHPISA"
	SeriesRealGDP          = "GDPC1"
	SeriesUnemployment     = "UNRATE"
	SeriesLaborParticipation = "CIVPART"
	SeriesConsumerSentiment  = "UMCSENT"
)

// snapshotSeries is every series fetched for a macro snapshot.
var snapshotSeries = []string{
	SeriesFedFunds, SeriesPrimeRate, SeriesMortgage30Y, SeriesMortgage15Y,
	SeriesTreasury10Y, SeriesTreasury2Y,
	SeriesCPI, SeriesCoreCPI, SeriesPCE,
	SeriesHousingStarts, SeriesBuildingPermits, SeriesExistingSales,
	SeriesNewSales, SeriesCaseShiller,
	SeriesRealGDP, SeriesUnemployment, SeriesLaborParticipation,
	SeriesConsumerSentiment,
}

const snapshotFetchWorkers = 6

// Service queries the St. Louis Fed FRED API. Economic data updates at most
// daily, so results sit behind a short-TTL cache.
type Service struct {
	client *httpclient.Client
	store  cache.Cache
	log    logger.Logger

	baseURL string
	apiKey  string
	ttl     time.Duration
	now     func() time.Time
}

func New(cfg config.FREDAPIConfig, ttl time.Duration, store cache.Cache, log logger.Logger) *Service {
	return &Service{
		client:  httpclient.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
		store:   store,
		log:     log,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		ttl:     ttl,
		now:     time.Now,
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// GetTimeSeries returns observations for one series in chronological order.
// FRED reports missing observations as "."; those are dropped.
func (s *Service) GetTimeSeries(ctx context.Context, seriesID, startDate, endDate string, limit int) ([]TimeSeriesPoint, error) {
	if seriesID == "" {
		return nil, apperrors.NewInvalidParameterError("seriesId", "must not be empty")
	}
	if limit <= 0 {
		limit = 100
	}

	cacheKey := fmt.Sprintf("fred:series:%s:%s:%s:%d", seriesID, startDate, endDate, limit)
	if raw, err := s.store.Get(ctx, cacheKey); err == nil {
		var points []TimeSeriesPoint
		if err := json.Unmarshal(raw, &points); err == nil {
			metrics.CacheHits.WithLabelValues(providerName).Inc()
			return points, nil
		}
	}
	metrics.CacheMisses.WithLabelValues(providerName).Inc()

	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", s.apiKey)
	params.Set("file_type", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort_order", "desc")
	if startDate != "" {
		params.Set("observation_start", startDate)
	}
	if endDate != "" {
		params.Set("observation_end", endDate)
	}

	var resp observationsResponse
	start := s.now()
	err := s.client.GetJSON(ctx, s.baseURL+"/series/observations?"+params.Encode(), nil, &resp)
	metrics.ProviderRequestDuration.WithLabelValues(providerName).Observe(s.now().Sub(start).Seconds())
	if err != nil {
		metrics.ProviderRequestErrors.WithLabelValues(providerName).Inc()
		return nil, apperrors.NewFREDAPIError(err)
	}

	points := make([]TimeSeriesPoint, 0, len(resp.Observations))
	for i := len(resp.Observations) - 1; i >= 0; i-- {
		obs := resp.Observations[i]
		if obs.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		points = append(points, TimeSeriesPoint{Date: obs.Date, Value: v})
	}

	if payload, err := json.Marshal(points); err == nil {
		if err := s.store.Set(ctx, cacheKey, payload, s.ttl); err != nil {
			s.log.Warn("failed to cache fred series", map[string]interface{}{
				"series": seriesID,
				"error":  err.Error(),
			})
		}
	}
	return points, nil
}

// GetLatestObservation returns the most recent non-missing value of a series.
func (s *Service) GetLatestObservation(ctx context.Context, seriesID string) (float64, error) {
	points, err := s.GetTimeSeries(ctx, seriesID, "", "", 1)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, apperrors.NewFREDAPIError(fmt.Errorf("series %s has no observations", seriesID))
	}
	return points[len(points)-1].Value, nil
}

// GetMortgageRateHistory returns weekly 30-year fixed mortgage rates over
// the trailing number of months.
func (s *Service) GetMortgageRateHistory(ctx context.Context, months int) ([]TimeSeriesPoint, error) {
	if months <= 0 {
		months = 12
	}
	end := s.now()
	start := end.AddDate(0, -months, 0)
	// Weekly series, about five observations per month.
	return s.GetTimeSeries(ctx, SeriesMortgage30Y,
		start.Format("2006-01-02"), end.Format("2006-01-02"), months*5)
}

// GetMacroSnapshot assembles the full macro picture. Series fetches run on a
// small worker pool; individual series failures leave their field zeroed
// rather than failing the snapshot.
func (s *Service) GetMacroSnapshot(ctx context.Context) (*MacroSnapshot, error) {
	cacheKey := "fred:macro_snapshot"
	if raw, err := s.store.Get(ctx, cacheKey); err == nil {
		var snap MacroSnapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			metrics.CacheHits.WithLabelValues(providerName).Inc()
			return &snap, nil
		}
	}
	metrics.CacheMisses.WithLabelValues(providerName).Inc()

	values := make(map[string]float64, len(snapshotSeries))
	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan string)

	for i := 0; i < snapshotFetchWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seriesID := range jobs {
				v, err := s.GetLatestObservation(ctx, seriesID)
				if err != nil {
					s.log.Warn("series unavailable for macro snapshot", map[string]interface{}{
						"series": seriesID,
						"error":  err.Error(),
					})
					continue
				}
				mu.Lock()
				values[seriesID] = v
				mu.Unlock()
			}
		}()
	}
	for _, seriesID := range snapshotSeries {
		jobs <- seriesID
	}
	close(jobs)
	wg.Wait()

	if len(values) == 0 {
		return nil, apperrors.NewFREDAPIError(fmt.Errorf("no FRED series reachable"))
	}

	snap := &MacroSnapshot{
		InterestRates: InterestRates{
			FederalFundsRate: values[SeriesFedFunds],
			PrimeRate:        values[SeriesPrimeRate],
			Mortgage30Year:   values[SeriesMortgage30Y],
			Mortgage15Year:   values[SeriesMortgage15Y],
			Treasury10Year:   values[SeriesTreasury10Y],
			Treasury2Year:    values[SeriesTreasury2Y],
		},
		Inflation: Inflation{
			CPIAllItems:  values[SeriesCPI],
			CPIYoYChange: s.yoyChange(ctx, SeriesCPI),
			CoreCPI:      values[SeriesCoreCPI],
			PCEInflation: values[SeriesPCE],
		},
		HousingMarket: HousingMarket{
			HousingStarts:     int(values[SeriesHousingStarts]),
			BuildingPermits:   int(values[SeriesBuildingPermits]),
			ExistingHomeSales: int(values[SeriesExistingSales]),
			NewHomeSales:      int(values[SeriesNewSales]),
			CaseShillerIndex:  values[SeriesCaseShiller],
		},
		EconomicIndicators: EconomicIndicators{
			RealGDP:                 values[SeriesRealGDP],
			GDPGrowthRate:           s.yoyChange(ctx, SeriesRealGDP),
			UnemploymentRate:        values[SeriesUnemployment],
			LaborForceParticipation: values[SeriesLaborParticipation],
			ConsumerSentiment:       values[SeriesConsumerSentiment],
		},
		LastUpdated: s.now().UTC(),
	}

	if payload, err := json.Marshal(snap); err == nil {
		if err := s.store.Set(ctx, cacheKey, payload, s.ttl); err != nil {
			s.log.Warn("failed to cache macro snapshot", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return snap, nil
}

// yoyChange computes the year-over-year percentage change of a series,
// comparing the latest observation against the one closest to a year back.
// Returns zero when the history is too thin.
func (s *Service) yoyChange(ctx context.Context, seriesID string) float64 {
	end := s.now()
	start := end.AddDate(0, 0, -400)
	points, err := s.GetTimeSeries(ctx, seriesID,
		start.Format("2006-01-02"), end.Format("2006-01-02"), 400)
	if err != nil || len(points) < 2 {
		return 0
	}

	current := points[len(points)-1]
	target := end.AddDate(0, 0, -365).Format("2006-01-02")

	var yearAgo *TimeSeriesPoint
	for i := range points {
		if points[i].Date <= target {
			yearAgo = &points[i]
		}
	}
	if yearAgo == nil || yearAgo.Value == 0 {
		return 0
	}
	change := (current.Value - yearAgo.Value) / yearAgo.Value * 100
	return math.Round(change*100) / 100
}

package rentcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/cache"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/config"
	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/httpclient"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/metrics"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/validation"
)

const providerName = "rentcast"

const (
	maxComparableCount = 25
	maxTrendMonths     = 24
	defaultCompRadius  = 5.0
)

// EstimateQuery identifies the subject property for a rent estimate. At
// least one of Address or Zipcode is required; the remaining fields narrow
// the AVM when set (> 0).
type EstimateQuery struct {
	Address       string
	Zipcode       string
	Bedrooms      int
	Bathrooms     float64
	SquareFootage int
}

// Service queries the RentCast rental intelligence API with a cache-aside
// layer. Rental data moves slowly, so entries live for days, not minutes.
type Service struct {
	client *httpclient.Client
	store  cache.Cache
	log    logger.Logger

	baseURL string
	apiKey  string
	ttl     time.Duration
	now     func() time.Time
}

func New(cfg config.RentCastAPIConfig, ttl time.Duration, store cache.Cache, log logger.Logger) *Service {
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

// avmResponse is the wire shape of /avm/rent/long-term.
type avmResponse struct {
	Address            string        `json:"address"`
	ZipCode            string        `json:"zipCode"`
	Bedrooms           int           `json:"bedrooms"`
	Bathrooms          float64       `json:"bathrooms"`
	SquareFootage      int           `json:"squareFootage"`
	Rent               float64       `json:"rent"`
	RentRangeLow       float64       `json:"rentRangeLow"`
	RentRangeHigh      float64       `json:"rentRangeHigh"`
	PricePerSquareFoot float64       `json:"pricePerSquareFoot"`
	PropertyType       string        `json:"propertyType"`
	Comparables        []compRecord  `json:"comparables"`
}

type compRecord struct {
	Address            string  `json:"address"`
	Distance           float64 `json:"distance"`
	Bedrooms           int     `json:"bedrooms"`
	Bathrooms          float64 `json:"bathrooms"`
	SquareFootage      int     `json:"squareFootage"`
	Price              float64 `json:"price"`
	PricePerSquareFoot float64 `json:"pricePerSquareFoot"`
	PropertyType       string  `json:"propertyType"`
	DaysOnMarket       int     `json:"daysOnMarket"`
	URL                string  `json:"url"`
}

// marketsResponse is the wire shape of /markets.
type marketsResponse struct {
	Month               string        `json:"month"`
	AverageRent         float64       `json:"averageRent"`
	MedianRent          float64       `json:"medianRent"`
	AverageRent1Bed     float64       `json:"averageRent1Bed"`
	AverageRent2Bed     float64       `json:"averageRent2Bed"`
	AverageRent3Bed     float64       `json:"averageRent3Bed"`
	AverageRent4Bed     float64       `json:"averageRent4Bed"`
	TotalListings       int           `json:"totalListings"`
	AverageDaysOnMarket float64       `json:"averageDaysOnMarket"`
	InventoryLevel      string        `json:"inventoryLevel"`
	History             []trendRecord `json:"history"`
}

type trendRecord struct {
	Date         string  `json:"date"`
	AverageRent  float64 `json:"averageRent"`
	MedianRent   float64 `json:"medianRent"`
	ListingCount int     `json:"listingCount"`
}

// GetRentEstimate returns the long-term rent AVM result for a property.
func (s *Service) GetRentEstimate(ctx context.Context, q EstimateQuery) (*RentEstimate, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("rentcast:estimate:%s:%s:%d:%g:%d",
		q.Address, q.Zipcode, q.Bedrooms, q.Bathrooms, q.SquareFootage)
	if est, ok := cacheLookup[RentEstimate](ctx, s, cacheKey); ok {
		return est, nil
	}

	var resp avmResponse
	if err := s.get(ctx, "/avm/rent/long-term", q.params(), &resp); err != nil {
		return nil, err
	}

	est := &RentEstimate{
		Address:       firstNonEmpty(q.Address, resp.Address),
		Zipcode:       firstNonEmpty(q.Zipcode, resp.ZipCode),
		Bedrooms:      resp.Bedrooms,
		Bathrooms:     resp.Bathrooms,
		SquareFootage: resp.SquareFootage,
		EstimatedRent: resp.Rent,
		RentRangeLow:  resp.RentRangeLow,
		RentRangeHigh: resp.RentRangeHigh,
		PricePerSqft:  resp.PricePerSquareFoot,
		PropertyType:  resp.PropertyType,
		LastUpdated:   s.now().UTC(),
	}
	s.cacheStore(ctx, cacheKey, est)
	return est, nil
}

// GetRentalComparables returns up to compCount rental listings near the
// subject property. compCount is clamped to [1, 25].
func (s *Service) GetRentalComparables(ctx context.Context, q EstimateQuery, compCount int, radiusMiles float64) ([]Comparable, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	compCount = clamp(compCount, 1, maxComparableCount)
	if radiusMiles <= 0 {
		radiusMiles = defaultCompRadius
	}

	cacheKey := fmt.Sprintf("rentcast:comps:%s:%s:%d:%g:%d:%g",
		q.Address, q.Zipcode, q.Bedrooms, q.Bathrooms, compCount, radiusMiles)
	if comps, ok := cacheLookup[[]Comparable](ctx, s, cacheKey); ok {
		return *comps, nil
	}

	params := q.params()
	params.Set("compCount", strconv.Itoa(compCount))
	params.Set("radius", strconv.FormatFloat(radiusMiles, 'f', -1, 64))

	var resp avmResponse
	if err := s.get(ctx, "/avm/rent/long-term", params, &resp); err != nil {
		return nil, err
	}

	comps := make([]Comparable, 0, len(resp.Comparables))
	for _, c := range resp.Comparables {
		comps = append(comps, Comparable{
			Address:       c.Address,
			DistanceMiles: c.Distance,
			Bedrooms:      c.Bedrooms,
			Bathrooms:     c.Bathrooms,
			SquareFootage: c.SquareFootage,
			ListedRent:    c.Price,
			PricePerSqft:  c.PricePerSquareFoot,
			PropertyType:  c.PropertyType,
			DaysOnMarket:  c.DaysOnMarket,
			ListingURL:    c.URL,
		})
	}
	s.cacheStore(ctx, cacheKey, &comps)
	return comps, nil
}

// GetMarketStatistics returns the current rental market snapshot for a ZIP.
// dataType is Rental, Sale or All; empty defaults to Rental.
func (s *Service) GetMarketStatistics(ctx context.Context, zipcode, dataType string) (*MarketStatistics, error) {
	if !validation.IsZipcode(zipcode) {
		return nil, apperrors.NewInvalidZipcodeError(zipcode)
	}
	if dataType == "" {
		dataType = "Rental"
	}

	cacheKey := fmt.Sprintf("rentcast:stats:%s:%s", zipcode, dataType)
	if stats, ok := cacheLookup[MarketStatistics](ctx, s, cacheKey); ok {
		return stats, nil
	}

	params := url.Values{}
	params.Set("zipCode", zipcode)
	params.Set("dataType", dataType)

	var resp marketsResponse
	if err := s.get(ctx, "/markets", params, &resp); err != nil {
		return nil, err
	}

	month := resp.Month
	if month == "" {
		month = s.now().UTC().Format("2006-01")
	}
	stats := &MarketStatistics{
		Zipcode:         zipcode,
		DataMonth:       month,
		AvgRent:         resp.AverageRent,
		MedianRent:      resp.MedianRent,
		AvgRent1Bed:     resp.AverageRent1Bed,
		AvgRent2Bed:     resp.AverageRent2Bed,
		AvgRent3Bed:     resp.AverageRent3Bed,
		AvgRent4Bed:     resp.AverageRent4Bed,
		TotalListings:   resp.TotalListings,
		AvgDaysOnMarket: resp.AverageDaysOnMarket,
		InventoryLevel:  resp.InventoryLevel,
		LastUpdated:     s.now().UTC(),
	}
	s.cacheStore(ctx, cacheKey, stats)
	return stats, nil
}

// GetMarketTrends returns up to months of rental history for a ZIP code.
// months is clamped to [1, 24].
func (s *Service) GetMarketTrends(ctx context.Context, zipcode string, months int, dataType string) ([]MarketTrend, error) {
	if !validation.IsZipcode(zipcode) {
		return nil, apperrors.NewInvalidZipcodeError(zipcode)
	}
	if dataType == "" {
		dataType = "Rental"
	}
	months = clamp(months, 1, maxTrendMonths)

	cacheKey := fmt.Sprintf("rentcast:trends:%s:%d:%s", zipcode, months, dataType)
	if trends, ok := cacheLookup[[]MarketTrend](ctx, s, cacheKey); ok {
		return *trends, nil
	}

	params := url.Values{}
	params.Set("zipCode", zipcode)
	params.Set("dataType", dataType)
	params.Set("historyRange", strconv.Itoa(months))

	var resp marketsResponse
	if err := s.get(ctx, "/markets", params, &resp); err != nil {
		return nil, err
	}

	trends := make([]MarketTrend, 0, len(resp.History))
	for _, h := range resp.History {
		trends = append(trends, MarketTrend{
			Date:         h.Date,
			AvgRent:      h.AverageRent,
			MedianRent:   h.MedianRent,
			ListingCount: h.ListingCount,
		})
	}
	s.cacheStore(ctx, cacheKey, &trends)
	return trends, nil
}

// GetPropertyValuation bundles the rent estimate, comparables and the ZIP
// market snapshot. Comparable and snapshot failures degrade the bundle
// rather than failing it; only a missing estimate is fatal.
func (s *Service) GetPropertyValuation(ctx context.Context, q EstimateQuery) (*PropertyValuation, error) {
	estimate, err := s.GetRentEstimate(ctx, q)
	if err != nil {
		return nil, err
	}

	comps, err := s.GetRentalComparables(ctx, q, 10, defaultCompRadius)
	if err != nil {
		s.log.Warn("comparables unavailable for valuation", map[string]interface{}{
			"zipcode": q.Zipcode,
			"error":   err.Error(),
		})
		comps = nil
	}

	var stats *MarketStatistics
	if q.Zipcode != "" {
		stats, err = s.GetMarketStatistics(ctx, q.Zipcode, "Rental")
		if err != nil {
			s.log.Warn("market statistics unavailable for valuation", map[string]interface{}{
				"zipcode": q.Zipcode,
				"error":   err.Error(),
			})
			stats = nil
		}
	}

	return &PropertyValuation{
		RentEstimate: estimate,
		Comparables:  comps,
		MarketStats:  stats,
		LastUpdated:  s.now().UTC(),
	}, nil
}

func (q EstimateQuery) validate() error {
	if q.Address == "" && q.Zipcode == "" {
		return apperrors.NewInvalidParameterError("address",
			"either address or zipcode is required")
	}
	if q.Zipcode != "" && !validation.IsZipcode(q.Zipcode) {
		return apperrors.NewInvalidZipcodeError(q.Zipcode)
	}
	return nil
}

func (q EstimateQuery) params() url.Values {
	params := url.Values{}
	if q.Address != "" {
		params.Set("address", q.Address)
	}
	if q.Zipcode != "" {
		params.Set("zipCode", q.Zipcode)
	}
	if q.Bedrooms > 0 {
		params.Set("bedrooms", strconv.Itoa(q.Bedrooms))
	}
	if q.Bathrooms > 0 {
		params.Set("bathrooms", strconv.FormatFloat(q.Bathrooms, 'f', -1, 64))
	}
	if q.SquareFootage > 0 {
		params.Set("squareFootage", strconv.Itoa(q.SquareFootage))
	}
	return params
}

func (s *Service) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := s.baseURL + path + "?" + params.Encode()
	headers := map[string]string{"X-Api-Key": s.apiKey}

	start := s.now()
	err := s.client.GetJSON(ctx, endpoint, headers, out)
	metrics.ProviderRequestDuration.WithLabelValues(providerName).Observe(s.now().Sub(start).Seconds())
	if err != nil {
		metrics.ProviderRequestErrors.WithLabelValues(providerName).Inc()
		if httpclient.IsNotFound(err) {
			return apperrors.NewMarketDataNotFoundError(params.Get("zipCode"))
		}
		return apperrors.NewRentCastAPIError(err)
	}
	return nil
}

// cacheLookup returns the decoded cache entry for key, if present and fresh.
func cacheLookup[T any](ctx context.Context, s *Service, key string) (*T, bool) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues(providerName).Inc()
		return nil, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		metrics.CacheMisses.WithLabelValues(providerName).Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(providerName).Inc()
	return &out, true
}

func (s *Service) cacheStore(ctx context.Context, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, key, payload, s.ttl); err != nil {
		s.log.Warn("failed to cache rentcast response", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

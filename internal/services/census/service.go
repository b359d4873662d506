package census

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/cache"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/config"
	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/httpclient"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/metrics"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/validation"
)

const providerName = "census"

// Census reports missing numeric observations with this sentinel.
const missingValueSentinel = "-666666666"

// acsVariables lists every ACS 5-year variable fetched per ZIP, in a fixed
// order so the upstream query is deterministic.
var acsVariables = []string{
	// Population and households
	"B01003_001E", // total population
	"B11001_001E", // total households
	"B25010_001E", // average household size

	// Income
	"B19013_001E", // median household income
	"B19001_002E", "B19001_003E", "B19001_004E", "B19001_005E",
	"B19001_006E", "B19001_007E", "B19001_008E", "B19001_009E",
	"B19001_010E", "B19001_011E", "B19001_012E", "B19001_013E",
	"B19001_014E", "B19001_015E", "B19001_016E", "B19001_017E",

	// Housing
	"B25077_001E", // median home value
	"B25064_001E", // median gross rent
	"B25001_001E", // total housing units
	"B25002_002E", // occupied units
	"B25002_003E", // vacant units
	"B25003_002E", // owner occupied
	"B25003_003E", // renter occupied

	// Employment
	"B23025_005E", // unemployed
	"B23025_003E", // labor force
}

// incomeDistributionVars maps distribution variables to their bucket labels.
var incomeDistributionVars = map[string]string{
	"B19001_002E": "under_10k",
	"B19001_003E": "10k_15k",
	"B19001_004E": "15k_20k",
	"B19001_005E": "20k_25k",
	"B19001_006E": "25k_30k",
	"B19001_007E": "30k_35k",
	"B19001_008E": "35k_40k",
	"B19001_009E": "40k_45k",
	"B19001_010E": "45k_50k",
	"B19001_011E": "50k_60k",
	"B19001_012E": "60k_75k",
	"B19001_013E": "75k_100k",
	"B19001_014E": "100k_125k",
	"B19001_015E": "125k_150k",
	"B19001_016E": "150k_200k",
	"B19001_017E": "200k_plus",
}

// Service fetches ZIP-level demographics from the US Census Bureau ACS
// 5-year dataset, with a cache-aside layer in front of the upstream API.
type Service struct {
	client *httpclient.Client
	store  cache.Cache
	log    logger.Logger

	baseURL string
	apiKey  string
	year    string
	ttl     time.Duration
	now     func() time.Time
}

func New(cfg config.CensusAPIConfig, ttl time.Duration, store cache.Cache, log logger.Logger) *Service {
	return &Service{
		client:  httpclient.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
		store:   store,
		log:     log,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		year:    cfg.Year,
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetDemographics returns the demographic profile for a ZIP code, serving
// from cache when a fresh entry exists.
func (s *Service) GetDemographics(ctx context.Context, zipcode string) (*Demographics, error) {
	if !validation.IsZipcode(zipcode) {
		return nil, apperrors.NewInvalidZipcodeError(zipcode)
	}

	cacheKey := fmt.Sprintf("census:%s:%s", zipcode, s.year)
	if cached, err := s.store.Get(ctx, cacheKey); err == nil {
		var demo Demographics
		if err := json.Unmarshal(cached, &demo); err == nil {
			metrics.CacheHits.WithLabelValues(providerName).Inc()
			return &demo, nil
		}
		s.log.Warn("discarding undecodable census cache entry", map[string]interface{}{
			"key": cacheKey,
		})
	}
	metrics.CacheMisses.WithLabelValues(providerName).Inc()

	demo, err := s.fetchDemographics(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(demo); err == nil {
		if err := s.store.Set(ctx, cacheKey, payload, s.ttl); err != nil {
			s.log.Warn("failed to cache census response", map[string]interface{}{
				"zipcode": zipcode,
				"error":   err.Error(),
			})
		}
	}
	return demo, nil
}

// GetAMIRentLimit derives the affordable rent ceiling for an AMI tier,
// conventionally 30% of the tier's monthly income limit.
func (s *Service) GetAMIRentLimit(ctx context.Context, zipcode string, amiPercent, bedrooms int) (*AMIRentLimit, error) {
	demo, err := s.GetDemographics(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	var limit int
	switch amiPercent {
	case 30:
		limit = demo.Income.AMI30Percent
	case 50:
		limit = demo.Income.AMI50Percent
	case 60:
		limit = demo.Income.AMI60Percent
	case 80:
		limit = demo.Income.AMI80Percent
	default:
		return nil, apperrors.NewInvalidParameterError("amiPercent",
			fmt.Sprintf("must be 30, 50, 60 or 80, got %d", amiPercent))
	}

	return &AMIRentLimit{
		Zipcode:          zipcode,
		AMIPercent:       amiPercent,
		AMIIncomeLimit:   limit,
		MaxMonthlyRent:   int(float64(limit) / 12 * 0.30),
		AreaMedianIncome: demo.Income.MedianHouseholdIncome,
		Bedrooms:         bedrooms,
	}, nil
}

func (s *Service) fetchDemographics(ctx context.Context, zipcode string) (*Demographics, error) {
	query := url.Values{}
	query.Set("get", strings.Join(acsVariables, ","))
	query.Set("for", "zip code tabulation area:"+zipcode)
	if s.apiKey != "" {
		query.Set("key", s.apiKey)
	}
	endpoint := fmt.Sprintf("%s/%s/acs/acs5?%s", s.baseURL, s.year, query.Encode())

	// The ACS API answers with a rows-of-strings table: a header row
	// followed by one value row per geography. Values may be null.
	var rows [][]*string

	start := s.now()
	err := s.client.GetJSON(ctx, endpoint, nil, &rows)
	metrics.ProviderRequestDuration.WithLabelValues(providerName).Observe(s.now().Sub(start).Seconds())
	if err != nil {
		metrics.ProviderRequestErrors.WithLabelValues(providerName).Inc()
		if httpclient.IsNotFound(err) {
			return nil, apperrors.NewMarketDataNotFoundError(zipcode)
		}
		return nil, apperrors.NewCensusAPIError(err)
	}

	if len(rows) < 2 {
		return nil, apperrors.NewMarketDataNotFoundError(zipcode)
	}
	values := rowToMap(rows[0], rows[1])

	return s.parseDemographics(zipcode, values), nil
}

func (s *Service) parseDemographics(zipcode string, values map[string]string) *Demographics {
	medianIncome := safeInt(values["B19013_001E"])

	distribution := make(map[string]int, len(incomeDistributionVars))
	for code, bucket := range incomeDistributionVars {
		distribution[bucket] = safeInt(values[code])
	}

	totalUnits := safeInt(values["B25001_001E"])
	occupied := safeInt(values["B25002_002E"])
	occupancyRate := 0.0
	if totalUnits > 0 {
		occupancyRate = roundTo2(float64(occupied) / float64(totalUnits) * 100)
	}

	laborForce := safeInt(values["B23025_003E"])
	unemployed := safeInt(values["B23025_005E"])
	unemploymentRate := 0.0
	if laborForce > 0 {
		unemploymentRate = roundTo2(float64(unemployed) / float64(laborForce) * 100)
	}

	vintage, _ := strconv.Atoi(s.year)

	return &Demographics{
		Zipcode: zipcode,
		Population: Population{
			TotalPopulation:  safeInt(values["B01003_001E"]),
			TotalHouseholds:  safeInt(values["B11001_001E"]),
			AvgHouseholdSize: safeFloat(values["B25010_001E"]),
		},
		Income: Income{
			MedianHouseholdIncome: medianIncome,
			AMI30Percent:          int(float64(medianIncome) * 0.30),
			AMI50Percent:          int(float64(medianIncome) * 0.50),
			AMI60Percent:          int(float64(medianIncome) * 0.60),
			AMI80Percent:          int(float64(medianIncome) * 0.80),
			IncomeDistribution:    distribution,
		},
		Housing: Housing{
			MedianHomeValue:   safeInt(values["B25077_001E"]),
			MedianGrossRent:   safeInt(values["B25064_001E"]),
			TotalHousingUnits: totalUnits,
			OccupiedUnits:     occupied,
			VacantUnits:       safeInt(values["B25002_003E"]),
			OwnerOccupied:     safeInt(values["B25003_002E"]),
			RenterOccupied:    safeInt(values["B25003_003E"]),
			OccupancyRate:     occupancyRate,
		},
		UnemploymentRate: unemploymentRate,
		// ACS 5-year vintages span the five years ending at the vintage year.
		DataYear:    fmt.Sprintf("%d-%d", vintage-4, vintage),
		LastUpdated: s.now().UTC(),
	}
}

func rowToMap(header, row []*string) map[string]string {
	out := make(map[string]string, len(header))
	for i, h := range header {
		if h == nil || i >= len(row) || row[i] == nil {
			continue
		}
		out[*h] = *row[i]
	}
	return out
}

// safeInt parses a Census value, treating missing entries and the upstream
// missing-data sentinel as zero.
func safeInt(v string) int {
	if v == "" || v == missingValueSentinel {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	if n == -666666666 {
		return 0
	}
	return n
}

func safeFloat(v string) float64 {
	if v == "" || v == missingValueSentinel {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f == -666666666 {
		return 0
	}
	return f
}

func roundTo2(x float64) float64 {
	return math.Round(x*100) / 100
}

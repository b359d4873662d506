package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/config"
	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/census"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/deals"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/fred"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/funds"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/listings"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/marketdata"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/rentcast"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/underwriting"
)

type fakeDemographics struct{}

func (fakeDemographics) GetDemographics(ctx context.Context, zipcode string) (*census.Demographics, error) {
	if zipcode == "00000" {
		return nil, apperrors.NewMarketDataNotFoundError(zipcode)
	}
	return &census.Demographics{Zipcode: zipcode}, nil
}

func (fakeDemographics) GetAMIRentLimit(ctx context.Context, zipcode string, amiPercent, bedrooms int) (*census.AMIRentLimit, error) {
	return &census.AMIRentLimit{Zipcode: zipcode, AMIPercent: amiPercent, Bedrooms: bedrooms}, nil
}

type fakeRentals struct {
	lastQuery rentcast.EstimateQuery
}

func (f *fakeRentals) GetRentEstimate(ctx context.Context, q rentcast.EstimateQuery) (*rentcast.RentEstimate, error) {
	f.lastQuery = q
	return &rentcast.RentEstimate{EstimatedRent: 2100}, nil
}

func (f *fakeRentals) GetMarketStatistics(ctx context.Context, zipcode, dataType string) (*rentcast.MarketStatistics, error) {
	return &rentcast.MarketStatistics{Zipcode: zipcode}, nil
}

func (f *fakeRentals) GetMarketTrends(ctx context.Context, zipcode string, months int, dataType string) ([]rentcast.MarketTrend, error) {
	return []rentcast.MarketTrend{}, nil
}

func (f *fakeRentals) GetPropertyValuation(ctx context.Context, q rentcast.EstimateQuery) (*rentcast.PropertyValuation, error) {
	return &rentcast.PropertyValuation{}, nil
}

type fakeEconomy struct{}

func (fakeEconomy) GetMacroSnapshot(ctx context.Context) (*fred.MacroSnapshot, error) {
	return &fred.MacroSnapshot{InterestRates: fred.InterestRates{Mortgage30Year: 6.5}}, nil
}

func (fakeEconomy) GetMortgageRateHistory(ctx context.Context, months int) ([]fred.TimeSeriesPoint, error) {
	return []fred.TimeSeriesPoint{}, nil
}

type fakeMarket struct{}

func (fakeMarket) GetMarketContext(ctx context.Context, zipcode string) (*marketdata.MarketContext, error) {
	return &marketdata.MarketContext{Zipcode: zipcode, MedianRent: 1850}, nil
}

type fakeDeals struct {
	created *deals.Input
}

func (f *fakeDeals) Create(ctx context.Context, in deals.Input) (*deals.Deal, error) {
	f.created = &in
	return &deals.Deal{ID: 7, Name: in.Name, Status: deals.StatusPotential}, nil
}

func (f *fakeDeals) Get(ctx context.Context, id int64) (*deals.Deal, error) {
	if id == 404 {
		return nil, apperrors.NewDealNotFoundError(id)
	}
	return &deals.Deal{ID: id, Name: "Riverfront Commons"}, nil
}

func (f *fakeDeals) List(ctx context.Context, status string, limit int) ([]deals.Deal, error) {
	return []deals.Deal{{ID: 1}, {ID: 2}}, nil
}

func (f *fakeDeals) Update(ctx context.Context, id int64, in deals.Input) (*deals.Deal, error) {
	return &deals.Deal{ID: id, Name: in.Name, Status: in.Status}, nil
}

func (f *fakeDeals) Delete(ctx context.Context, id int64) error {
	return nil
}

func (f *fakeDeals) GroupedByStatus(ctx context.Context) (map[deals.Status][]deals.Deal, error) {
	return map[deals.Status][]deals.Deal{
		deals.StatusPotential: {{ID: 1}},
		deals.StatusOngoing:   {},
		deals.StatusCompleted: {},
		deals.StatusRejected:  {},
	}, nil
}

type fakeFunds struct{}

func (fakeFunds) GetOverview(ctx context.Context, fundID int64) (*funds.Overview, error) {
	if fundID == 404 {
		return nil, apperrors.NewFundNotFoundError(fundID)
	}
	return &funds.Overview{Fund: &funds.Fund{ID: fundID, Name: "Aequitas Real Estate Fund I"}}, nil
}

func (fakeFunds) GetCashFlows(ctx context.Context, fundID int64) ([]funds.CashFlow, funds.CashFlowSummary, error) {
	return []funds.CashFlow{{FundID: fundID, Year: 2026, Quarter: 1}},
		funds.CashFlowSummary{TotalCapitalCalls: 10_000_000}, nil
}

func (fakeFunds) GetGPOverview(ctx context.Context, gpID int64) (*funds.GPOverview, error) {
	if gpID == 404 {
		return nil, apperrors.NewGPNotFoundError(gpID)
	}
	return &funds.GPOverview{GP: &funds.GeneralPartner{ID: gpID}}, nil
}

type fakeListings struct {
	lastQuery listings.SearchQuery
}

func (f *fakeListings) Search(ctx context.Context, q listings.SearchQuery) (*listings.SearchResult, error) {
	f.lastQuery = q
	return &listings.SearchResult{TotalHits: 1, Listings: []listings.Listing{{ID: "l-1"}}}, nil
}

func (f *fakeListings) DashboardMetrics(ctx context.Context) listings.DashboardMetrics {
	return listings.DashboardMetrics{TotalAffordableUnits: 15230}
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

type testFixture struct {
	server   *httptest.Server
	rentals  *fakeRentals
	deals    *fakeDeals
	listings *fakeListings
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testFixture {
	t.Helper()

	cfg := config.Config{
		App: config.AppConfig{Name: "aequitas-api", Version: "test", Environment: "test"},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	rentals := &fakeRentals{}
	dealsSvc := &fakeDeals{}
	listingsSvc := &fakeListings{}

	srv := NewServer(cfg, Dependencies{
		Demographics: fakeDemographics{},
		Rentals:      rentals,
		Economy:      fakeEconomy{},
		Market:       fakeMarket{},
		Deals:        dealsSvc,
		Funds:        fakeFunds{},
		Listings:     listingsSvc,
		Health: func(ctx context.Context) map[string]string {
			return map[string]string{"postgres": "up", "redis": "up"}
		},
	}, logger.NewNoOpLogger())
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	return &testFixture{server: ts, rentals: rentals, deals: dealsSvc, listings: listingsSvc}
}

func doJSON(t *testing.T, method, url string, body []byte) (*http.Response, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env testEnvelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res, env
}

func baselinePayload() map[string]interface{} {
	return map[string]interface{}{
		"totalUnits":            200,
		"purchasePrice":         15_000_000,
		"constructionCost":      25_000_000,
		"closingCosts":          3_000_000,
		"avgMonthlyRent":        1200,
		"operatingExpenseRatio": 0.35,
		"loanToValue":           75,
		"annualInterestRate":    0.065,
		"loanTermYears":         30,
		"holdingPeriodYears":    10,
		"exitCapRate":           0.06,
	}
}

func TestPing(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet, f.server.URL+"/api/v1/ping", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "pong")
}

func TestStatus_IncludesComponents(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet, f.server.URL+"/api/v1/status", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var status struct {
		App        string            `json:"app"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "aequitas-api", status.App)
	assert.Equal(t, "up", status.Components["postgres"])
}

func TestRequestIDEchoed(t *testing.T) {
	f := newTestServer(t, nil)

	res, _ := doJSON(t, http.MethodGet, f.server.URL+"/api/v1/ping", nil)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}

func TestDemographics_NotFoundMapping(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet, f.server.URL+"/api/v1/demographics/00000", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "MARKET_DATA_NOT_FOUND", env.Error.Code)
}

func TestDemographicsBatch_PartialFailures(t *testing.T) {
	f := newTestServer(t, nil)

	body, err := json.Marshal(map[string]interface{}{
		"zipcodes": []string{"95814", "00000"},
	})
	require.NoError(t, err)

	res, env := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/demographics/batch", body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	require.True(t, env.Success)

	var data struct {
		Results map[string]json.RawMessage `json:"results"`
		Errors  map[string]string          `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	assert.Contains(t, data.Results, "95814")
	assert.NotContains(t, data.Results, "00000")
	assert.Contains(t, data.Errors, "00000")
}

func TestDemographicsBatch_RejectsOversizedBatch(t *testing.T) {
	f := newTestServer(t, nil)

	zipcodes := make([]string, 51)
	for i := range zipcodes {
		zipcodes[i] = fmt.Sprintf("9%04d", i)
	}
	body, err := json.Marshal(map[string]interface{}{"zipcodes": zipcodes})
	require.NoError(t, err)

	res, env := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/demographics/batch", body)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PARAMETER", env.Error.Code)
}

func TestDemographicsBatch_RequiresZipcodes(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/demographics/batch", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PARAMETER", env.Error.Code)
}

func TestRentEstimate_ParsesQuery(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet,
		f.server.URL+"/api/v1/market/rent-estimate?zipcode=95814&bedrooms=2&bathrooms=1.5&squareFootage=900", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, env.Success)

	assert.Equal(t, "95814", f.rentals.lastQuery.Zipcode)
	assert.Equal(t, 2, f.rentals.lastQuery.Bedrooms)
	assert.InDelta(t, 1.5, f.rentals.lastQuery.Bathrooms, 1e-9)
	assert.Equal(t, 900, f.rentals.lastQuery.SquareFootage)
}

func TestRentEstimate_RejectsBadInteger(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet,
		f.server.URL+"/api/v1/market/rent-estimate?bedrooms=two", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PARAMETER", env.Error.Code)
}

func TestUnderwrite_Baseline(t *testing.T) {
	f := newTestServer(t, nil)

	body, err := json.Marshal(baselinePayload())
	require.NoError(t, err)

	res, env := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/underwrite", body)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var m underwriting.DealMetrics
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.InDelta(t, 43_000_000, m.TotalProjectCost, 1e-6)
	assert.InDelta(t, 10_750_000, m.EquityRequired, 1e-6)
	assert.Len(t, m.AnnualCashFlows, 10)
}

func TestUnderwrite_SchemaRejectsMissingField(t *testing.T) {
	f := newTestServer(t, nil)

	payload := baselinePayload()
	delete(payload, "exitCapRate")
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	res, env := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/underwrite", body)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PAYLOAD", env.Error.Code)
}

func TestUnderwrite_EngineRejectsBadValue(t *testing.T) {
	f := newTestServer(t, nil)

	payload := baselinePayload()
	payload["exitCapRate"] = 0
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	res, env := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/underwrite", body)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PARAMETER", env.Error.Code)
}

func TestCreateDeal(t *testing.T) {
	f := newTestServer(t, nil)

	body, err := json.Marshal(map[string]interface{}{
		"name":       "Riverfront Commons",
		"location":   "Sacramento, CA",
		"parameters": baselinePayload(),
	})
	require.NoError(t, err)

	res, env := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/deals", body)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.True(t, env.Success)
	require.NotNil(t, f.deals.created)
	assert.Equal(t, "Riverfront Commons", f.deals.created.Name)
}

func TestCreateDeal_SchemaRequiresLocation(t *testing.T) {
	f := newTestServer(t, nil)

	body, err := json.Marshal(map[string]interface{}{
		"name":       "Riverfront Commons",
		"parameters": baselinePayload(),
	})
	require.NoError(t, err)

	res, env := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/deals", body)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PAYLOAD", env.Error.Code)
}

func TestGetDeal_InvalidID(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet, f.server.URL+"/api/v1/deals/abc", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PARAMETER", env.Error.Code)
}

func TestGetDeal_NotFound(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet, f.server.URL+"/api/v1/deals/404", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DEAL_NOT_FOUND", env.Error.Code)
}

func TestGroupedDeals_RouteBeatsIDWildcard(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet, f.server.URL+"/api/v1/deals/grouped", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var grouped map[string][]deals.Deal
	require.NoError(t, json.Unmarshal(env.Data, &grouped))
	assert.Len(t, grouped, 4)
}

func TestFundOverview(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet, f.server.URL+"/api/v1/funds/3/overview", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, env.Success)

	res, env = doJSON(t, http.MethodGet, f.server.URL+"/api/v1/funds/404/overview", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "FUND_NOT_FOUND", env.Error.Code)
}

func TestGPOverview_NotFound(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet, f.server.URL+"/api/v1/gps/404", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "GP_NOT_FOUND", env.Error.Code)
}

func TestListingSearch_ParsesFilters(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet,
		f.server.URL+"/api/v1/listings/search?city=Sacramento&minPrice=500000&maxPrice=2000000&minUnits=10&size=5", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, env.Success)

	assert.Equal(t, "Sacramento", f.listings.lastQuery.City)
	assert.InDelta(t, 500000, f.listings.lastQuery.MinPrice, 1e-9)
	assert.InDelta(t, 2000000, f.listings.lastQuery.MaxPrice, 1e-9)
	assert.Equal(t, 10, f.listings.lastQuery.MinUnits)
	assert.Equal(t, 5, f.listings.lastQuery.Size)
}

func TestDashboardMetrics(t *testing.T) {
	f := newTestServer(t, nil)

	res, env := doJSON(t, http.MethodGet, f.server.URL+"/api/v1/metrics/dashboard", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(env.Data), "15230")
}

func TestRateLimit(t *testing.T) {
	f := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	})

	var lastStatus int
	for i := 0; i < 3; i++ {
		res, _ := doJSON(t, http.MethodGet, f.server.URL+"/api/v1/ping", nil)
		lastStatus = res.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, lastStatus)
}

func TestPrometheusEndpoint(t *testing.T) {
	f := newTestServer(t, nil)

	// Generate at least one observation before scraping.
	_, _ = doJSON(t, http.MethodGet, f.server.URL+"/api/v1/ping", nil)

	payload, err := json.Marshal(baselinePayload())
	require.NoError(t, err)
	_, _ = doJSON(t, http.MethodPost, f.server.URL+"/api/v1/underwrite", payload)

	res, err := http.Get(fmt.Sprintf("%s/metrics", f.server.URL))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "api_http_requests_total")
	assert.Contains(t, string(body), "underwriting_irr_iterations")
	assert.Contains(t, string(body), `underwriting_runs_total{outcome="converged"}`)
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/config"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/observability"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/census"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/deals"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/fred"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/funds"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/listings"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/marketdata"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/rentcast"
)

// DemographicsService serves Census ACS lookups.
type DemographicsService interface {
	GetDemographics(ctx context.Context, zipcode string) (*census.Demographics, error)
	GetAMIRentLimit(ctx context.Context, zipcode string, amiPercent, bedrooms int) (*census.AMIRentLimit, error)
}

// RentalService serves RentCast rent and valuation lookups.
type RentalService interface {
	GetRentEstimate(ctx context.Context, q rentcast.EstimateQuery) (*rentcast.RentEstimate, error)
	GetMarketStatistics(ctx context.Context, zipcode, dataType string) (*rentcast.MarketStatistics, error)
	GetMarketTrends(ctx context.Context, zipcode string, months int, dataType string) ([]rentcast.MarketTrend, error)
	GetPropertyValuation(ctx context.Context, q rentcast.EstimateQuery) (*rentcast.PropertyValuation, error)
}

// EconomicService serves FRED macro data.
type EconomicService interface {
	GetMacroSnapshot(ctx context.Context) (*fred.MacroSnapshot, error)
	GetMortgageRateHistory(ctx context.Context, months int) ([]fred.TimeSeriesPoint, error)
}

// MarketContextService blends providers into one market view per ZIP.
type MarketContextService interface {
	GetMarketContext(ctx context.Context, zipcode string) (*marketdata.MarketContext, error)
}

// DealService owns the deal pipeline.
type DealService interface {
	Create(ctx context.Context, in deals.Input) (*deals.Deal, error)
	Get(ctx context.Context, id int64) (*deals.Deal, error)
	List(ctx context.Context, status string, limit int) ([]deals.Deal, error)
	Update(ctx context.Context, id int64, in deals.Input) (*deals.Deal, error)
	Delete(ctx context.Context, id int64) error
	GroupedByStatus(ctx context.Context) (map[deals.Status][]deals.Deal, error)
}

// FundService serves fund and GP dashboards.
type FundService interface {
	GetOverview(ctx context.Context, fundID int64) (*funds.Overview, error)
	GetCashFlows(ctx context.Context, fundID int64) ([]funds.CashFlow, funds.CashFlowSummary, error)
	GetGPOverview(ctx context.Context, gpID int64) (*funds.GPOverview, error)
}

// ListingService serves property search and dashboard aggregates.
type ListingService interface {
	Search(ctx context.Context, q listings.SearchQuery) (*listings.SearchResult, error)
	DashboardMetrics(ctx context.Context) listings.DashboardMetrics
}

// HealthCheck reports per-component health, keyed by component name.
type HealthCheck func(ctx context.Context) map[string]string

// Dependencies carries everything the server needs.
type Dependencies struct {
	Demographics DemographicsService
	Rentals      RentalService
	Economy      EconomicService
	Market       MarketContextService
	Deals        DealService
	Funds        FundService
	Listings     ListingService
	Health       HealthCheck
	Obs          *observability.Observability
}

// Server is the HTTP API.
type Server struct {
	app     config.AppConfig
	log     logger.Logger
	obs     *observability.Observability
	limiter *RateLimiter

	demographics DemographicsService
	rentals      RentalService
	economy      EconomicService
	market       MarketContextService
	deals        DealService
	funds        FundService
	listings     ListingService
	health       HealthCheck
}

func NewServer(cfg config.Config, deps Dependencies, log logger.Logger) *Server {
	s := &Server{
		app:          cfg.App,
		log:          log,
		obs:          deps.Obs,
		demographics: deps.Demographics,
		rentals:      deps.Rentals,
		economy:      deps.Economy,
		market:       deps.Market,
		deals:        deps.Deals,
		funds:        deps.Funds,
		listings:     deps.Listings,
		health:       deps.Health,
	}

	rl := cfg.Server.RateLimit
	if rl.Enabled && rl.RequestsPerMinute > 0 {
		// Burst tops up the bucket beyond the steady per-minute rate.
		s.limiter = NewRateLimiter(rl.RequestsPerMinute+rl.Burst, time.Minute)
	}
	return s
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// Routes builds the full handler chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/ping", s.handlePing)
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)

	mux.HandleFunc("GET /api/v1/demographics/{zipcode}", s.handleDemographics)
	mux.HandleFunc("GET /api/v1/demographics/{zipcode}/ami-rent", s.handleAMIRentLimit)
	mux.HandleFunc("POST /api/v1/demographics/batch", s.handleDemographicsBatch)

	mux.HandleFunc("GET /api/v1/market/rent-estimate", s.handleRentEstimate)
	mux.HandleFunc("GET /api/v1/market/statistics/{zipcode}", s.handleMarketStatistics)
	mux.HandleFunc("GET /api/v1/market/trends/{zipcode}", s.handleMarketTrends)
	mux.HandleFunc("GET /api/v1/market/valuation", s.handlePropertyValuation)
	mux.HandleFunc("GET /api/v1/market/context/{zipcode}", s.handleMarketContext)

	mux.HandleFunc("GET /api/v1/economy/snapshot", s.handleMacroSnapshot)
	mux.HandleFunc("GET /api/v1/economy/mortgage-rates", s.handleMortgageRates)

	mux.HandleFunc("POST /api/v1/underwrite", s.handleUnderwrite)

	mux.HandleFunc("POST /api/v1/deals", s.handleCreateDeal)
	mux.HandleFunc("GET /api/v1/deals", s.handleListDeals)
	mux.HandleFunc("GET /api/v1/deals/grouped", s.handleGroupedDeals)
	mux.HandleFunc("GET /api/v1/deals/{id}", s.handleGetDeal)
	mux.HandleFunc("PUT /api/v1/deals/{id}", s.handleUpdateDeal)
	mux.HandleFunc("DELETE /api/v1/deals/{id}", s.handleDeleteDeal)

	mux.HandleFunc("GET /api/v1/funds/{id}/overview", s.handleFundOverview)
	mux.HandleFunc("GET /api/v1/funds/{id}/cash-flows", s.handleFundCashFlows)
	mux.HandleFunc("GET /api/v1/gps/{id}", s.handleGPOverview)

	mux.HandleFunc("GET /api/v1/listings/search", s.handleListingSearch)
	mux.HandleFunc("GET /api/v1/metrics/dashboard", s.handleDashboardMetrics)

	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = s.rateLimitMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.requestIDMiddleware(handler)
	return handler
}

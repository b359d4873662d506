package funds

import (
	"context"
	"database/sql"
	"errors"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
)

const (
	quarterlyHistoryLimit = 8
	cashFlowQuarters      = 8
	recentActivityLimit   = 10
)

// Store is the persistence surface the service needs.
type Store interface {
	GetFund(ctx context.Context, fundID int64) (*Fund, error)
	GetLatestMetrics(ctx context.Context, fundID int64) (*Metrics, error)
	ListQuarterlyPerformance(ctx context.Context, fundID int64, limit int) ([]QuarterlyPerformance, error)
	ListStrategies(ctx context.Context, fundID int64) ([]Strategy, error)
	ListCashFlows(ctx context.Context, fundID int64, limit int) ([]CashFlow, error)
	ListBenchmarks(ctx context.Context, fundID int64) ([]Benchmark, error)
	ListActivities(ctx context.Context, fundID int64, limit int) ([]Activity, error)
	GetGP(ctx context.Context, gpID int64) (*GeneralPartner, error)
	ListGPQuarterlyPerformance(ctx context.Context, gpID int64, limit int) ([]GPQuarterlyPerformance, error)
	ListGPPortfolioSummary(ctx context.Context, gpID int64, year int) ([]GPPortfolioSummary, error)
}

// Service assembles the fund and GP dashboard payloads.
type Service struct {
	store Store
	log   logger.Logger
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// GetOverview returns everything the fund dashboard renders in one payload:
// the fund record, its latest metrics snapshot, quarterly IRR history,
// strategy sleeves, cash flows with totals, benchmarks and recent activity.
func (s *Service) GetOverview(ctx context.Context, fundID int64) (*Overview, error) {
	fund, err := s.store.GetFund(ctx, fundID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewFundNotFoundError(fundID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	metrics, err := s.store.GetLatestMetrics(ctx, fundID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	quarterly, err := s.store.ListQuarterlyPerformance(ctx, fundID, quarterlyHistoryLimit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	strategies, err := s.store.ListStrategies(ctx, fundID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	cashFlows, err := s.store.ListCashFlows(ctx, fundID, cashFlowQuarters)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	benchmarks, err := s.store.ListBenchmarks(ctx, fundID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	activities, err := s.store.ListActivities(ctx, fundID, recentActivityLimit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	return &Overview{
		Fund:                 fund,
		Metrics:              metrics,
		QuarterlyPerformance: quarterly,
		Strategies:           strategies,
		CashFlows:            cashFlows,
		CashFlowSummary:      summarizeCashFlows(cashFlows),
		Benchmarks:           benchmarks,
		RecentActivities:     activities,
	}, nil
}

// GetCashFlows returns the fund's quarterly cash flows with summary totals.
func (s *Service) GetCashFlows(ctx context.Context, fundID int64) ([]CashFlow, CashFlowSummary, error) {
	if _, err := s.store.GetFund(ctx, fundID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, CashFlowSummary{}, apperrors.NewFundNotFoundError(fundID)
		}
		return nil, CashFlowSummary{}, apperrors.NewDatabaseError(err)
	}

	cashFlows, err := s.store.ListCashFlows(ctx, fundID, cashFlowQuarters)
	if err != nil {
		return nil, CashFlowSummary{}, apperrors.NewDatabaseError(err)
	}
	return cashFlows, summarizeCashFlows(cashFlows), nil
}

// GetGPOverview returns the GP dashboard payload: the sponsor record, its
// quarterly IRR history and the latest year's portfolio quartile summary.
func (s *Service) GetGPOverview(ctx context.Context, gpID int64) (*GPOverview, error) {
	gp, err := s.store.GetGP(ctx, gpID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewGPNotFoundError(gpID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	quarterly, err := s.store.ListGPQuarterlyPerformance(ctx, gpID, quarterlyHistoryLimit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	summary, err := s.store.ListGPPortfolioSummary(ctx, gpID, 0)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	return &GPOverview{
		GP:                   gp,
		QuarterlyPerformance: quarterly,
		PortfolioSummary:     summary,
	}, nil
}

func summarizeCashFlows(flows []CashFlow) CashFlowSummary {
	var sum CashFlowSummary
	for _, cf := range flows {
		sum.TotalCapitalCalls += cf.CapitalCalls
		sum.TotalDistributions += cf.Distributions
		sum.CumulativeNetCash += cf.NetCashFlow
	}
	return sum
}

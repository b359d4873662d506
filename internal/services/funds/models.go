package funds

import "time"

// Fund is the basic fund record.
type Fund struct {
	ID                    int64      `json:"id"`
	Name                  string     `json:"fundName"`
	Size                  float64    `json:"fundSize"`
	VintageYear           int        `json:"vintageYear"`
	Status                string     `json:"status"`
	InvestmentPeriodStart *time.Time `json:"investmentPeriodStart,omitempty"`
	InvestmentPeriodEnd   *time.Time `json:"investmentPeriodEnd,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// Metrics is the latest performance snapshot for a fund.
type Metrics struct {
	FundID           int64     `json:"fundId"`
	AsOfDate         time.Time `json:"asOfDate"`
	DeployedCapital  float64   `json:"deployedCapital"`
	RemainingCapital float64   `json:"remainingCapital"`
	NetIRR           float64   `json:"netIrr"`
	TVPI             float64   `json:"tvpi"`
	DPI              float64   `json:"dpi"`
	TotalValue       float64   `json:"totalValue"`
}

// QuarterlyPerformance is one quarter of fund-level IRR history.
type QuarterlyPerformance struct {
	FundID       int64   `json:"fundId"`
	Year         int     `json:"year"`
	Quarter      int     `json:"quarter"`
	QuarterLabel string  `json:"quarterLabel"`
	IRR          float64 `json:"irr"`
}

// Strategy is one investment-strategy sleeve within a fund.
type Strategy struct {
	FundID            int64   `json:"fundId"`
	Name              string  `json:"strategyName"`
	DeployedCapital   float64 `json:"deployedCapital"`
	CurrentValue      float64 `json:"currentValue"`
	AllocationPercent float64 `json:"allocationPercent"`
	IRR               float64 `json:"irr"`
}

// CashFlow is one quarter of capital calls and distributions.
type CashFlow struct {
	FundID        int64   `json:"fundId"`
	Year          int     `json:"year"`
	Quarter       int     `json:"quarter"`
	QuarterLabel  string  `json:"quarterLabel"`
	CapitalCalls  float64 `json:"capitalCalls"`
	Distributions float64 `json:"distributions"`
	NetCashFlow   float64 `json:"netCashFlow"`
}

// CashFlowSummary totals the reported quarters.
type CashFlowSummary struct {
	TotalCapitalCalls  float64 `json:"totalCapitalCalls"`
	TotalDistributions float64 `json:"totalDistributions"`
	CumulativeNetCash  float64 `json:"cumulativeNetCash"`
}

// Activity is one fund-level transaction or event.
type Activity struct {
	FundID       int64     `json:"fundId"`
	ActivityDate time.Time `json:"activityDate"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	Status       string    `json:"status"`
	ActivityType string    `json:"activityType"`
}

// Benchmark compares one fund metric against its industry benchmark.
type Benchmark struct {
	FundID            int64     `json:"fundId"`
	MetricName        string    `json:"metricName"`
	FundValue         float64   `json:"fundValue"`
	IndustryBenchmark float64   `json:"industryBenchmark"`
	Outperformance    float64   `json:"outperformance"`
	AsOfDate          time.Time `json:"asOfDate"`
}

// Overview is the full dashboard payload for one fund.
type Overview struct {
	Fund                 *Fund                  `json:"fund"`
	Metrics              *Metrics               `json:"metrics"`
	QuarterlyPerformance []QuarterlyPerformance `json:"quarterlyPerformance"`
	Strategies           []Strategy             `json:"strategies"`
	CashFlows            []CashFlow             `json:"cashFlows"`
	CashFlowSummary      CashFlowSummary        `json:"cashFlowSummary"`
	Benchmarks           []Benchmark            `json:"benchmarks"`
	RecentActivities     []Activity             `json:"recentActivities"`
}

// GeneralPartner is a sponsor tracked on the platform.
type GeneralPartner struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Firm        string    `json:"firm"`
	FoundedYear int       `json:"foundedYear"`
	AUM         float64   `json:"aum"`
	FundCount   int       `json:"fundCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GPQuarterlyPerformance is one quarter of GP-level IRR history.
type GPQuarterlyPerformance struct {
	GPID         int64   `json:"gpId"`
	Year         int     `json:"year"`
	Quarter      int     `json:"quarter"`
	QuarterLabel string  `json:"quarterLabel"`
	IRR          float64 `json:"irr"`
}

// GPPortfolioSummary is one quartile bucket of a GP's portfolio for a year.
type GPPortfolioSummary struct {
	GPID      int64   `json:"gpId"`
	Year      int     `json:"year"`
	Quartile  int     `json:"quartile"`
	DealCount int     `json:"dealCount"`
	TotalAUM  float64 `json:"totalAum"`
	AvgIRR    float64 `json:"avgIrr"`
}

// GPOverview is the GP dashboard payload.
type GPOverview struct {
	GP                   *GeneralPartner          `json:"gp"`
	QuarterlyPerformance []GPQuarterlyPerformance `json:"quarterlyPerformance"`
	PortfolioSummary     []GPPortfolioSummary     `json:"portfolioSummary"`
}

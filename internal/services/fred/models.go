package fred

import "time"

// TimeSeriesPoint is one dated observation from a FRED series.
type TimeSeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// InterestRates holds the latest benchmark lending and treasury rates.
type InterestRates struct {
	FederalFundsRate float64 `json:"federalFundsRate"`
	PrimeRate        float64 `json:"primeRate"`
	Mortgage30Year   float64 `json:"mortgage30Year"`
	Mortgage15Year   float64 `json:"mortgage15Year"`
	Treasury10Year   float64 `json:"treasury10Year"`
	Treasury2Year    float64 `json:"treasury2Year"`
}

// Inflation holds the latest price-level readings.
type Inflation struct {
	CPIAllItems  float64 `json:"cpiAllItems"`
	CPIYoYChange float64 `json:"cpiYoyChange"`
	CoreCPI      float64 `json:"coreCpi"`
	PCEInflation float64 `json:"pceInflation"`
}

// HousingMarket holds national construction and sales indicators.
type HousingMarket struct {
	HousingStarts     int     `json:"housingStarts"`
	BuildingPermits   int     `json:"buildingPermits"`
	ExistingHomeSales int     `json:"existingHomeSales"`
	NewHomeSales      int     `json:"newHomeSales"`
	CaseShillerIndex  float64 `json:"caseShillerIndex"`
}

// EconomicIndicators holds broad-economy readings.
type EconomicIndicators struct {
	RealGDP                 float64 `json:"realGdp"`
	GDPGrowthRate           float64 `json:"gdpGrowthRate"`
	UnemploymentRate        float64 `json:"unemploymentRate"`
	LaborForceParticipation float64 `json:"laborForceParticipation"`
	ConsumerSentiment       float64 `json:"consumerSentiment"`
}

// MacroSnapshot is the full macroeconomic picture assembled from the
// individual FRED series.
type MacroSnapshot struct {
	InterestRates      InterestRates      `json:"interestRates"`
	Inflation          Inflation          `json:"inflation"`
	HousingMarket      HousingMarket      `json:"housingMarket"`
	EconomicIndicators EconomicIndicators `json:"economicIndicators"`
	LastUpdated        time.Time          `json:"lastUpdated"`
}

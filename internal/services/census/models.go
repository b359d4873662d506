package census

import "time"

// Population holds household counts for one ZIP code tabulation area.
type Population struct {
	TotalPopulation  int     `json:"totalPopulation"`
	TotalHouseholds  int     `json:"totalHouseholds"`
	AvgHouseholdSize float64 `json:"avgHouseholdSize"`
}

// Income holds the median income plus derived area-median-income thresholds.
// Distribution buckets are keyed by range label, e.g. "75k_100k".
type Income struct {
	MedianHouseholdIncome int            `json:"medianHouseholdIncome"`
	AMI30Percent          int            `json:"ami30Percent"`
	AMI50Percent          int            `json:"ami50Percent"`
	AMI60Percent          int            `json:"ami60Percent"`
	AMI80Percent          int            `json:"ami80Percent"`
	IncomeDistribution    map[string]int `json:"incomeDistribution"`
}

// Housing holds stock and occupancy characteristics.
type Housing struct {
	MedianHomeValue   int     `json:"medianHomeValue"`
	MedianGrossRent   int     `json:"medianGrossRent"`
	TotalHousingUnits int     `json:"totalHousingUnits"`
	OccupiedUnits     int     `json:"occupiedUnits"`
	VacantUnits       int     `json:"vacantUnits"`
	OwnerOccupied     int     `json:"ownerOccupied"`
	RenterOccupied    int     `json:"renterOccupied"`
	OccupancyRate     float64 `json:"occupancyRate"`
}

// Demographics is the complete ACS 5-year profile for one ZIP code.
type Demographics struct {
	Zipcode          string     `json:"zipcode"`
	Population       Population `json:"population"`
	Income           Income     `json:"income"`
	Housing          Housing    `json:"housing"`
	UnemploymentRate float64    `json:"unemploymentRate"`
	DataYear         string     `json:"dataYear"`
	LastUpdated      time.Time  `json:"lastUpdated"`
}

// AMIRentLimit is an affordability rent ceiling derived from the area median
// income at a given percentage tier.
type AMIRentLimit struct {
	Zipcode          string `json:"zipcode"`
	AMIPercent       int    `json:"amiPercent"`
	AMIIncomeLimit   int    `json:"amiIncomeLimit"`
	MaxMonthlyRent   int    `json:"maxRent"`
	AreaMedianIncome int    `json:"areaMedianIncome"`
	Bedrooms         int    `json:"bedrooms"`
}

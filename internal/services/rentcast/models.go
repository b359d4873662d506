package rentcast

import "time"

// RentEstimate is a long-term rent AVM result for one property.
type RentEstimate struct {
	Address        string    `json:"address"`
	Zipcode        string    `json:"zipcode"`
	Bedrooms       int       `json:"bedrooms"`
	Bathrooms      float64   `json:"bathrooms"`
	SquareFootage  int       `json:"squareFootage"`
	EstimatedRent  float64   `json:"estimatedRent"`
	RentRangeLow   float64   `json:"rentRangeLow"`
	RentRangeHigh  float64   `json:"rentRangeHigh"`
	PricePerSqft   float64   `json:"pricePerSqft"`
	PropertyType   string    `json:"propertyType"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// Comparable is one rental listing near the subject property.
type Comparable struct {
	Address       string  `json:"address"`
	DistanceMiles float64 `json:"distanceMiles"`
	Bedrooms      int     `json:"bedrooms"`
	Bathrooms     float64 `json:"bathrooms"`
	SquareFootage int     `json:"squareFootage"`
	ListedRent    float64 `json:"listedRent"`
	PricePerSqft  float64 `json:"pricePerSqft"`
	PropertyType  string  `json:"propertyType"`
	DaysOnMarket  int     `json:"daysOnMarket"`
	ListingURL    string  `json:"listingUrl"`
}

// MarketStatistics is the current-month rental snapshot for a ZIP code.
type MarketStatistics struct {
	Zipcode          string    `json:"zipcode"`
	DataMonth        string    `json:"dataMonth"`
	AvgRent          float64   `json:"avgRent"`
	MedianRent       float64   `json:"medianRent"`
	AvgRent1Bed      float64   `json:"avgRent1Bed"`
	AvgRent2Bed      float64   `json:"avgRent2Bed"`
	AvgRent3Bed      float64   `json:"avgRent3Bed"`
	AvgRent4Bed      float64   `json:"avgRent4Bed"`
	TotalListings    int       `json:"totalListings"`
	AvgDaysOnMarket  float64   `json:"avgDaysOnMarket"`
	InventoryLevel   string    `json:"inventoryLevel"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// MarketTrend is one month of rental history for a ZIP code.
type MarketTrend struct {
	Date         string  `json:"date"`
	AvgRent      float64 `json:"avgRent"`
	MedianRent   float64 `json:"medianRent"`
	ListingCount int     `json:"listingCount"`
}

// PropertyValuation bundles the estimate, nearby comparables and the ZIP
// market snapshot into one response.
type PropertyValuation struct {
	RentEstimate *RentEstimate     `json:"rentEstimate"`
	Comparables  []Comparable      `json:"comparables"`
	MarketStats  *MarketStatistics `json:"marketStats,omitempty"`
	LastUpdated  time.Time         `json:"lastUpdated"`
}

package listings

import "time"

// Listing is one scraped property offering. Listings are produced offline by
// the scraping pipeline and indexed here for search.
type Listing struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Zipcode      string    `json:"zipcode"`
	Price        float64   `json:"price"`
	TotalUnits   int       `json:"totalUnits"`
	PropertyType string    `json:"propertyType"`
	Source       string    `json:"source"`
	ScrapedAt    time.Time `json:"scrapedAt"`
}

// SearchQuery is the listing search surface exposed by the API.
type SearchQuery struct {
	Keywords string  `json:"keywords"`
	City     string  `json:"city"`
	Zipcode  string  `json:"zipcode"`
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
	MinUnits int     `json:"minUnits"`
	From     int     `json:"from"`
	Size     int     `json:"size"`
}

// SearchResult is a page of listings with hit metadata.
type SearchResult struct {
	Listings  []Listing `json:"listings"`
	TotalHits int64     `json:"totalHits"`
	Took      int64     `json:"tookMs"`
}

// MarketInsights holds the aggregate market figures shown on the dashboard.
type MarketInsights struct {
	AvgAMIServed     float64 `json:"avgAmiServed"`
	TotalMarkets     int     `json:"totalMarkets"`
	AvgMarketIncome  float64 `json:"avgMarketIncome"`
	AvgOccupancyRate float64 `json:"avgOccupancyRate"`
	AvgMedianRent    float64 `json:"avgMedianRent"`
}

// DashboardMetrics is the headline payload for the frontend dashboard.
type DashboardMetrics struct {
	TotalAffordableUnits int            `json:"totalAffordableUnits"`
	FamiliesHoused       int            `json:"familiesHoused"`
	MarketInsights       MarketInsights `json:"marketInsights"`
}

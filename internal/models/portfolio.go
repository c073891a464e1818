package models

import "time"

// PortfolioEntry is a single owned position in the user's portfolio.
// Ranking is a 0-5 conviction scale, 0 meaning unranked.
type PortfolioEntry struct {
	Ticker    string    `json:"ticker" badgerhold:"key"`
	Notes     string    `json:"notes"`
	Ranking   int       `json:"ranking"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PortfolioPosition is a portfolio entry enriched with the stored
// snapshot and growth metrics for display.
type PortfolioPosition struct {
	Entry    PortfolioEntry `json:"entry"`
	Snapshot *StockSnapshot `json:"snapshot,omitempty"`
	Metrics  *GrowthMetrics `json:"metrics,omitempty"`
}

// Package interfaces defines service contracts for Fathom
package interfaces

import (
	"context"

	"github.com/bobmcallan/fathom/internal/models"
)

// StockService manages fundamental data collection and growth analytics
type StockService interface {
	// RefreshStock fetches fundamentals, financial history, and prices for
	// one ticker, recomputes growth metrics, and stores everything.
	// When force is true data is re-fetched regardless of freshness.
	RefreshStock(ctx context.Context, ticker string, force bool) (*models.StockSnapshot, error)

	// RefreshList refreshes every ticker of a curated list or watchlist
	RefreshList(ctx context.Context, listKey string, force bool) (*models.RefreshJob, error)

	// GetStock retrieves the stored snapshot plus computed metrics
	GetStock(ctx context.Context, ticker string) (*models.StockSnapshot, *models.GrowthMetrics, error)

	// ListStocks returns all stored snapshots
	ListStocks(ctx context.Context) ([]*models.StockSnapshot, error)

	// DeleteStock removes a ticker and all its derived data
	DeleteStock(ctx context.Context, ticker string) error
}

// TechnicalService computes and caches price-derived technicals
type TechnicalService interface {
	// Analyze runs the full technical analysis for a ticker, refreshing
	// prices first when stale
	Analyze(ctx context.Context, ticker string, force bool) (*models.TechnicalSnapshot, error)

	// GetSnapshot returns the cached analysis without recomputing
	GetSnapshot(ctx context.Context, ticker string) (*models.TechnicalSnapshot, error)

	// RenderChart renders a PNG price chart with support/resistance overlays
	RenderChart(ctx context.Context, ticker string, days int) ([]byte, error)
}

// ForecastService runs price forecasting models
type ForecastService interface {
	// Forecast runs forecasting models for a ticker. A zero options value
	// runs every model over the default horizon.
	Forecast(ctx context.Context, ticker string, options ForecastOptions) (*models.ForecastReport, error)
}

// ForecastOptions selects a model and overrides its parameters. Nil fields
// fall back to snapshot-derived defaults; explicit zeros are honored.
type ForecastOptions struct {
	Model          string // "", "earnings", "revenue", "dcf", "monte_carlo", "scenarios"
	Years          int
	EarningsGrowth *float64
	GrowthDecay    *float64
	TerminalPE     *float64
	RevenueGrowth  *float64
	RevenueDecay   *float64
	TerminalPS     *float64
	TargetMargin   *float64
	FCFGrowth      *float64
	DiscountRate   *float64
	TerminalGrowth *float64
	ExpectedReturn *float64
	Volatility     *float64
	Simulations    int
}

// MacroService manages macro data and the market-regime dashboard
type MacroService interface {
	// RefreshMacro fetches all FRED series and rebuilds the macro report
	RefreshMacro(ctx context.Context, force bool) (*models.MacroReport, error)

	// GetReport returns the cached macro report
	GetReport(ctx context.Context) (*models.MacroReport, error)
}

// ScreenService filters stored stocks by valuation criteria
type ScreenService interface {
	// Screen returns stocks matching a named screen
	Screen(ctx context.Context, options ScreenOptions) ([]*models.StockSnapshot, error)
}

// ScreenOptions configures a stock screen
type ScreenOptions struct {
	Screen string  // "value", "near_value", "growth", "high_risk"
	MaxPE  float64 // Maximum P/E ratio (default 20)
	MaxPS  float64 // Maximum P/S ratio (default 3)
	Limit  int     // Max results to return
}

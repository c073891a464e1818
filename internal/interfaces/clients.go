// Package interfaces defines service contracts for Fathom
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

// YahooClient provides access to Yahoo Finance market data
type YahooClient interface {
	// GetSnapshot retrieves current fundamentals for a ticker
	GetSnapshot(ctx context.Context, ticker string) (*models.StockSnapshot, error)

	// GetFinancials retrieves historical financial statements
	GetFinancials(ctx context.Context, ticker string, periodType models.PeriodType) ([]*models.FinancialRecord, error)

	// GetPriceHistory retrieves daily OHLCV bars
	GetPriceHistory(ctx context.Context, ticker string, opts ...HistoryOption) ([]models.PriceBar, error)
}

// HistoryOption configures price history requests
type HistoryOption func(*HistoryParams)

// HistoryParams holds price history query parameters
type HistoryParams struct {
	From     time.Time
	To       time.Time
	Interval string // 1d, 1wk, 1mo
}

// WithDateRange sets the date range for the history query
func WithDateRange(from, to time.Time) HistoryOption {
	return func(p *HistoryParams) {
		p.From = from
		p.To = to
	}
}

// WithInterval sets the bar interval for the history query
func WithInterval(interval string) HistoryOption {
	return func(p *HistoryParams) {
		p.Interval = interval
	}
}

// FREDClient provides access to Federal Reserve economic data series
type FREDClient interface {
	// GetSeries retrieves observations for a series, oldest first
	GetSeries(ctx context.Context, seriesID string, since time.Time) ([]models.SeriesPoint, error)

	// GetLatest retrieves the most recent observation for a series
	GetLatest(ctx context.Context, seriesID string) (*models.SeriesPoint, error)
}

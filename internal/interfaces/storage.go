// Package interfaces defines service contracts for Fathom
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	StockStore() StockStore
	FinancialStore() FinancialStore
	PriceStore() PriceStore
	MetricsStore() MetricsStore
	TechnicalStore() TechnicalStore
	MacroStore() MacroStore
	WatchlistStore() WatchlistStore
	PortfolioStore() PortfolioStore
	JobStore() JobStore

	// DataPath returns the base data directory path
	DataPath() string

	// WriteRaw writes arbitrary binary data (e.g. rendered charts) to a
	// subdirectory atomically. Key is sanitized for safe filenames.
	WriteRaw(subdir, key string, data []byte) error

	// Lifecycle
	Close() error
}

// StockStore manages current fundamental snapshots, one per ticker
type StockStore interface {
	GetSnapshot(ctx context.Context, ticker string) (*models.StockSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.StockSnapshot) error
	DeleteSnapshot(ctx context.Context, ticker string) error
	ListSnapshots(ctx context.Context) ([]*models.StockSnapshot, error)
	ListTickers(ctx context.Context) ([]string, error)
}

// FinancialStore manages historical financial records keyed by
// (ticker, period end date, period type)
type FinancialStore interface {
	GetRecords(ctx context.Context, ticker string, periodType models.PeriodType) ([]*models.FinancialRecord, error)
	SaveRecords(ctx context.Context, ticker string, records []*models.FinancialRecord) error
	DeleteRecords(ctx context.Context, ticker string) error
}

// PriceStore manages daily OHLCV history per ticker
type PriceStore interface {
	GetBars(ctx context.Context, ticker string, since time.Time) ([]models.PriceBar, error)
	SaveBars(ctx context.Context, ticker string, bars []models.PriceBar) error
	DeleteBars(ctx context.Context, ticker string) error
	LatestBarDate(ctx context.Context, ticker string) (time.Time, error)
}

// MetricsStore manages computed growth metrics, one per ticker
type MetricsStore interface {
	GetMetrics(ctx context.Context, ticker string) (*models.GrowthMetrics, error)
	SaveMetrics(ctx context.Context, metrics *models.GrowthMetrics) error
	DeleteMetrics(ctx context.Context, ticker string) error
	ListMetrics(ctx context.Context) ([]*models.GrowthMetrics, error)
}

// TechnicalStore manages cached technical analysis snapshots
type TechnicalStore interface {
	GetSnapshot(ctx context.Context, ticker string) (*models.TechnicalSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.TechnicalSnapshot) error
	DeleteSnapshot(ctx context.Context, ticker string) error
}

// MacroStore manages FRED series history and the cached macro report
type MacroStore interface {
	GetSeries(ctx context.Context, seriesID string) (*models.MacroSeries, error)
	SaveSeries(ctx context.Context, series *models.MacroSeries) error
	GetReport(ctx context.Context) (*models.MacroReport, error)
	SaveReport(ctx context.Context, report *models.MacroReport) error
}

// WatchlistStore manages user-curated ticker groups
type WatchlistStore interface {
	GetWatchlist(ctx context.Context, name string) (*models.Watchlist, error)
	SaveWatchlist(ctx context.Context, watchlist *models.Watchlist) error
	DeleteWatchlist(ctx context.Context, name string) error
	ListWatchlists(ctx context.Context) ([]*models.Watchlist, error)
}

// PortfolioStore manages the user's owned positions with notes and ranking
type PortfolioStore interface {
	GetEntry(ctx context.Context, ticker string) (*models.PortfolioEntry, error)
	SaveEntry(ctx context.Context, entry *models.PortfolioEntry) error
	DeleteEntry(ctx context.Context, ticker string) error
	ListEntries(ctx context.Context) ([]*models.PortfolioEntry, error)
}

// JobStore records refresh job runs
type JobStore interface {
	SaveJob(ctx context.Context, job *models.RefreshJob) error
	GetJob(ctx context.Context, id string) (*models.RefreshJob, error)
	ListJobs(ctx context.Context, limit int) ([]*models.RefreshJob, error)
}

// Package stock orchestrates fundamental data collection and growth analytics
package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/fathom/internal/analytics"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
	"github.com/google/uuid"
)

// priceHistoryYears is how far back the initial price fetch reaches.
// Incremental refreshes only request bars after the latest stored date.
const priceHistoryYears = 2

// Service implements StockService on top of the Yahoo client and storage.
type Service struct {
	yahoo   interfaces.YahooClient
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new stock service.
func NewService(yahoo interfaces.YahooClient, storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		yahoo:   yahoo,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// RefreshStock fetches fundamentals, statements, and prices for one ticker,
// recomputes the derived metrics, and persists everything. A snapshot fresher
// than its TTL short-circuits the whole pipeline unless force is set.
func (s *Service) RefreshStock(ctx context.Context, ticker string, force bool) (*models.StockSnapshot, error) {
	ticker = normalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	if !force {
		existing, err := s.storage.StockStore().GetSnapshot(ctx, ticker)
		if err == nil && s.now().Sub(existing.LastUpdated) < common.FreshnessSnapshot {
			s.logger.Debug().Str("ticker", ticker).Msg("Snapshot fresh, skipping refresh")
			return existing, nil
		}
	}

	s.logger.Info().Str("ticker", ticker).Bool("force", force).Msg("Refreshing stock")

	snapshot, err := s.yahoo.GetSnapshot(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot for %s: %w", ticker, err)
	}

	if err := s.refreshFinancials(ctx, ticker); err != nil {
		// Statements are best-effort: a fresh snapshot with stale statements
		// beats no refresh at all.
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Financial statement refresh failed")
	}

	if err := s.refreshPrices(ctx, ticker); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Price refresh failed")
	}

	metrics, err := s.computeMetrics(ctx, snapshot)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Metrics computation failed")
	}

	snapshot.BubbleScore = analytics.BubbleScore(snapshot)
	snapshot.RiskLevel = analytics.RiskLevel(snapshot.BubbleScore)
	snapshot.LastUpdated = s.now().UTC()

	if err := s.storage.StockStore().SaveSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	if metrics != nil {
		if err := s.storage.MetricsStore().SaveMetrics(ctx, metrics); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("ticker", ticker).
		Int("bubble_score", snapshot.BubbleScore).
		Str("risk", snapshot.RiskLevel).
		Msg("Stock refreshed")
	return snapshot, nil
}

// refreshFinancials fetches both reporting cadences and merges them into the
// stored history.
func (s *Service) refreshFinancials(ctx context.Context, ticker string) error {
	for _, periodType := range []models.PeriodType{models.PeriodQuarterly, models.PeriodAnnual} {
		records, err := s.yahoo.GetFinancials(ctx, ticker, periodType)
		if err != nil {
			return fmt.Errorf("failed to fetch %s statements: %w", periodType, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := s.storage.FinancialStore().SaveRecords(ctx, ticker, records); err != nil {
			return err
		}
	}
	return nil
}

// refreshPrices fetches bars incrementally from the latest stored date, or the
// full lookback window for a new ticker.
func (s *Service) refreshPrices(ctx context.Context, ticker string) error {
	latest, err := s.storage.PriceStore().LatestBarDate(ctx, ticker)
	if err != nil {
		return err
	}

	from := s.now().AddDate(-priceHistoryYears, 0, 0)
	if !latest.IsZero() {
		if s.now().Sub(latest) < common.FreshnessPrices {
			return nil
		}
		from = latest.AddDate(0, 0, 1)
	}

	bars, err := s.yahoo.GetPriceHistory(ctx, ticker, interfaces.WithDateRange(from, s.now()))
	if err != nil {
		return fmt.Errorf("failed to fetch price history: %w", err)
	}
	if len(bars) == 0 {
		return nil
	}
	return s.storage.PriceStore().SaveBars(ctx, ticker, bars)
}

// computeMetrics runs the growth analyzer over all stored statements.
func (s *Service) computeMetrics(ctx context.Context, snapshot *models.StockSnapshot) (*models.GrowthMetrics, error) {
	quarterly, err := s.storage.FinancialStore().GetRecords(ctx, snapshot.Ticker, models.PeriodQuarterly)
	if err != nil {
		return nil, err
	}
	annual, err := s.storage.FinancialStore().GetRecords(ctx, snapshot.Ticker, models.PeriodAnnual)
	if err != nil {
		return nil, err
	}

	records := make([]*models.FinancialRecord, 0, len(quarterly)+len(annual))
	records = append(records, quarterly...)
	records = append(records, annual...)
	if len(records) == 0 {
		return nil, nil
	}

	analyzer := analytics.NewGrowthAnalyzer(records)
	metrics := analyzer.Analyze(analytics.AnalyzeOptions{
		Ticker:                 snapshot.Ticker,
		PERatio:                snapshot.PERatio,
		CurrentFCF:             snapshot.FreeCashFlow,
		CurrentRevenue:         snapshot.Revenue,
		ProviderEarningsGrowth: snapshot.EarningsGrowth,
	})
	return metrics, nil
}

// RefreshList refreshes every ticker of a curated list or stored watchlist,
// recording the outcome as a job. Individual ticker failures do not abort the
// run.
func (s *Service) RefreshList(ctx context.Context, listKey string, force bool) (*models.RefreshJob, error) {
	tickers, err := s.resolveList(ctx, listKey)
	if err != nil {
		return nil, err
	}

	job := &models.RefreshJob{
		ID:        uuid.NewString(),
		Kind:      "list",
		Target:    listKey,
		StartedAt: s.now().UTC(),
	}

	var firstErr error
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			firstErr = ctx.Err()
			break
		}
		if _, err := s.RefreshStock(ctx, ticker, force); err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Ticker refresh failed")
			job.Failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		job.Succeeded++
	}

	job.CompletedAt = s.now().UTC()
	if firstErr != nil {
		job.Error = firstErr.Error()
	}
	if err := s.storage.JobStore().SaveJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("list", listKey).
		Int("succeeded", job.Succeeded).
		Int("failed", job.Failed).
		Msg("List refresh completed")
	return job, nil
}

// resolveList maps a list key to tickers, trying curated lists first and then
// stored watchlists.
func (s *Service) resolveList(ctx context.Context, listKey string) ([]string, error) {
	if list := models.GetList(listKey); list != nil {
		return list.Tickers, nil
	}
	watchlist, err := s.storage.WatchlistStore().GetWatchlist(ctx, listKey)
	if err != nil {
		return nil, fmt.Errorf("unknown list '%s'", listKey)
	}
	return watchlist.Tickers, nil
}

// GetStock retrieves the stored snapshot and metrics. Metrics may be nil when
// no statements have been collected yet.
func (s *Service) GetStock(ctx context.Context, ticker string) (*models.StockSnapshot, *models.GrowthMetrics, error) {
	ticker = normalizeTicker(ticker)
	snapshot, err := s.storage.StockStore().GetSnapshot(ctx, ticker)
	if err != nil {
		return nil, nil, err
	}
	metrics, err := s.storage.MetricsStore().GetMetrics(ctx, ticker)
	if err != nil {
		metrics = nil
	}
	return snapshot, metrics, nil
}

// ListStocks returns all stored snapshots.
func (s *Service) ListStocks(ctx context.Context) ([]*models.StockSnapshot, error) {
	return s.storage.StockStore().ListSnapshots(ctx)
}

// DeleteStock removes a ticker and all derived data.
func (s *Service) DeleteStock(ctx context.Context, ticker string) error {
	ticker = normalizeTicker(ticker)
	if err := s.storage.StockStore().DeleteSnapshot(ctx, ticker); err != nil {
		return err
	}
	if err := s.storage.FinancialStore().DeleteRecords(ctx, ticker); err != nil {
		return err
	}
	if err := s.storage.PriceStore().DeleteBars(ctx, ticker); err != nil {
		return err
	}
	if err := s.storage.MetricsStore().DeleteMetrics(ctx, ticker); err != nil {
		return err
	}
	if err := s.storage.TechnicalStore().DeleteSnapshot(ctx, ticker); err != nil {
		return err
	}
	s.logger.Info().Str("ticker", ticker).Msg("Stock deleted")
	return nil
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Ensure Service implements StockService
var _ interfaces.StockService = (*Service)(nil)

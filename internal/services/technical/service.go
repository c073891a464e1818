// Package technical computes and caches price-derived technical analysis
package technical

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/fathom/internal/analytics"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// analysisLookbackDays is how much history feeds the analyzer. One year
// comfortably covers the 90-day trend window and 20-day pivot clustering.
const analysisLookbackDays = 365

// Service implements TechnicalService on top of the price store.
type Service struct {
	yahoo   interfaces.YahooClient
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new technical analysis service.
func NewService(yahoo interfaces.YahooClient, storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		yahoo:   yahoo,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Analyze recomputes the full technical snapshot for a ticker. A cached
// snapshot within its TTL is returned as-is unless force is set.
func (s *Service) Analyze(ctx context.Context, ticker string, force bool) (*models.TechnicalSnapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	if !force {
		cached, err := s.storage.TechnicalStore().GetSnapshot(ctx, ticker)
		if err == nil && s.now().Sub(cached.LastCalculated) < common.FreshnessTechnical {
			return cached, nil
		}
	}

	bars, err := s.loadBars(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no price history for %s", ticker)
	}

	snapshot := analytics.NewTechnicalAnalyzer(bars).Analyze(ticker)
	if snapshot == nil {
		return nil, fmt.Errorf("no price history for %s", ticker)
	}

	if err := s.storage.TechnicalStore().SaveSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("ticker", ticker).
		Int("bars", snapshot.DataPoints).
		Msg("Technical analysis computed")
	return snapshot, nil
}

// loadBars returns the analysis window of bars, fetching from Yahoo when the
// store is empty or stale.
func (s *Service) loadBars(ctx context.Context, ticker string) ([]models.PriceBar, error) {
	since := s.now().AddDate(0, 0, -analysisLookbackDays)

	latest, err := s.storage.PriceStore().LatestBarDate(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if latest.IsZero() || s.now().Sub(latest) > common.FreshnessPrices {
		from := since
		if !latest.IsZero() {
			from = latest.AddDate(0, 0, 1)
		}
		bars, err := s.yahoo.GetPriceHistory(ctx, ticker, interfaces.WithDateRange(from, s.now()))
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Price fetch failed, using stored bars")
		} else if len(bars) > 0 {
			if err := s.storage.PriceStore().SaveBars(ctx, ticker, bars); err != nil {
				return nil, err
			}
		}
	}

	return s.storage.PriceStore().GetBars(ctx, ticker, since)
}

// GetSnapshot returns the cached analysis without recomputing.
func (s *Service) GetSnapshot(ctx context.Context, ticker string) (*models.TechnicalSnapshot, error) {
	return s.storage.TechnicalStore().GetSnapshot(ctx, strings.ToUpper(strings.TrimSpace(ticker)))
}

// Ensure Service implements TechnicalService
var _ interfaces.TechnicalService = (*Service)(nil)

package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// priceHistory is the persisted document of daily bars for one ticker.
// Bars are kept sorted ascending by date with one bar per day.
type priceHistory struct {
	Ticker string `badgerhold:"key"`
	Bars   []models.PriceBar
}

type priceStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPriceStorage creates a new PriceStore backed by BadgerHold.
func NewPriceStorage(store *Store, logger *common.Logger) *priceStorage {
	return &priceStorage{store: store, logger: logger}
}

func (s *priceStorage) getHistory(ticker string) (*priceHistory, error) {
	var history priceHistory
	err := s.store.db.Get(ticker, &history)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get price history for '%s': %w", ticker, err)
	}
	return &history, nil
}

func (s *priceStorage) GetBars(_ context.Context, ticker string, since time.Time) ([]models.PriceBar, error) {
	history, err := s.getHistory(ticker)
	if err != nil || history == nil {
		return nil, err
	}
	if since.IsZero() {
		return history.Bars, nil
	}
	// Bars are sorted ascending, find the first bar on or after since.
	idx := sort.Search(len(history.Bars), func(i int) bool {
		return !history.Bars[i].Date.Before(since)
	})
	return history.Bars[idx:], nil
}

func (s *priceStorage) SaveBars(_ context.Context, ticker string, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	history, err := s.getHistory(ticker)
	if err != nil {
		return err
	}
	if history == nil {
		history = &priceHistory{Ticker: ticker}
	}

	byDate := make(map[string]models.PriceBar, len(history.Bars)+len(bars))
	for _, bar := range history.Bars {
		byDate[bar.Date.Format("2006-01-02")] = bar
	}
	for _, bar := range bars {
		byDate[bar.Date.Format("2006-01-02")] = bar
	}

	merged := make([]models.PriceBar, 0, len(byDate))
	for _, bar := range byDate {
		merged = append(merged, bar)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	history.Bars = merged

	if err := s.store.db.Upsert(ticker, history); err != nil {
		return fmt.Errorf("failed to save price history for '%s': %w", ticker, err)
	}
	s.logger.Debug().Str("ticker", ticker).Int("bars", len(merged)).Msg("Price history saved")
	return nil
}

func (s *priceStorage) DeleteBars(_ context.Context, ticker string) error {
	err := s.store.db.Delete(ticker, priceHistory{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete price history for '%s': %w", ticker, err)
	}
	s.logger.Debug().Str("ticker", ticker).Msg("Price history deleted")
	return nil
}

func (s *priceStorage) LatestBarDate(_ context.Context, ticker string) (time.Time, error) {
	history, err := s.getHistory(ticker)
	if err != nil {
		return time.Time{}, err
	}
	if history == nil || len(history.Bars) == 0 {
		return time.Time{}, nil
	}
	return history.Bars[len(history.Bars)-1].Date, nil
}

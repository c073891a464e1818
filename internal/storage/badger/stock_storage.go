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

type stockStorage struct {
	store  *Store
	logger *common.Logger
}

// NewStockStorage creates a new StockStore backed by BadgerHold.
func NewStockStorage(store *Store, logger *common.Logger) *stockStorage {
	return &stockStorage{store: store, logger: logger}
}

func (s *stockStorage) GetSnapshot(_ context.Context, ticker string) (*models.StockSnapshot, error) {
	var snapshot models.StockSnapshot
	err := s.store.db.Get(ticker, &snapshot)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("stock '%s' not found", ticker)
		}
		return nil, fmt.Errorf("failed to get stock '%s': %w", ticker, err)
	}
	return &snapshot, nil
}

func (s *stockStorage) SaveSnapshot(_ context.Context, snapshot *models.StockSnapshot) error {
	if snapshot.LastUpdated.IsZero() {
		snapshot.LastUpdated = time.Now().UTC()
	}
	if err := s.store.db.Upsert(snapshot.Ticker, snapshot); err != nil {
		return fmt.Errorf("failed to save stock '%s': %w", snapshot.Ticker, err)
	}
	s.logger.Debug().Str("ticker", snapshot.Ticker).Msg("Stock snapshot saved")
	return nil
}

func (s *stockStorage) DeleteSnapshot(_ context.Context, ticker string) error {
	err := s.store.db.Delete(ticker, models.StockSnapshot{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete stock '%s': %w", ticker, err)
	}
	s.logger.Debug().Str("ticker", ticker).Msg("Stock snapshot deleted")
	return nil
}

func (s *stockStorage) ListSnapshots(_ context.Context) ([]*models.StockSnapshot, error) {
	var snapshots []models.StockSnapshot
	if err := s.store.db.Find(&snapshots, nil); err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	result := make([]*models.StockSnapshot, len(snapshots))
	for i := range snapshots {
		result[i] = &snapshots[i]
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Ticker < result[j].Ticker })
	return result, nil
}

func (s *stockStorage) ListTickers(ctx context.Context) ([]string, error) {
	snapshots, err := s.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	tickers := make([]string, len(snapshots))
	for i, snap := range snapshots {
		tickers[i] = snap.Ticker
	}
	return tickers, nil
}

package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type metricsStorage struct {
	store  *Store
	logger *common.Logger
}

// NewMetricsStorage creates a new MetricsStore backed by BadgerHold.
func NewMetricsStorage(store *Store, logger *common.Logger) *metricsStorage {
	return &metricsStorage{store: store, logger: logger}
}

func (s *metricsStorage) GetMetrics(_ context.Context, ticker string) (*models.GrowthMetrics, error) {
	var metrics models.GrowthMetrics
	err := s.store.db.Get(ticker, &metrics)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("metrics for '%s' not found", ticker)
		}
		return nil, fmt.Errorf("failed to get metrics for '%s': %w", ticker, err)
	}
	return &metrics, nil
}

func (s *metricsStorage) SaveMetrics(_ context.Context, metrics *models.GrowthMetrics) error {
	if err := s.store.db.Upsert(metrics.Ticker, metrics); err != nil {
		return fmt.Errorf("failed to save metrics for '%s': %w", metrics.Ticker, err)
	}
	s.logger.Debug().Str("ticker", metrics.Ticker).Msg("Growth metrics saved")
	return nil
}

func (s *metricsStorage) DeleteMetrics(_ context.Context, ticker string) error {
	err := s.store.db.Delete(ticker, models.GrowthMetrics{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete metrics for '%s': %w", ticker, err)
	}
	s.logger.Debug().Str("ticker", ticker).Msg("Growth metrics deleted")
	return nil
}

func (s *metricsStorage) ListMetrics(_ context.Context) ([]*models.GrowthMetrics, error) {
	var metrics []models.GrowthMetrics
	if err := s.store.db.Find(&metrics, nil); err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	result := make([]*models.GrowthMetrics, len(metrics))
	for i := range metrics {
		result[i] = &metrics[i]
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Ticker < result[j].Ticker })
	return result, nil
}

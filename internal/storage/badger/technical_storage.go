package badger

import (
	"context"
	"fmt"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type technicalStorage struct {
	store  *Store
	logger *common.Logger
}

// NewTechnicalStorage creates a new TechnicalStore backed by BadgerHold.
func NewTechnicalStorage(store *Store, logger *common.Logger) *technicalStorage {
	return &technicalStorage{store: store, logger: logger}
}

func (s *technicalStorage) GetSnapshot(_ context.Context, ticker string) (*models.TechnicalSnapshot, error) {
	var snapshot models.TechnicalSnapshot
	err := s.store.db.Get(ticker, &snapshot)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("technical analysis for '%s' not found", ticker)
		}
		return nil, fmt.Errorf("failed to get technical analysis for '%s': %w", ticker, err)
	}
	return &snapshot, nil
}

func (s *technicalStorage) SaveSnapshot(_ context.Context, snapshot *models.TechnicalSnapshot) error {
	if err := s.store.db.Upsert(snapshot.Ticker, snapshot); err != nil {
		return fmt.Errorf("failed to save technical analysis for '%s': %w", snapshot.Ticker, err)
	}
	s.logger.Debug().Str("ticker", snapshot.Ticker).Msg("Technical snapshot saved")
	return nil
}

func (s *technicalStorage) DeleteSnapshot(_ context.Context, ticker string) error {
	err := s.store.db.Delete(ticker, models.TechnicalSnapshot{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete technical analysis for '%s': %w", ticker, err)
	}
	s.logger.Debug().Str("ticker", ticker).Msg("Technical snapshot deleted")
	return nil
}

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

type portfolioStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPortfolioStorage creates a new PortfolioStore backed by BadgerHold.
func NewPortfolioStorage(store *Store, logger *common.Logger) *portfolioStorage {
	return &portfolioStorage{store: store, logger: logger}
}

func (s *portfolioStorage) GetEntry(_ context.Context, ticker string) (*models.PortfolioEntry, error) {
	var entry models.PortfolioEntry
	err := s.store.db.Get(ticker, &entry)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("portfolio entry '%s' not found", ticker)
		}
		return nil, fmt.Errorf("failed to get portfolio entry '%s': %w", ticker, err)
	}
	return &entry, nil
}

func (s *portfolioStorage) SaveEntry(_ context.Context, entry *models.PortfolioEntry) error {
	// Read existing to preserve AddedAt
	var existing models.PortfolioEntry
	if err := s.store.db.Get(entry.Ticker, &existing); err == nil {
		entry.AddedAt = existing.AddedAt
	} else if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now().UTC()
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := s.store.db.Upsert(entry.Ticker, entry); err != nil {
		return fmt.Errorf("failed to save portfolio entry '%s': %w", entry.Ticker, err)
	}
	s.logger.Debug().
		Str("ticker", entry.Ticker).
		Int("ranking", entry.Ranking).
		Msg("Portfolio entry saved")
	return nil
}

func (s *portfolioStorage) DeleteEntry(_ context.Context, ticker string) error {
	err := s.store.db.Delete(ticker, models.PortfolioEntry{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete portfolio entry '%s': %w", ticker, err)
	}
	s.logger.Debug().Str("ticker", ticker).Msg("Portfolio entry deleted")
	return nil
}

// ListEntries returns all entries ordered by ranking descending, then most
// recently added first.
func (s *portfolioStorage) ListEntries(_ context.Context) ([]*models.PortfolioEntry, error) {
	var entries []models.PortfolioEntry
	if err := s.store.db.Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to list portfolio entries: %w", err)
	}
	result := make([]*models.PortfolioEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Ranking != result[j].Ranking {
			return result[i].Ranking > result[j].Ranking
		}
		return result[i].AddedAt.After(result[j].AddedAt)
	})
	return result, nil
}

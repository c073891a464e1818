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

type watchlistStorage struct {
	store  *Store
	logger *common.Logger
}

// NewWatchlistStorage creates a new WatchlistStore backed by BadgerHold.
func NewWatchlistStorage(store *Store, logger *common.Logger) *watchlistStorage {
	return &watchlistStorage{store: store, logger: logger}
}

func (s *watchlistStorage) GetWatchlist(_ context.Context, name string) (*models.Watchlist, error) {
	var watchlist models.Watchlist
	err := s.store.db.Get(name, &watchlist)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("watchlist '%s' not found", name)
		}
		return nil, fmt.Errorf("failed to get watchlist '%s': %w", name, err)
	}
	return &watchlist, nil
}

func (s *watchlistStorage) SaveWatchlist(_ context.Context, watchlist *models.Watchlist) error {
	// Read existing to preserve CreatedAt
	var existing models.Watchlist
	if err := s.store.db.Get(watchlist.Name, &existing); err == nil {
		watchlist.CreatedAt = existing.CreatedAt
	} else if watchlist.CreatedAt.IsZero() {
		watchlist.CreatedAt = time.Now().UTC()
	}
	watchlist.UpdatedAt = time.Now().UTC()

	if err := s.store.db.Upsert(watchlist.Name, watchlist); err != nil {
		return fmt.Errorf("failed to save watchlist '%s': %w", watchlist.Name, err)
	}
	s.logger.Debug().
		Str("watchlist", watchlist.Name).
		Int("tickers", len(watchlist.Tickers)).
		Msg("Watchlist saved")
	return nil
}

func (s *watchlistStorage) DeleteWatchlist(_ context.Context, name string) error {
	err := s.store.db.Delete(name, models.Watchlist{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete watchlist '%s': %w", name, err)
	}
	s.logger.Debug().Str("watchlist", name).Msg("Watchlist deleted")
	return nil
}

func (s *watchlistStorage) ListWatchlists(_ context.Context) ([]*models.Watchlist, error) {
	var watchlists []models.Watchlist
	if err := s.store.db.Find(&watchlists, nil); err != nil {
		return nil, fmt.Errorf("failed to list watchlists: %w", err)
	}
	result := make([]*models.Watchlist, len(watchlists))
	for i := range watchlists {
		result[i] = &watchlists[i]
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

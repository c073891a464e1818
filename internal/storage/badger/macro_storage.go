package badger

import (
	"context"
	"fmt"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// reportKey is the fixed key of the single cached macro report.
const reportKey = "current"

type macroStorage struct {
	store  *Store
	logger *common.Logger
}

// NewMacroStorage creates a new MacroStore backed by BadgerHold.
func NewMacroStorage(store *Store, logger *common.Logger) *macroStorage {
	return &macroStorage{store: store, logger: logger}
}

func (s *macroStorage) GetSeries(_ context.Context, seriesID string) (*models.MacroSeries, error) {
	var series models.MacroSeries
	err := s.store.db.Get(seriesID, &series)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get macro series '%s': %w", seriesID, err)
	}
	return &series, nil
}

func (s *macroStorage) SaveSeries(_ context.Context, series *models.MacroSeries) error {
	if err := s.store.db.Upsert(series.SeriesID, series); err != nil {
		return fmt.Errorf("failed to save macro series '%s': %w", series.SeriesID, err)
	}
	s.logger.Debug().
		Str("series", series.SeriesID).
		Int("points", len(series.Points)).
		Msg("Macro series saved")
	return nil
}

func (s *macroStorage) GetReport(_ context.Context) (*models.MacroReport, error) {
	var report models.MacroReport
	err := s.store.db.Get(reportKey, &report)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("macro report not found")
		}
		return nil, fmt.Errorf("failed to get macro report: %w", err)
	}
	return &report, nil
}

func (s *macroStorage) SaveReport(_ context.Context, report *models.MacroReport) error {
	report.ID = reportKey
	if err := s.store.db.Upsert(report.ID, report); err != nil {
		return fmt.Errorf("failed to save macro report: %w", err)
	}
	s.logger.Debug().Msg("Macro report saved")
	return nil
}

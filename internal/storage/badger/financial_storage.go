package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// financialHistory is the persisted document holding all records of one
// cadence for one ticker. Merging on save keeps one record per period end
// date, with newer fetches overwriting older ones.
type financialHistory struct {
	Key        string `badgerhold:"key"` // "<ticker>|<period_type>"
	Ticker     string
	PeriodType models.PeriodType
	Records    []*models.FinancialRecord
}

func financialKey(ticker string, periodType models.PeriodType) string {
	return fmt.Sprintf("%s|%s", ticker, periodType)
}

type financialStorage struct {
	store  *Store
	logger *common.Logger
}

// NewFinancialStorage creates a new FinancialStore backed by BadgerHold.
func NewFinancialStorage(store *Store, logger *common.Logger) *financialStorage {
	return &financialStorage{store: store, logger: logger}
}

func (s *financialStorage) GetRecords(_ context.Context, ticker string, periodType models.PeriodType) ([]*models.FinancialRecord, error) {
	var history financialHistory
	err := s.store.db.Get(financialKey(ticker, periodType), &history)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s financials for '%s': %w", periodType, ticker, err)
	}
	return history.Records, nil
}

func (s *financialStorage) SaveRecords(ctx context.Context, ticker string, records []*models.FinancialRecord) error {
	byType := make(map[models.PeriodType][]*models.FinancialRecord)
	for _, r := range records {
		if r == nil {
			continue
		}
		byType[r.PeriodType] = append(byType[r.PeriodType], r)
	}

	for periodType, incoming := range byType {
		existing, err := s.GetRecords(ctx, ticker, periodType)
		if err != nil {
			return err
		}

		byDate := make(map[string]*models.FinancialRecord, len(existing)+len(incoming))
		for _, r := range existing {
			byDate[r.PeriodEndDate.Format("2006-01-02")] = r
		}
		for _, r := range incoming {
			byDate[r.PeriodEndDate.Format("2006-01-02")] = r
		}

		merged := make([]*models.FinancialRecord, 0, len(byDate))
		for _, r := range byDate {
			merged = append(merged, r)
		}
		sort.Slice(merged, func(i, j int) bool {
			return merged[i].PeriodEndDate.Before(merged[j].PeriodEndDate)
		})

		history := financialHistory{
			Key:        financialKey(ticker, periodType),
			Ticker:     ticker,
			PeriodType: periodType,
			Records:    merged,
		}
		if err := s.store.db.Upsert(history.Key, &history); err != nil {
			return fmt.Errorf("failed to save %s financials for '%s': %w", periodType, ticker, err)
		}
		s.logger.Debug().
			Str("ticker", ticker).
			Str("period", string(periodType)).
			Int("records", len(merged)).
			Msg("Financial records saved")
	}
	return nil
}

func (s *financialStorage) DeleteRecords(_ context.Context, ticker string) error {
	for _, periodType := range []models.PeriodType{models.PeriodQuarterly, models.PeriodAnnual} {
		err := s.store.db.Delete(financialKey(ticker, periodType), financialHistory{})
		if err != nil && err != badgerhold.ErrNotFound {
			return fmt.Errorf("failed to delete %s financials for '%s': %w", periodType, ticker, err)
		}
	}
	s.logger.Debug().Str("ticker", ticker).Msg("Financial records deleted")
	return nil
}

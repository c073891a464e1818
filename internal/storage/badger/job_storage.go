package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type jobStorage struct {
	store  *Store
	logger *common.Logger
}

// NewJobStorage creates a new JobStore backed by BadgerHold.
func NewJobStorage(store *Store, logger *common.Logger) *jobStorage {
	return &jobStorage{store: store, logger: logger}
}

func (s *jobStorage) SaveJob(_ context.Context, job *models.RefreshJob) error {
	if err := s.store.db.Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save job '%s': %w", job.ID, err)
	}
	s.logger.Debug().Str("job", job.ID).Str("kind", job.Kind).Msg("Refresh job saved")
	return nil
}

func (s *jobStorage) GetJob(_ context.Context, id string) (*models.RefreshJob, error) {
	var job models.RefreshJob
	err := s.store.db.Get(id, &job)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("job '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get job '%s': %w", id, err)
	}
	return &job, nil
}

func (s *jobStorage) ListJobs(_ context.Context, limit int) ([]*models.RefreshJob, error) {
	var jobs []models.RefreshJob
	if err := s.store.db.Find(&jobs, nil); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].StartedAt.After(jobs[j].StartedAt) })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	result := make([]*models.RefreshJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

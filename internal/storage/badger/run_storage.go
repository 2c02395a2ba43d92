package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/interfaces"
	"github.com/ternarybob/scaena/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// RunStorage implements the RunStorage interface for Badger
type RunStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRunStorage creates a new RunStorage instance
func NewRunStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RunStorage {
	return &RunStorage{
		db:     db,
		logger: logger,
	}
}

func (s *RunStorage) SaveRun(ctx context.Context, run *models.ProcessingRun) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}

	now := time.Now()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	if err := s.db.Store().Upsert(run.ID, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (s *RunStorage) GetRun(ctx context.Context, id string) (*models.ProcessingRun, error) {
	var run models.ProcessingRun
	if err := s.db.Store().Get(id, &run); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

func (s *RunStorage) ListRuns(ctx context.Context, opts *interfaces.RunListOptions) ([]*models.ProcessingRun, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()

	needsReviewOnly := opts != nil && opts.NeedsReviewOnly

	// BadgerHold cannot index into the NeedsReviewSteps slice, so the
	// needs-review filter runs in memory over the full sorted set and
	// limit/offset are sliced afterwards. Pushing them into the query
	// would paginate before filtering.
	if opts != nil && !needsReviewOnly {
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
	}

	var runs []models.ProcessingRun
	if err := s.db.Store().Find(&runs, query); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	result := make([]*models.ProcessingRun, 0, len(runs))
	for i := range runs {
		if needsReviewOnly && len(runs[i].NeedsReviewSteps) == 0 {
			continue
		}
		result = append(result, &runs[i])
	}

	if needsReviewOnly && opts != nil {
		if opts.Offset > 0 {
			if opts.Offset >= len(result) {
				return []*models.ProcessingRun{}, nil
			}
			result = result[opts.Offset:]
		}
		if opts.Limit > 0 && opts.Limit < len(result) {
			result = result[:opts.Limit]
		}
	}
	return result, nil
}

func (s *RunStorage) DeleteRun(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.ProcessingRun{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

func (s *RunStorage) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var expired []models.ProcessingRun
	if err := s.db.Store().Find(&expired, badgerhold.Where("CreatedAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to find expired runs: %w", err)
	}

	deleted := 0
	for i := range expired {
		if err := s.db.Store().Delete(expired[i].ID, &models.ProcessingRun{}); err != nil {
			s.logger.Warn().Err(err).Str("run_id", expired[i].ID).Msg("Failed to delete expired run")
			continue
		}
		deleted++
	}
	return deleted, nil
}

func (s *RunStorage) CountRuns(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.ProcessingRun{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return int(count), nil
}

package testutil

import (
	"context"

	"github.com/samber/lo"
	"github.com/tiffinly/tiffinly/internal/domain/jobrun"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// InMemoryJobRunStore implements jobrun.Repository
type InMemoryJobRunStore struct {
	*InMemoryStore[*jobrun.JobRun]
}

// NewInMemoryJobRunStore creates a new in-memory job run store
func NewInMemoryJobRunStore() *InMemoryJobRunStore {
	return &InMemoryJobRunStore{
		InMemoryStore: NewInMemoryStore[*jobrun.JobRun](),
	}
}

func copyJobRun(run *jobrun.JobRun) *jobrun.JobRun {
	if run == nil {
		return nil
	}
	copied := *run
	copied.Payload = lo.Assign(map[string]interface{}{}, run.Payload)
	return &copied
}

func (s *InMemoryJobRunStore) Create(ctx context.Context, run *jobrun.JobRun) error {
	if run == nil {
		return ierr.NewError("job run cannot be nil").
			WithHint("Job run cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, run.ID, copyJobRun(run)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create job run").
			WithReportableDetails(map[string]interface{}{"id": run.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *InMemoryJobRunStore) Update(ctx context.Context, run *jobrun.JobRun) error {
	if err := s.InMemoryStore.Update(ctx, run.ID, copyJobRun(run)); err != nil {
		return ierr.NewError("job run not found").
			WithHint("Job run not found").
			WithReportableDetails(map[string]interface{}{"id": run.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryJobRunStore) ListRecent(ctx context.Context, jobType types.JobType, limit int) ([]*jobrun.JobRun, error) {
	runs := s.InMemoryStore.List(ctx,
		func(run *jobrun.JobRun) bool { return run.JobType == jobType },
		func(a, b *jobrun.JobRun) bool { return a.RunAt.After(b.RunAt) },
	)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return lo.Map(runs, func(run *jobrun.JobRun, _ int) *jobrun.JobRun {
		return copyJobRun(run)
	}), nil
}

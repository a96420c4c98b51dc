package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/tiffinly/tiffinly/internal/domain/jobrun"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// JobTracker wraps every batch job invocation in a JobRun row. The row
// is written up front as running and finalized whatever the outcome, so
// an operator can always see what the last run did.
type JobTracker interface {
	// Track runs fn and records it. The payload fn returns is stored on
	// the run; a fn error flips the run to failed and is returned.
	Track(ctx context.Context, jobType types.JobType, fn func(ctx context.Context) (map[string]interface{}, error)) (*jobrun.JobRun, error)

	// RecentRuns lists the latest runs of a job type, newest first.
	RecentRuns(ctx context.Context, jobType types.JobType, limit int) ([]*jobrun.JobRun, error)
}

type jobTracker struct {
	ServiceParams
}

// NewJobTracker creates a new job tracker
func NewJobTracker(params ServiceParams) JobTracker {
	return &jobTracker{ServiceParams: params}
}

func (t *jobTracker) Track(ctx context.Context, jobType types.JobType, fn func(ctx context.Context) (map[string]interface{}, error)) (*jobrun.JobRun, error) {
	if err := jobType.Validate(); err != nil {
		return nil, err
	}

	// One run of each job type at a time, across all instances.
	release, ok, err := t.DB.TryAdvisoryLock(ctx, "job:"+string(jobType))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ierr.NewError("job is already running").
			WithHint("Another instance is running this job").
			WithReportableDetails(map[string]interface{}{"job_type": jobType}).
			Mark(ierr.ErrAlreadyExists)
	}
	defer release()

	run := &jobrun.JobRun{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_JOB_RUN),
		JobType:   jobType,
		RunStatus: types.JobRunStatusRunning,
		RunAt:     time.Now().UTC(),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := t.JobRunRepo.Create(ctx, run); err != nil {
		// Tracking must not block the job itself; run untracked.
		t.Logger.Errorw("failed to record job run start", "job_type", jobType, "error", err)
		payload, err := fn(ctx)
		run.Payload = payload
		return run, err
	}

	payload, fnErr := fn(ctx)
	run.Payload = payload
	run.CompletedAt = lo.ToPtr(time.Now().UTC())
	if fnErr != nil {
		run.RunStatus = types.JobRunStatusFailed
		run.LastError = lo.ToPtr(fnErr.Error())
	} else {
		run.RunStatus = types.JobRunStatusSuccess
	}

	if err := t.JobRunRepo.Update(ctx, run); err != nil {
		t.Logger.Errorw("failed to finalize job run",
			"job_type", jobType, "run_id", run.ID, "error", err)
	}

	t.Logger.Infow("job run completed",
		"job_type", jobType,
		"run_id", run.ID,
		"run_status", run.RunStatus,
		"payload", run.Payload)
	return run, fnErr
}

func (t *jobTracker) RecentRuns(ctx context.Context, jobType types.JobType, limit int) ([]*jobrun.JobRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return t.JobRunRepo.ListRecent(ctx, jobType, limit)
}

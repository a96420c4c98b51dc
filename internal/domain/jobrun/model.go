package jobrun

import (
	"context"
	"time"

	"github.com/tiffinly/tiffinly/internal/types"
)

// JobRun is the tracking record for one batch job invocation. Every
// invocation writes exactly one row, whatever the outcome; the payload
// carries counts, per-item errors and the continuation cursor when the
// run stopped on its time budget.
type JobRun struct {
	ID          string                 `json:"id"`
	JobType     types.JobType          `json:"job_type"`
	RunStatus   types.JobRunStatus     `json:"run_status"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	RunAt       time.Time              `json:"run_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	LastError   *string                `json:"last_error,omitempty"`
	types.BaseModel
}

// Repository defines persistence operations for job runs.
type Repository interface {
	// Create creates a new job run record
	Create(ctx context.Context, run *JobRun) error

	// Update updates an existing job run record
	Update(ctx context.Context, run *JobRun) error

	// ListRecent retrieves the most recent runs of a job type
	ListRecent(ctx context.Context, jobType types.JobType, limit int) ([]*JobRun, error)
}

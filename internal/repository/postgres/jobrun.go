package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	domainJobRun "github.com/tiffinly/tiffinly/internal/domain/jobrun"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	dbpg "github.com/tiffinly/tiffinly/internal/postgres"
	"github.com/tiffinly/tiffinly/internal/types"
)

type jobRunRepository struct {
	client *dbpg.Client
	log    *logger.Logger
}

// NewJobRunRepository creates a pgx-backed job run repository.
func NewJobRunRepository(client *dbpg.Client, log *logger.Logger) domainJobRun.Repository {
	return &jobRunRepository{client: client, log: log}
}

const jobRunColumns = `id, job_type, run_status, payload, run_at, completed_at, last_error,
	status, created_at, updated_at, created_by, updated_by`

func scanJobRun(row pgx.Row) (*domainJobRun.JobRun, error) {
	var run domainJobRun.JobRun
	err := row.Scan(
		&run.ID, &run.JobType, &run.RunStatus, &run.Payload, &run.RunAt,
		&run.CompletedAt, &run.LastError, &run.Status, &run.CreatedAt,
		&run.UpdatedAt, &run.CreatedBy, &run.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *jobRunRepository) Create(ctx context.Context, run *domainJobRun.JobRun) error {
	_, err := r.client.Querier(ctx).Exec(ctx, `
		INSERT INTO job_runs (`+jobRunColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.ID, run.JobType, run.RunStatus, run.Payload, run.RunAt,
		run.CompletedAt, run.LastError, run.Status, run.CreatedAt,
		run.UpdatedAt, run.CreatedBy, run.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create job run").
			WithReportableDetails(map[string]interface{}{"id": run.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *jobRunRepository) Update(ctx context.Context, run *domainJobRun.JobRun) error {
	run.UpdatedAt = time.Now().UTC()
	tag, err := r.client.Querier(ctx).Exec(ctx, `
		UPDATE job_runs
		SET run_status = $2, payload = $3, completed_at = $4,
		    last_error = $5, updated_at = $6, updated_by = $7
		WHERE id = $1`,
		run.ID, run.RunStatus, run.Payload, run.CompletedAt, run.LastError,
		run.UpdatedAt, run.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update job run").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("job run not found").
			WithHint("Job run not found").
			WithReportableDetails(map[string]interface{}{"id": run.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *jobRunRepository) ListRecent(ctx context.Context, jobType types.JobType, limit int) ([]*domainJobRun.JobRun, error) {
	rows, err := r.client.Querier(ctx).Query(ctx, `
		SELECT `+jobRunColumns+`
		FROM job_runs
		WHERE job_type = $1
		ORDER BY run_at DESC
		LIMIT $2`,
		jobType, limit,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list job runs").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var runs []*domainJobRun.JobRun
	for rows.Next() {
		run, err := scanJobRun(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan job run").
				Mark(ierr.ErrDatabase)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

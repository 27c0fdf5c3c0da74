package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rsouza-dev/leadforge/internal/entity"
)

type ScheduledJobRepository struct {
	DB *sql.DB
}

func NewScheduledJobRepository(db *sql.DB) *ScheduledJobRepository {
	return &ScheduledJobRepository{DB: db}
}

// UpsertSchedule registers or replaces the persisted schedule for one
// owner/job-type pair, mirroring the in-memory timer registry.
func (r *ScheduledJobRepository) UpsertSchedule(ctx context.Context, ownerID, jobType, cronExpr string, next time.Time) error {
	query := `
		INSERT INTO scheduled_jobs (
			id, owner_id, job_type, cron_expr, active, next_execution_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, TRUE, $5, NOW(), NOW())
		ON CONFLICT (owner_id, job_type)
		DO UPDATE SET
			cron_expr = EXCLUDED.cron_expr,
			active = TRUE,
			next_execution_at = EXCLUDED.next_execution_at,
			updated_at = NOW()
	`
	_, err := r.DB.ExecContext(ctx, query, uuid.New().String(), ownerID, jobType, cronExpr, next)
	return err
}

func (r *ScheduledJobRepository) Deactivate(ctx context.Context, ownerID, jobType string) error {
	query := `
		UPDATE scheduled_jobs
		SET active = FALSE, next_execution_at = NULL, updated_at = NOW()
		WHERE owner_id = $1 AND job_type = $2
	`
	_, err := r.DB.ExecContext(ctx, query, ownerID, jobType)
	return err
}

func (r *ScheduledJobRepository) RecordRun(ctx context.Context, ownerID, jobType string, succeeded bool, ranAt, next time.Time) error {
	query := `
		UPDATE scheduled_jobs
		SET last_executed_at = $3,
		    next_execution_at = $4,
		    total_runs = total_runs + 1,
		    success_runs = success_runs + CASE WHEN $5 THEN 1 ELSE 0 END,
		    failed_runs = failed_runs + CASE WHEN $5 THEN 0 ELSE 1 END,
		    updated_at = NOW()
		WHERE owner_id = $1 AND job_type = $2
	`
	_, err := r.DB.ExecContext(ctx, query, ownerID, jobType, ranAt, next, succeeded)
	return err
}

func (r *ScheduledJobRepository) ListActive(ctx context.Context) ([]entity.ScheduledJob, error) {
	query := `
		SELECT id, owner_id, job_type, cron_expr, active,
		       last_executed_at, next_execution_at,
		       total_runs, success_runs, failed_runs, created_at, updated_at
		FROM scheduled_jobs
		WHERE active = TRUE
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.ScheduledJob
	for rows.Next() {
		var j entity.ScheduledJob
		var last, next sql.NullTime
		if err := rows.Scan(
			&j.ID, &j.OwnerID, &j.JobType, &j.CronExpr, &j.Active,
			&last, &next,
			&j.TotalRuns, &j.SuccessRuns, &j.FailedRuns, &j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if last.Valid {
			t := last.Time
			j.LastExecutedAt = &t
		}
		if next.Valid {
			t := next.Time
			j.NextExecutionAt = &t
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rsouza-dev/leadforge/internal/entity"
)

type WorkflowRepository struct {
	DB *sql.DB
}

func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{DB: db}
}

func (r *WorkflowRepository) FindByID(ctx context.Context, id string) (*entity.Workflow, error) {
	query := `
		SELECT id, owner_id, name, inactivity_days, COALESCE(sequence_id, ''),
		       active, last_run_at, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`

	wf, err := scanWorkflow(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wf, nil
}

func (r *WorkflowRepository) ListActiveByOwner(ctx context.Context, ownerID string) ([]entity.Workflow, error) {
	query := `
		SELECT id, owner_id, name, inactivity_days, COALESCE(sequence_id, ''),
		       active, last_run_at, created_at, updated_at
		FROM workflows
		WHERE owner_id = $1 AND active = TRUE
		ORDER BY created_at ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *wf)
	}
	return out, rows.Err()
}

func (r *WorkflowRepository) UpdateLastRun(ctx context.Context, id string, ranAt time.Time) error {
	query := `UPDATE workflows SET last_run_at = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, ranAt, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*entity.Workflow, error) {
	var wf entity.Workflow
	var lastRun sql.NullTime
	err := row.Scan(
		&wf.ID, &wf.OwnerID, &wf.Name, &wf.InactivityDays, &wf.SequenceID,
		&wf.Active, &lastRun, &wf.CreatedAt, &wf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastRun.Valid {
		t := lastRun.Time
		wf.LastRunAt = &t
	}
	return &wf, nil
}

package database

import (
	"context"
	"database/sql"

	"github.com/rsouza-dev/leadforge/internal/entity"
)

type ExecutionLogRepository struct {
	DB *sql.DB
}

func NewExecutionLogRepository(db *sql.DB) *ExecutionLogRepository {
	return &ExecutionLogRepository{DB: db}
}

func (r *ExecutionLogRepository) Append(ctx context.Context, entry *entity.ExecutionLogEntry) error {
	query := `
		INSERT INTO execution_log (
			id, workflow_id, leads_detected, leads_enrolled,
			status, error_message, executed_at
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		entry.ID, entry.WorkflowID, entry.LeadsDetected, entry.LeadsEnrolled,
		string(entry.Status), entry.ErrorMessage, entry.ExecutedAt,
	)
	return err
}

// ListByWorkflow feeds the admin run-history view.
func (r *ExecutionLogRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]entity.ExecutionLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, workflow_id, leads_detected, leads_enrolled,
		       status, COALESCE(error_message, ''), executed_at
		FROM execution_log
		WHERE workflow_id = $1
		ORDER BY executed_at DESC
		LIMIT $2
	`

	rows, err := r.DB.QueryContext(ctx, query, workflowID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.ExecutionLogEntry
	for rows.Next() {
		var e entity.ExecutionLogEntry
		var status string
		if err := rows.Scan(
			&e.ID, &e.WorkflowID, &e.LeadsDetected, &e.LeadsEnrolled,
			&status, &e.ErrorMessage, &e.ExecutedAt,
		); err != nil {
			return nil, err
		}
		e.Status = entity.ExecutionStatus(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rsouza-dev/leadforge/internal/infra/worker"
)

// DripRepository feeds the drip dispatch worker with due sequence steps.
type DripRepository struct {
	DB *sql.DB

	// lease pushes a claimed row's due time forward so a crash between claim
	// and MarkSent retries instead of losing the step.
	lease time.Duration
}

func NewDripRepository(db *sql.DB) *DripRepository {
	return &DripRepository{DB: db, lease: 5 * time.Minute}
}

// ClaimDue picks due active enrollments with their current step and lead
// contact data. SKIP LOCKED keeps concurrent claimers off the same rows.
func (r *DripRepository) ClaimDue(ctx context.Context, limit int) ([]worker.DueStep, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be > 0")
	}

	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT e.id, e.lead_id, COALESCE(l.email, ''), COALESCE(l.name, ''),
		       e.current_step, s.template_id, s.subject,
		       (SELECT COUNT(*) FROM sequence_steps WHERE sequence_id = e.sequence_id),
		       COALESCE(n.delay_days, 0), COALESCE(n.delay_hours, 0)
		FROM enrollments e
		JOIN leads l ON l.id = e.lead_id
		JOIN sequence_steps s ON s.sequence_id = e.sequence_id AND s.position = e.current_step
		LEFT JOIN sequence_steps n ON n.sequence_id = e.sequence_id AND n.position = e.current_step + 1
		WHERE e.status = 'active'
		  AND e.next_scheduled_at <= NOW()
		ORDER BY e.next_scheduled_at ASC
		FOR UPDATE OF e SKIP LOCKED
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []worker.DueStep
	for rows.Next() {
		var d worker.DueStep
		if err := rows.Scan(
			&d.EnrollmentID, &d.LeadID, &d.LeadEmail, &d.LeadName,
			&d.StepIndex, &d.TemplateID, &d.Subject,
			&d.TotalSteps, &d.NextDelayDays, &d.NextDelayHours,
		); err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(due) == 0 {
		return nil, tx.Commit()
	}

	leaseUntil := time.Now().Add(r.lease)
	for _, d := range due {
		if _, err := tx.ExecContext(ctx, `
			UPDATE enrollments SET next_scheduled_at = $2, updated_at = NOW() WHERE id = $1
		`, d.EnrollmentID, leaseUntil); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return due, nil
}

// MarkSent advances the enrollment past the sent step. A nil next time means
// the sequence is finished and the enrollment completes.
func (r *DripRepository) MarkSent(ctx context.Context, enrollmentID string, sentStep int, next *time.Time) error {
	if next == nil {
		query := `
			UPDATE enrollments
			SET status = 'completed',
			    current_step = $2,
			    last_sent_at = NOW(),
			    next_scheduled_at = NULL,
			    completed_at = NOW(),
			    updated_at = NOW()
			WHERE id = $1
		`
		_, err := r.DB.ExecContext(ctx, query, enrollmentID, sentStep+1)
		return err
	}

	query := `
		UPDATE enrollments
		SET current_step = $2,
		    last_sent_at = NOW(),
		    next_scheduled_at = $3,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, enrollmentID, sentStep+1, *next)
	return err
}

func (r *DripRepository) MarkFailed(ctx context.Context, enrollmentID, reason string) error {
	query := `
		UPDATE enrollments
		SET status = 'failed',
		    last_error = NULLIF($2, ''),
		    next_scheduled_at = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, enrollmentID, reason)
	return err
}

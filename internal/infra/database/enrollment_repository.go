package database

import (
	"context"
	"database/sql"

	"github.com/rsouza-dev/leadforge/internal/entity"
)

type EnrollmentRepository struct {
	DB *sql.DB
}

func NewEnrollmentRepository(db *sql.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) HasActiveForLead(ctx context.Context, leadID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM enrollments WHERE lead_id = $1 AND status = 'active')`

	var active bool
	if err := r.DB.QueryRowContext(ctx, query, leadID).Scan(&active); err != nil {
		return false, err
	}
	return active, nil
}

// InsertIfNoneActive checks and inserts in one statement so two concurrent
// enrollment attempts for the same lead cannot both pass the guard. A partial
// unique index on (lead_id) WHERE status = 'active' backs this at the schema
// level; a constraint violation is reported as a rejected insert, not an error.
func (r *EnrollmentRepository) InsertIfNoneActive(ctx context.Context, e *entity.Enrollment) (bool, error) {
	query := `
		INSERT INTO enrollments (
			id, sequence_id, lead_id, status, current_step,
			next_scheduled_at, created_at, updated_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE NOT EXISTS (
			SELECT 1 FROM enrollments WHERE lead_id = $3 AND status = 'active'
		)
		ON CONFLICT DO NOTHING
	`

	res, err := r.DB.ExecContext(ctx, query,
		e.ID, e.SequenceID, e.LeadID, string(e.Status), e.CurrentStep,
		e.NextScheduledAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*entity.Enrollment, error) {
	query := `
		SELECT id, sequence_id, lead_id, status, current_step,
		       next_scheduled_at, last_sent_at, completed_at, COALESCE(last_error, ''),
		       created_at, updated_at
		FROM enrollments
		WHERE id = $1
	`

	var e entity.Enrollment
	var status string
	var next, last, completed sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.SequenceID, &e.LeadID, &status, &e.CurrentStep,
		&next, &last, &completed, &e.LastError, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	e.Status = entity.EnrollmentStatus(status)
	if next.Valid {
		t := next.Time
		e.NextScheduledAt = &t
	}
	if last.Valid {
		t := last.Time
		e.LastSentAt = &t
	}
	if completed.Valid {
		t := completed.Time
		e.CompletedAt = &t
	}
	return &e, nil
}

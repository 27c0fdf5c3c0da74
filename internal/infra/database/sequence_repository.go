package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rsouza-dev/leadforge/internal/entity"
)

type SequenceRepository struct {
	DB *sql.DB
}

func NewSequenceRepository(db *sql.DB) *SequenceRepository {
	return &SequenceRepository{DB: db}
}

func (r *SequenceRepository) FindByID(ctx context.Context, id string) (*entity.Sequence, error) {
	query := `
		SELECT id, owner_id, name, active, created_at, updated_at
		FROM sequences
		WHERE id = $1
	`

	var seq entity.Sequence
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&seq.ID, &seq.OwnerID, &seq.Name, &seq.Active, &seq.CreatedAt, &seq.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	steps, err := r.stepsFor(ctx, seq.ID)
	if err != nil {
		return nil, err
	}
	seq.Steps = steps

	return &seq, nil
}

func (r *SequenceRepository) stepsFor(ctx context.Context, sequenceID string) ([]entity.SequenceStep, error) {
	query := `
		SELECT id, sequence_id, position, template_id, subject, delay_days, delay_hours
		FROM sequence_steps
		WHERE sequence_id = $1
		ORDER BY position ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, sequenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []entity.SequenceStep
	for rows.Next() {
		var s entity.SequenceStep
		if err := rows.Scan(&s.ID, &s.SequenceID, &s.Position, &s.TemplateID, &s.Subject, &s.DelayDays, &s.DelayHours); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

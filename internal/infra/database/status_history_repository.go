package database

import (
	"context"
	"database/sql"

	"github.com/rsouza-dev/leadforge/internal/entity"
)

type StatusHistoryRepository struct {
	DB *sql.DB
}

func NewStatusHistoryRepository(db *sql.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{DB: db}
}

func (r *StatusHistoryRepository) Append(ctx context.Context, entry *entity.StatusHistoryEntry) error {
	query := `
		INSERT INTO lead_status_history (
			id, lead_id, from_status, to_status, trigger_name,
			actor_kind, actor_id, metadata, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10)
	`

	_, err := r.DB.ExecContext(ctx, query,
		entry.ID, entry.LeadID,
		string(entry.FromStatus), string(entry.ToStatus), entry.Trigger,
		string(entry.ActorKind), entry.ActorID, entry.Metadata, entry.Notes,
		entry.CreatedAt,
	)
	return err
}

func (r *StatusHistoryRepository) ListByLead(ctx context.Context, leadID string, limit int) ([]entity.StatusHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, lead_id, from_status, to_status, trigger_name,
		       actor_kind, COALESCE(actor_id, ''), COALESCE(metadata, ''), COALESCE(notes, ''), created_at
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.DB.QueryContext(ctx, query, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.StatusHistoryEntry
	for rows.Next() {
		var e entity.StatusHistoryEntry
		var from, to, actor string
		if err := rows.Scan(
			&e.ID, &e.LeadID, &from, &to, &e.Trigger,
			&actor, &e.ActorID, &e.Metadata, &e.Notes, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.FromStatus = entity.LeadStatus(from)
		e.ToStatus = entity.LeadStatus(to)
		e.ActorKind = entity.ActorKind(actor)
		out = append(out, e)
	}
	return out, rows.Err()
}

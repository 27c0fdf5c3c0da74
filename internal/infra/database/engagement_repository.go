package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/rsouza-dev/leadforge/internal/entity"
)

type EngagementRepository struct {
	DB *sql.DB
}

func NewEngagementRepository(db *sql.DB) *EngagementRepository {
	return &EngagementRepository{DB: db}
}

func (r *EngagementRepository) Append(ctx context.Context, ev *entity.EngagementEvent) error {
	query := `
		INSERT INTO engagement_events (id, message_id, lead_id, type, occurred_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
	`
	_, err := r.DB.ExecContext(ctx, query,
		ev.ID, ev.MessageID, ev.LeadID, string(ev.Type), ev.OccurredAt,
	)
	return err
}

// LeadsWithEngagementSince batches the recent-engagement check into a single
// query per owner. The cutoff is inclusive: an event exactly at the boundary
// counts as recent.
func (r *EngagementRepository) LeadsWithEngagementSince(ctx context.Context, leadIDs []string, cutoff time.Time) (map[string]bool, error) {
	if len(leadIDs) == 0 {
		return map[string]bool{}, nil
	}

	query := `
		SELECT DISTINCT lead_id
		FROM engagement_events
		WHERE lead_id = ANY($1)
		  AND occurred_at >= $2
	`

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(leadIDs), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	engaged := make(map[string]bool, len(leadIDs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		engaged[id] = true
	}
	return engaged, rows.Err()
}

func (r *EngagementRepository) CountForLead(ctx context.Context, leadID string) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE type = 'open'),
			COUNT(*) FILTER (WHERE type = 'click')
		FROM engagement_events
		WHERE lead_id = $1
	`

	var opens, clicks int
	if err := r.DB.QueryRowContext(ctx, query, leadID).Scan(&opens, &clicks); err != nil {
		return 0, 0, err
	}
	return opens, clicks, nil
}

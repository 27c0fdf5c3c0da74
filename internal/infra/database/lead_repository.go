package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rsouza-dev/leadforge/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, owner_id, status, score,
			name, email, phone, title, linkedin_url,
			company, company_size, industry, website, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID, lead.OwnerID, string(lead.Status), lead.Score,
		nullString(lead.Name), nullString(lead.Email), nullString(lead.Phone),
		nullString(lead.Title), nullString(lead.LinkedInURL),
		nullString(lead.Company), nullString(lead.CompanySize),
		nullString(lead.Industry), nullString(lead.Website), nullString(lead.Notes),
		lead.CreatedAt, lead.UpdatedAt,
	)
	return err
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `
		SELECT id, owner_id, status, score,
		       COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, ''),
		       COALESCE(title, ''), COALESCE(linkedin_url, ''),
		       COALESCE(company, ''), COALESCE(company_size, ''),
		       COALESCE(industry, ''), COALESCE(website, ''), COALESCE(notes, ''),
		       created_at, updated_at
		FROM leads
		WHERE id = $1
	`

	var lead entity.Lead
	var status string
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&lead.ID, &lead.OwnerID, &status, &lead.Score,
		&lead.Name, &lead.Email, &lead.Phone,
		&lead.Title, &lead.LinkedInURL,
		&lead.Company, &lead.CompanySize,
		&lead.Industry, &lead.Website, &lead.Notes,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lead.Status = entity.LeadStatus(status)
	return &lead, nil
}

func (r *LeadRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM leads WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) error {
	query := `UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, string(status), id)
	return err
}

func (r *LeadRepository) UpdateScore(ctx context.Context, id string, score int) error {
	query := `UPDATE leads SET score = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, score, id)
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

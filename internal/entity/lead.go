package entity

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew          LeadStatus = "new"
	LeadStatusContacted    LeadStatus = "contacted"
	LeadStatusQualified    LeadStatus = "qualified"
	LeadStatusNurturing    LeadStatus = "nurturing"
	LeadStatusWon          LeadStatus = "won"
	LeadStatusLost         LeadStatus = "lost"
	LeadStatusUnresponsive LeadStatus = "unresponsive"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
		LeadStatusNurturing, LeadStatusWon, LeadStatusLost, LeadStatusUnresponsive:
		return true
	}
	return false
}

type Lead struct {
	ID      string     `json:"id"`
	OwnerID string     `json:"owner_id"`
	Status  LeadStatus `json:"status"`
	Score   int        `json:"score"`

	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Title       string `json:"title,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	Company     string `json:"company,omitempty"`
	CompanySize string `json:"company_size,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Website     string `json:"website,omitempty"`
	Notes       string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLead creates a lead in the natural initial status.
func NewLead(ownerID, name, email string) *Lead {
	now := time.Now()
	return &Lead{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Status:    LeadStatusNew,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

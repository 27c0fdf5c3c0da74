package entity

import (
	"time"

	"github.com/google/uuid"
)

// Workflow is a re-engagement policy: leads owned by OwnerID that show no
// engagement for InactivityDays get enrolled into SequenceID.
type Workflow struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	Name           string     `json:"name"`
	InactivityDays int        `json:"inactivity_days"`
	SequenceID     string     `json:"sequence_id,omitempty"`
	Active         bool       `json:"active"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func NewWorkflow(ownerID, name string, inactivityDays int, sequenceID string) *Workflow {
	now := time.Now()
	return &Workflow{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Name:           name,
		InactivityDays: inactivityDays,
		SequenceID:     sequenceID,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentPaused    EnrollmentStatus = "paused"
	EnrollmentFailed    EnrollmentStatus = "failed"
)

// Enrollment binds a lead to a sequence and tracks its progress.
// At most one active enrollment may exist per lead; the enrollment
// repository enforces this with a conditional insert.
type Enrollment struct {
	ID              string           `json:"id"`
	SequenceID      string           `json:"sequence_id"`
	LeadID          string           `json:"lead_id"`
	Status          EnrollmentStatus `json:"status"`
	CurrentStep     int              `json:"current_step"`
	NextScheduledAt *time.Time       `json:"next_scheduled_at,omitempty"`
	LastSentAt      *time.Time       `json:"last_sent_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	LastError       string           `json:"last_error,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewEnrollment starts at step 0 with the first message due immediately.
func NewEnrollment(sequenceID, leadID string) *Enrollment {
	now := time.Now()
	return &Enrollment{
		ID:              uuid.New().String(),
		SequenceID:      sequenceID,
		LeadID:          leadID,
		Status:          EnrollmentActive,
		CurrentStep:     0,
		NextScheduledAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

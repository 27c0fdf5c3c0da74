package entity

import (
	"time"

	"github.com/google/uuid"
)

type EngagementType string

const (
	EngagementOpen  EngagementType = "open"
	EngagementClick EngagementType = "click"
)

// EngagementEvent is an append-only record produced by the delivery/tracking
// boundary. LeadID may be empty when the message cannot be tied back to a lead.
type EngagementEvent struct {
	ID         string         `json:"id"`
	MessageID  string         `json:"message_id"`
	LeadID     string         `json:"lead_id,omitempty"`
	Type       EngagementType `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewEngagementEvent(messageID, leadID string, kind EngagementType) *EngagementEvent {
	return &EngagementEvent{
		ID:         uuid.New().String(),
		MessageID:  messageID,
		LeadID:     leadID,
		Type:       kind,
		OccurredAt: time.Now(),
	}
}

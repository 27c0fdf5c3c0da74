package entity

import (
	"time"

	"github.com/google/uuid"
)

type ActorKind string

const (
	ActorUser     ActorKind = "user"
	ActorWorkflow ActorKind = "workflow"
	ActorSystem   ActorKind = "system"
)

// StatusHistoryEntry is the append-only audit trail of lead status changes.
// One row per accepted transition; rejected or no-op transitions leave no trace.
type StatusHistoryEntry struct {
	ID         string     `json:"id"`
	LeadID     string     `json:"lead_id"`
	FromStatus LeadStatus `json:"from_status"`
	ToStatus   LeadStatus `json:"to_status"`
	Trigger    string     `json:"trigger"`
	ActorKind  ActorKind  `json:"actor_kind"`
	ActorID    string     `json:"actor_id,omitempty"`
	Metadata   string     `json:"metadata,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewStatusHistoryEntry(leadID string, from, to LeadStatus, trigger string, actor ActorKind, actorID string) *StatusHistoryEntry {
	return &StatusHistoryEntry{
		ID:         uuid.New().String(),
		LeadID:     leadID,
		FromStatus: from,
		ToStatus:   to,
		Trigger:    trigger,
		ActorKind:  actor,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	}
}

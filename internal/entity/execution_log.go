package entity

import (
	"time"

	"github.com/google/uuid"
)

type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
	ExecutionPartial ExecutionStatus = "partial"
)

// ExecutionLogEntry records the outcome of one workflow run. Append-only.
type ExecutionLogEntry struct {
	ID            string          `json:"id"`
	WorkflowID    string          `json:"workflow_id"`
	LeadsDetected int             `json:"leads_detected"`
	LeadsEnrolled int             `json:"leads_enrolled"`
	Status        ExecutionStatus `json:"status"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	ExecutedAt    time.Time       `json:"executed_at"`
}

func NewExecutionLogEntry(workflowID string, detected, enrolled int, status ExecutionStatus, errMsg string) *ExecutionLogEntry {
	return &ExecutionLogEntry{
		ID:            uuid.New().String(),
		WorkflowID:    workflowID,
		LeadsDetected: detected,
		LeadsEnrolled: enrolled,
		Status:        status,
		ErrorMessage:  errMsg,
		ExecutedAt:    time.Now(),
	}
}

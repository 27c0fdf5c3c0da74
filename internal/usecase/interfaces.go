package usecase

import (
	"context"
	"time"

	"github.com/rsouza-dev/leadforge/internal/entity"
)

type LeadRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) error
	UpdateScore(ctx context.Context, id string, score int) error
}

type EngagementRepository interface {
	Append(ctx context.Context, ev *entity.EngagementEvent) error
	// LeadsWithEngagementSince returns the subset of leadIDs that have at
	// least one open or click event with occurred_at >= cutoff (inclusive).
	LeadsWithEngagementSince(ctx context.Context, leadIDs []string, cutoff time.Time) (map[string]bool, error)
	CountForLead(ctx context.Context, leadID string) (opens, clicks int, err error)
}

type StatusHistoryRepository interface {
	Append(ctx context.Context, entry *entity.StatusHistoryEntry) error
}

type SequenceRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Sequence, error)
}

type EnrollmentRepository interface {
	HasActiveForLead(ctx context.Context, leadID string) (bool, error)
	// InsertIfNoneActive inserts the enrollment only when the lead has no
	// active enrollment in any sequence, in a single statement so two
	// concurrent callers cannot both pass the guard. Returns false when the
	// guard rejected the insert.
	InsertIfNoneActive(ctx context.Context, e *entity.Enrollment) (bool, error)
}

type WorkflowRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Workflow, error)
	ListActiveByOwner(ctx context.Context, ownerID string) ([]entity.Workflow, error)
	UpdateLastRun(ctx context.Context, id string, ranAt time.Time) error
}

type ExecutionLogRepository interface {
	Append(ctx context.Context, entry *entity.ExecutionLogEntry) error
}

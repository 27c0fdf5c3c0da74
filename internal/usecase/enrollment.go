package usecase

import (
	"context"
	"log/slog"

	"github.com/rsouza-dev/leadforge/internal/entity"
)

// EnrollmentManager binds leads to a sequence. The guard is cross-sequence:
// an active enrollment in any sequence blocks a new one.
type EnrollmentManager struct {
	Enrollments EnrollmentRepository
	Log         *slog.Logger
}

func NewEnrollmentManager(enrollments EnrollmentRepository, log *slog.Logger) *EnrollmentManager {
	if log == nil {
		log = slog.Default()
	}
	return &EnrollmentManager{Enrollments: enrollments, Log: log}
}

// IsActive reports whether the lead currently has an active enrollment.
// Storage errors fail open to false; the conditional insert in Enroll is the
// authoritative guard.
func (m *EnrollmentManager) IsActive(ctx context.Context, leadID string) bool {
	active, err := m.Enrollments.HasActiveForLead(ctx, leadID)
	if err != nil {
		m.Log.Error("active enrollment lookup failed", "lead_id", leadID, "err", err)
		return false
	}
	return active
}

// Enroll inserts an active enrollment for each candidate that has none yet.
// Per-lead failures are logged and counted as skipped; they never abort the
// batch. Enrolled+Skipped always equals len(leadIDs).
func (m *EnrollmentManager) Enroll(ctx context.Context, leadIDs []string, sequenceID string) EnrollmentResult {
	var result EnrollmentResult

	for _, leadID := range leadIDs {
		inserted, err := m.Enrollments.InsertIfNoneActive(ctx, entity.NewEnrollment(sequenceID, leadID))
		if err != nil {
			m.Log.Error("enrollment insert failed", "lead_id", leadID, "sequence_id", sequenceID, "err", err)
			result.Skipped++
			continue
		}
		if !inserted {
			result.Skipped++
			continue
		}
		result.Enrolled++
	}

	return result
}

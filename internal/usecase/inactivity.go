package usecase

import (
	"context"
	"log/slog"
	"time"
)

// InactivityDetector finds leads with no recent engagement. A lead is inactive
// iff it has zero open and zero click events with occurred_at >= cutoff; a
// lead with no engagement on record at all is inactive too.
type InactivityDetector struct {
	Leads       LeadRepository
	Engagements EngagementRepository
	Log         *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewInactivityDetector(leads LeadRepository, engagements EngagementRepository, log *slog.Logger) *InactivityDetector {
	if log == nil {
		log = slog.Default()
	}
	return &InactivityDetector{Leads: leads, Engagements: engagements, Log: log, now: time.Now}
}

// Detect returns the IDs of the owner's inactive leads. Reads fail open: a
// storage error yields an empty result, logged, never an error.
func (d *InactivityDetector) Detect(ctx context.Context, ownerID string, inactivityDays int) []string {
	cutoff := d.now().AddDate(0, 0, -inactivityDays)

	leadIDs, err := d.Leads.ListIDsByOwner(ctx, ownerID)
	if err != nil {
		d.Log.Error("inactivity scan: listing leads failed", "owner_id", ownerID, "err", err)
		return nil
	}
	if len(leadIDs) == 0 {
		return nil
	}

	// One batched query per owner instead of per-lead point lookups.
	engaged, err := d.Engagements.LeadsWithEngagementSince(ctx, leadIDs, cutoff)
	if err != nil {
		d.Log.Error("inactivity scan: engagement lookup failed", "owner_id", ownerID, "err", err)
		return nil
	}

	var inactive []string
	for _, id := range leadIDs {
		if !engaged[id] {
			inactive = append(inactive, id)
		}
	}

	d.Log.Info("inactivity scan complete",
		"owner_id", ownerID, "window_days", inactivityDays,
		"leads", len(leadIDs), "inactive", len(inactive))

	return inactive
}

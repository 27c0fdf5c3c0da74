package usecase

import (
	"context"
	"log/slog"

	"github.com/rsouza-dev/leadforge/internal/entity"
)

// StatusWorkflow advances leads through the status state machine.
type StatusWorkflow struct {
	Leads   LeadRepository
	History StatusHistoryRepository
	Log     *slog.Logger
}

func NewStatusWorkflow(leads LeadRepository, history StatusHistoryRepository, log *slog.Logger) *StatusWorkflow {
	if log == nil {
		log = slog.Default()
	}
	return &StatusWorkflow{Leads: leads, History: history, Log: log}
}

// ProcessTrigger resolves the rule table for (trigger, current status). A
// missing rule is a no-op, not an error: the outcome is nil and no history row
// is written. On a match the lead status is updated and audited.
func (w *StatusWorkflow) ProcessTrigger(ctx context.Context, leadID, actorID string, trigger Trigger, metadata, notes string) (*TriggerOutcome, error) {
	lead, err := w.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, leadNotFound(leadID)
	}

	rule, ok := resolveRule(trigger, lead.Status)
	if !ok {
		w.Log.Debug("no transition rule matched",
			"lead_id", leadID, "trigger", string(trigger), "status", string(lead.Status))
		return nil, nil
	}

	if err := w.Leads.UpdateStatus(ctx, lead.ID, rule.To); err != nil {
		return nil, &TechnicalError{Code: "STATUS_UPDATE_FAILED", Message: err.Error()}
	}

	entry := entity.NewStatusHistoryEntry(lead.ID, lead.Status, rule.To, string(trigger), actorKindFor(trigger, rule.Priority), actorID)
	entry.Metadata = metadata
	entry.Notes = notes
	if err := w.History.Append(ctx, entry); err != nil {
		return nil, &TechnicalError{Code: "HISTORY_WRITE_FAILED", Message: err.Error()}
	}

	w.Log.Info("lead status transition",
		"lead_id", lead.ID, "from", string(lead.Status), "to", string(rule.To), "trigger", string(trigger))

	return &TriggerOutcome{LeadID: lead.ID, FromStatus: lead.Status, Status: rule.To}, nil
}

func resolveRule(trigger Trigger, status entity.LeadStatus) (TransitionRule, bool) {
	return resolveIn(transitionRules, trigger, status)
}

// resolveIn picks the highest-priority matching rule. Strictly-greater
// comparison keeps the first-declared rule on a priority tie.
func resolveIn(rules []TransitionRule, trigger Trigger, status entity.LeadStatus) (TransitionRule, bool) {
	var best TransitionRule
	found := false
	for _, r := range rules {
		if r.Trigger != trigger || !r.appliesTo(status) {
			continue
		}
		if !found || r.Priority > best.Priority {
			best = r
			found = true
		}
	}
	return best, found
}

// UpdateLeadStatus sets the status directly, bypassing rule matching. Setting
// the current status again is a silent no-op with no history row.
func (w *StatusWorkflow) UpdateLeadStatus(ctx context.Context, leadID, actorID string, newStatus entity.LeadStatus, notes, triggeredBy string) (*TriggerOutcome, error) {
	if !newStatus.Valid() {
		return nil, &DomainError{Code: "INVALID_STATUS", Message: "invalid lead status: " + string(newStatus)}
	}

	lead, err := w.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, leadNotFound(leadID)
	}
	if lead.OwnerID != "" && actorID != "" && lead.OwnerID != actorID {
		return nil, accessDenied(leadID, actorID)
	}

	if lead.Status == newStatus {
		return &TriggerOutcome{LeadID: lead.ID, FromStatus: lead.Status, Status: lead.Status}, nil
	}

	if err := w.Leads.UpdateStatus(ctx, lead.ID, newStatus); err != nil {
		return nil, &TechnicalError{Code: "STATUS_UPDATE_FAILED", Message: err.Error()}
	}

	trigger := triggeredBy
	if trigger == "" {
		trigger = "manual_update"
	}
	entry := entity.NewStatusHistoryEntry(lead.ID, lead.Status, newStatus, trigger, entity.ActorUser, actorID)
	entry.Notes = notes
	if err := w.History.Append(ctx, entry); err != nil {
		return nil, &TechnicalError{Code: "HISTORY_WRITE_FAILED", Message: err.Error()}
	}

	return &TriggerOutcome{LeadID: lead.ID, FromStatus: lead.Status, Status: newStatus}, nil
}

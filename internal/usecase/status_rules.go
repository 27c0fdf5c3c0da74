package usecase

import "github.com/rsouza-dev/leadforge/internal/entity"

type Trigger string

const (
	// Manual overrides, issued by explicit user action.
	TriggerManualQualify    Trigger = "manual_qualify"
	TriggerManualDisqualify Trigger = "manual_disqualify"
	TriggerManualCloseWon   Trigger = "manual_close_won"
	TriggerManualReopen     Trigger = "manual_reopen"

	// Automatic engagement triggers, issued by system events.
	TriggerEmailSent     Trigger = "email_sent"
	TriggerReplyReceived Trigger = "reply_received"
	TriggerLinkClicked   Trigger = "link_clicked"

	// Fired by the re-engagement machinery when a lead goes cold.
	TriggerInactivityTimeout Trigger = "inactivity_timeout"
)

type TransitionRule struct {
	Trigger     Trigger
	From        []entity.LeadStatus
	To          entity.LeadStatus
	Priority    int
	Description string
}

func (r TransitionRule) appliesTo(status entity.LeadStatus) bool {
	for _, s := range r.From {
		if s == status {
			return true
		}
	}
	return false
}

// transitionRules is the ordered rule table. Resolution picks the
// highest-priority rule matching (trigger, current status); when two matching
// rules share a priority, declaration order wins.
var transitionRules = []TransitionRule{
	{
		Trigger:     TriggerManualQualify,
		From:        []entity.LeadStatus{entity.LeadStatusNew, entity.LeadStatusContacted, entity.LeadStatusNurturing, entity.LeadStatusUnresponsive},
		To:          entity.LeadStatusQualified,
		Priority:    200,
		Description: "user marked the lead as qualified",
	},
	{
		Trigger:     TriggerManualDisqualify,
		From:        []entity.LeadStatus{entity.LeadStatusNew, entity.LeadStatusContacted, entity.LeadStatusQualified, entity.LeadStatusNurturing, entity.LeadStatusUnresponsive},
		To:          entity.LeadStatusLost,
		Priority:    200,
		Description: "user disqualified the lead",
	},
	{
		Trigger:     TriggerManualCloseWon,
		From:        []entity.LeadStatus{entity.LeadStatusContacted, entity.LeadStatusQualified, entity.LeadStatusNurturing},
		To:          entity.LeadStatusWon,
		Priority:    200,
		Description: "user closed the deal",
	},
	{
		Trigger:     TriggerManualReopen,
		From:        []entity.LeadStatus{entity.LeadStatusWon, entity.LeadStatusLost, entity.LeadStatusUnresponsive},
		To:          entity.LeadStatusNurturing,
		Priority:    200,
		Description: "user reopened a closed lead",
	},
	{
		Trigger:     TriggerEmailSent,
		From:        []entity.LeadStatus{entity.LeadStatusNew},
		To:          entity.LeadStatusContacted,
		Priority:    100,
		Description: "first outbound email sent",
	},
	{
		Trigger:     TriggerReplyReceived,
		From:        []entity.LeadStatus{entity.LeadStatusContacted, entity.LeadStatusNurturing, entity.LeadStatusUnresponsive},
		To:          entity.LeadStatusQualified,
		Priority:    95,
		Description: "lead replied to an email",
	},
	{
		Trigger:     TriggerLinkClicked,
		From:        []entity.LeadStatus{entity.LeadStatusContacted, entity.LeadStatusNurturing, entity.LeadStatusUnresponsive},
		To:          entity.LeadStatusQualified,
		Priority:    90,
		Description: "lead clicked a tracked link",
	},
	{
		Trigger:     TriggerInactivityTimeout,
		From:        []entity.LeadStatus{entity.LeadStatusContacted, entity.LeadStatusQualified, entity.LeadStatusNurturing},
		To:          entity.LeadStatusUnresponsive,
		Priority:    50,
		Description: "no engagement within the inactivity window",
	},
}

// actorKindFor classifies who is behind a trigger for the audit trail.
func actorKindFor(trigger Trigger, priority int) entity.ActorKind {
	if priority >= 200 {
		return entity.ActorUser
	}
	if trigger == TriggerInactivityTimeout {
		return entity.ActorWorkflow
	}
	return entity.ActorSystem
}

package usecase

import "github.com/rsouza-dev/leadforge/internal/entity"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ScoreFactors holds the five factor scores, each on a 0-100 scale.
type ScoreFactors struct {
	CompanySize         float64 `json:"company_size"`
	IndustryFit         float64 `json:"industry_fit"`
	ContactCompleteness float64 `json:"contact_completeness"`
	Engagement          float64 `json:"engagement"`
	DataQuality         float64 `json:"data_quality"`
}

type ScoringResult struct {
	Score       int          `json:"score"`
	Priority    Priority     `json:"priority"`
	Factors     ScoreFactors `json:"factors"`
	Explanation string       `json:"explanation"`
}

// EnrollmentResult: Enrolled + Skipped always equals the number of candidates.
type EnrollmentResult struct {
	Enrolled int `json:"enrolled"`
	Skipped  int `json:"skipped"`
}

// ExecutionResult is the outcome of a single workflow run. Precondition
// failures land in Error with Success=false; they are values, not errors.
type ExecutionResult struct {
	Success       bool   `json:"success"`
	LeadsDetected int    `json:"leads_detected"`
	LeadsEnrolled int    `json:"leads_enrolled"`
	Error         string `json:"error,omitempty"`
}

type AggregateResult struct {
	TotalWorkflows     int `json:"total_workflows"`
	Successful         int `json:"successful"`
	Failed             int `json:"failed"`
	TotalLeadsEnrolled int `json:"total_leads_enrolled"`
}

// TriggerOutcome reports an accepted status transition.
type TriggerOutcome struct {
	LeadID     string            `json:"lead_id"`
	FromStatus entity.LeadStatus `json:"from_status"`
	Status     entity.LeadStatus `json:"status"`
}

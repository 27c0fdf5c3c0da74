package entity

import "time"

const JobTypeReengagement = "reengagement"

// ScheduledJob mirrors an in-memory timer registration so schedules survive
// restarts. The timer registry itself lives in the scheduler, not here.
type ScheduledJob struct {
	ID              string     `json:"id"`
	OwnerID         string     `json:"owner_id"`
	JobType         string     `json:"job_type"`
	CronExpr        string     `json:"cron_expr"`
	Active          bool       `json:"active"`
	LastExecutedAt  *time.Time `json:"last_executed_at,omitempty"`
	NextExecutionAt *time.Time `json:"next_execution_at,omitempty"`
	TotalRuns       int64      `json:"total_runs"`
	SuccessRuns     int64      `json:"success_runs"`
	FailedRuns      int64      `json:"failed_runs"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

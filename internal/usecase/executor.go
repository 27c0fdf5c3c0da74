package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/rsouza-dev/leadforge/internal/entity"
	"github.com/rsouza-dev/leadforge/internal/infra/queue"
)

// RunNotifier publishes a message per workflow run. Optional; best effort.
type RunNotifier interface {
	PublishWorkflowRun(ctx context.Context, payload queue.WorkflowRunPayload) error
}

// WorkflowExecutor orchestrates one re-engagement run:
// detect -> enroll -> log, strictly in that order.
type WorkflowExecutor struct {
	Workflows    WorkflowRepository
	Sequences    SequenceRepository
	Detector     *InactivityDetector
	Enrollments  *EnrollmentManager
	ExecutionLog ExecutionLogRepository
	Notifier     RunNotifier
	Log          *slog.Logger
}

func NewWorkflowExecutor(
	workflows WorkflowRepository,
	sequences SequenceRepository,
	detector *InactivityDetector,
	enrollments *EnrollmentManager,
	executionLog ExecutionLogRepository,
	notifier RunNotifier,
	log *slog.Logger,
) *WorkflowExecutor {
	if log == nil {
		log = slog.Default()
	}
	return &WorkflowExecutor{
		Workflows:    workflows,
		Sequences:    sequences,
		Detector:     detector,
		Enrollments:  enrollments,
		ExecutionLog: executionLog,
		Notifier:     notifier,
		Log:          log,
	}
}

// Execute runs one workflow. Precondition failures come back as structured
// results, never as errors; callers branch on Success.
func (e *WorkflowExecutor) Execute(ctx context.Context, workflowID string) ExecutionResult {
	wf, err := e.Workflows.FindByID(ctx, workflowID)
	if err != nil {
		e.Log.Error("workflow lookup failed", "workflow_id", workflowID, "err", err)
		return ExecutionResult{Success: false, Error: "Workflow not found"}
	}
	if wf == nil {
		return ExecutionResult{Success: false, Error: "Workflow not found"}
	}
	if !wf.Active {
		return ExecutionResult{Success: false, Error: "Workflow is not active"}
	}
	if wf.SequenceID == "" {
		return ExecutionResult{Success: false, Error: "No sequence configured for this workflow"}
	}

	seq, err := e.Sequences.FindByID(ctx, wf.SequenceID)
	if err != nil {
		return e.fail(ctx, wf, 0, 0, "sequence lookup failed: "+err.Error())
	}
	if seq == nil {
		return e.fail(ctx, wf, 0, 0, "sequence "+wf.SequenceID+" no longer exists")
	}

	detected := e.Detector.Detect(ctx, wf.OwnerID, wf.InactivityDays)
	enrollment := e.Enrollments.Enroll(ctx, detected, wf.SequenceID)

	status := entity.ExecutionSuccess
	if enrollment.Enrolled > 0 && enrollment.Skipped > 0 {
		status = entity.ExecutionPartial
	}

	entry := entity.NewExecutionLogEntry(wf.ID, len(detected), enrollment.Enrolled, status, "")
	if err := e.ExecutionLog.Append(ctx, entry); err != nil {
		e.Log.Error("execution log write failed", "workflow_id", wf.ID, "err", err)
		return ExecutionResult{
			Success:       false,
			LeadsDetected: len(detected),
			LeadsEnrolled: enrollment.Enrolled,
			Error:         "execution log write failed: " + err.Error(),
		}
	}

	if err := e.Workflows.UpdateLastRun(ctx, wf.ID, time.Now()); err != nil {
		// The run already succeeded and is logged; losing last_run_at only
		// skews the admin view.
		e.Log.Warn("last_run_at update failed", "workflow_id", wf.ID, "err", err)
	}

	e.notify(ctx, wf, string(status), len(detected), enrollment.Enrolled, "")

	e.Log.Info("workflow run complete",
		"workflow_id", wf.ID, "owner_id", wf.OwnerID,
		"detected", len(detected), "enrolled", enrollment.Enrolled,
		"skipped", enrollment.Skipped, "status", string(status))

	return ExecutionResult{
		Success:       true,
		LeadsDetected: len(detected),
		LeadsEnrolled: enrollment.Enrolled,
	}
}

// fail records a failed run and keeps the process stable.
func (e *WorkflowExecutor) fail(ctx context.Context, wf *entity.Workflow, detected, enrolled int, reason string) ExecutionResult {
	e.Log.Error("workflow run failed", "workflow_id", wf.ID, "reason", reason)

	entry := entity.NewExecutionLogEntry(wf.ID, detected, enrolled, entity.ExecutionFailed, reason)
	if err := e.ExecutionLog.Append(ctx, entry); err != nil {
		e.Log.Error("execution log write failed", "workflow_id", wf.ID, "err", err)
	}

	e.notify(ctx, wf, string(entity.ExecutionFailed), detected, enrolled, reason)

	return ExecutionResult{
		Success:       false,
		LeadsDetected: detected,
		LeadsEnrolled: enrolled,
		Error:         reason,
	}
}

func (e *WorkflowExecutor) notify(ctx context.Context, wf *entity.Workflow, status string, detected, enrolled int, errMsg string) {
	if e.Notifier == nil {
		return
	}
	err := e.Notifier.PublishWorkflowRun(ctx, queue.WorkflowRunPayload{
		WorkflowID:    wf.ID,
		OwnerID:       wf.OwnerID,
		Status:        status,
		LeadsDetected: detected,
		LeadsEnrolled: enrolled,
		Error:         errMsg,
		ExecutedAt:    time.Now(),
	})
	if err != nil {
		e.Log.Warn("workflow run publish failed", "workflow_id", wf.ID, "err", err)
	}
}

// ExecuteAll runs every active workflow the owner has, independently: one
// failing run never aborts the others.
func (e *WorkflowExecutor) ExecuteAll(ctx context.Context, ownerID string) AggregateResult {
	workflows, err := e.Workflows.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		e.Log.Error("active workflow listing failed", "owner_id", ownerID, "err", err)
		return AggregateResult{}
	}

	agg := AggregateResult{TotalWorkflows: len(workflows)}
	for _, wf := range workflows {
		res := e.Execute(ctx, wf.ID)
		if res.Success {
			agg.Successful++
		} else {
			agg.Failed++
		}
		agg.TotalLeadsEnrolled += res.LeadsEnrolled
	}

	e.Log.Info("owner workflow fan-out complete",
		"owner_id", ownerID, "total", agg.TotalWorkflows,
		"successful", agg.Successful, "failed", agg.Failed,
		"leads_enrolled", agg.TotalLeadsEnrolled)

	return agg
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rsouza-dev/leadforge/internal/infra/http/middleware"
	"github.com/rsouza-dev/leadforge/internal/usecase"
)

type WorkflowRunner interface {
	Execute(ctx context.Context, workflowID string) usecase.ExecutionResult
	ExecuteAll(ctx context.Context, ownerID string) usecase.AggregateResult
}

type ScheduleRegistry interface {
	ScheduleForOwner(ownerID, cronExpr string) error
	UnscheduleForOwner(ownerID string)
}

// WorkflowHandler exposes manual "run now" actions and the per-owner schedule
// settings that feed the timer registry.
type WorkflowHandler struct {
	Executor  WorkflowRunner
	Scheduler ScheduleRegistry
}

func NewWorkflowHandler(executor WorkflowRunner, scheduler ScheduleRegistry) *WorkflowHandler {
	return &WorkflowHandler{Executor: executor, Scheduler: scheduler}
}

// RunNow executes a single workflow immediately. Precondition failures come
// back with 422 and the structured result; they are expected outcomes, not
// server errors.
func (h *WorkflowHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflowID")

	result := h.Executor.Execute(r.Context(), workflowID)

	status := "success"
	if !result.Success {
		status = "failed"
	}
	middleware.RecordWorkflowRun(status)
	middleware.AddLeadsEnrolled(result.LeadsEnrolled)

	if !result.Success {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RunAll fans out over every active workflow the owner has.
func (h *WorkflowHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")

	agg := h.Executor.ExecuteAll(r.Context(), ownerID)
	middleware.AddLeadsEnrolled(agg.TotalLeadsEnrolled)

	writeJSON(w, http.StatusOK, agg)
}

type ScheduleRequest struct {
	Cron string `json:"cron"`
}

// SetSchedule registers (replacing) the owner's recurring timer.
func (h *WorkflowHandler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")

	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid JSON"})
		return
	}
	if req.Cron == "" {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Cron expression is required"})
		return
	}

	if err := h.Scheduler.ScheduleForOwner(ownerID, req.Cron); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid cron expression: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

// RemoveSchedule cancels the owner's timer. Removing a schedule that does not
// exist still succeeds.
func (h *WorkflowHandler) RemoveSchedule(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	h.Scheduler.UnscheduleForOwner(ownerID)
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

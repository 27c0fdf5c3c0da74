package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rsouza-dev/leadforge/internal/usecase"
)

// DueStep is one claimed enrollment step ready to send.
type DueStep struct {
	EnrollmentID   string
	LeadID         string
	LeadEmail      string
	LeadName       string
	StepIndex      int
	TemplateID     string
	Subject        string
	TotalSteps     int
	NextDelayDays  int
	NextDelayHours int
}

// NextDelay is the days+hours offset of the step after this one.
func (d DueStep) NextDelay() time.Duration {
	return time.Duration(d.NextDelayDays)*24*time.Hour + time.Duration(d.NextDelayHours)*time.Hour
}

type DripStore interface {
	ClaimDue(ctx context.Context, limit int) ([]DueStep, error)
	MarkSent(ctx context.Context, enrollmentID string, sentStep int, next *time.Time) error
	MarkFailed(ctx context.Context, enrollmentID, reason string) error
}

// StepSender is the outbound send capability. Delivery protocol details
// (SMTP, provider APIs) live behind it.
type StepSender interface {
	SendStep(to, name, subject, templateID, messageID string) error
}

// TriggerProcessor lets the worker fire the first-email-sent transition.
type TriggerProcessor interface {
	ProcessTrigger(ctx context.Context, leadID, actorID string, trigger usecase.Trigger, metadata, notes string) (*usecase.TriggerOutcome, error)
}

// DripWorker advances active enrollments: each tick it claims due steps,
// sends them, and schedules the next step or completes the enrollment.
type DripWorker struct {
	store        DripStore
	sender       StepSender
	triggers     TriggerProcessor
	tickInterval time.Duration
	batchSize    int
	log          *slog.Logger

	onSent func(ok bool)
}

func NewDripWorker(store DripStore, sender StepSender, triggers TriggerProcessor, tickInterval time.Duration, batchSize int, log *slog.Logger) *DripWorker {
	if log == nil {
		log = slog.Default()
	}
	return &DripWorker{
		store:        store,
		sender:       sender,
		triggers:     triggers,
		tickInterval: tickInterval,
		batchSize:    batchSize,
		log:          log,
	}
}

// WithSentHook registers a callback per send attempt, used for metrics.
func (w *DripWorker) WithSentHook(fn func(ok bool)) *DripWorker {
	w.onSent = fn
	return w
}

func (w *DripWorker) Start(ctx context.Context) {
	w.log.Info("drip worker started", "interval", w.tickInterval.String(), "batch", w.batchSize)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.ProcessBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("drip worker stopping")
			return
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch claims and dispatches one batch of due steps.
func (w *DripWorker) ProcessBatch(ctx context.Context) (sent, failed int) {
	due, err := w.store.ClaimDue(ctx, w.batchSize)
	if err != nil {
		w.log.Error("drip claim failed", "err", err)
		return 0, 0
	}

	for _, step := range due {
		if step.LeadEmail == "" {
			failed++
			w.fail(ctx, step, "lead has no email address")
			continue
		}

		messageID := uuid.New().String()
		if err := w.sender.SendStep(step.LeadEmail, step.LeadName, step.Subject, step.TemplateID, messageID); err != nil {
			failed++
			w.fail(ctx, step, err.Error())
			continue
		}

		var next *time.Time
		if step.StepIndex+1 < step.TotalSteps {
			t := time.Now().Add(step.NextDelay())
			next = &t
		}
		if err := w.store.MarkSent(ctx, step.EnrollmentID, step.StepIndex, next); err != nil {
			w.log.Error("drip mark sent failed", "enrollment_id", step.EnrollmentID, "err", err)
		}

		// The first step of a sequence is the first touch for the lead.
		if step.StepIndex == 0 && w.triggers != nil {
			if _, err := w.triggers.ProcessTrigger(ctx, step.LeadID, "", usecase.TriggerEmailSent, "", ""); err != nil {
				w.log.Warn("email_sent trigger failed", "lead_id", step.LeadID, "err", err)
			}
		}

		sent++
		if w.onSent != nil {
			w.onSent(true)
		}

		w.log.Info("drip step sent",
			"enrollment_id", step.EnrollmentID, "lead_id", step.LeadID,
			"step", step.StepIndex, "message_id", messageID)
	}

	if failed > 0 && w.onSent != nil {
		for i := 0; i < failed; i++ {
			w.onSent(false)
		}
	}

	return sent, failed
}

func (w *DripWorker) fail(ctx context.Context, step DueStep, reason string) {
	w.log.Error("drip step failed", "enrollment_id", step.EnrollmentID, "lead_id", step.LeadID, "reason", reason)
	if err := w.store.MarkFailed(ctx, step.EnrollmentID, reason); err != nil {
		w.log.Error("drip mark failed errored", "enrollment_id", step.EnrollmentID, "err", err)
	}
}

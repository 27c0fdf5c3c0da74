package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rsouza-dev/leadforge/internal/usecase"
)

type MockDripStore struct {
	mock.Mock
}

func (m *MockDripStore) ClaimDue(ctx context.Context, limit int) ([]DueStep, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]DueStep), args.Error(1)
}

func (m *MockDripStore) MarkSent(ctx context.Context, enrollmentID string, sentStep int, next *time.Time) error {
	args := m.Called(ctx, enrollmentID, sentStep, next)
	return args.Error(0)
}

func (m *MockDripStore) MarkFailed(ctx context.Context, enrollmentID, reason string) error {
	args := m.Called(ctx, enrollmentID, reason)
	return args.Error(0)
}

type MockStepSender struct {
	mock.Mock
}

func (m *MockStepSender) SendStep(to, name, subject, templateID, messageID string) error {
	args := m.Called(to, name, subject, templateID, messageID)
	return args.Error(0)
}

type MockTriggerProcessor struct {
	mock.Mock
}

func (m *MockTriggerProcessor) ProcessTrigger(ctx context.Context, leadID, actorID string, trigger usecase.Trigger, metadata, notes string) (*usecase.TriggerOutcome, error) {
	args := m.Called(ctx, leadID, actorID, trigger, metadata, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.TriggerOutcome), args.Error(1)
}

func middleStep() DueStep {
	return DueStep{
		EnrollmentID:   "enr-1",
		LeadID:         "lead-1",
		LeadEmail:      "lead@acme.example",
		LeadName:       "Ana",
		StepIndex:      1,
		TemplateID:     "tpl-followup",
		Subject:        "Checking in",
		TotalSteps:     3,
		NextDelayDays:  2,
		NextDelayHours: 12,
	}
}

func TestProcessBatch_SendsAndSchedulesNextStep(t *testing.T) {
	store := new(MockDripStore)
	sender := new(MockStepSender)
	w := NewDripWorker(store, sender, nil, time.Minute, 25, nil)

	step := middleStep()
	store.On("ClaimDue", mock.Anything, 25).Return([]DueStep{step}, nil)
	sender.On("SendStep", "lead@acme.example", "Ana", "Checking in", "tpl-followup", mock.Anything).Return(nil)
	store.On("MarkSent", mock.Anything, "enr-1", 1, mock.MatchedBy(func(next *time.Time) bool {
		if next == nil {
			return false
		}
		// Next fire lands roughly the step delay (2d12h) from now.
		expected := time.Now().Add(step.NextDelay())
		diff := next.Sub(expected)
		return diff > -time.Minute && diff < time.Minute
	})).Return(nil)

	sent, failed := w.ProcessBatch(context.Background())

	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)
	store.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestProcessBatch_LastStepCompletesEnrollment(t *testing.T) {
	store := new(MockDripStore)
	sender := new(MockStepSender)
	w := NewDripWorker(store, sender, nil, time.Minute, 25, nil)

	step := middleStep()
	step.StepIndex = 2 // final step of three
	store.On("ClaimDue", mock.Anything, 25).Return([]DueStep{step}, nil)
	sender.On("SendStep", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("MarkSent", mock.Anything, "enr-1", 2, (*time.Time)(nil)).Return(nil)

	sent, failed := w.ProcessBatch(context.Background())

	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)
	store.AssertExpectations(t)
}

func TestProcessBatch_SendFailureMarksEnrollmentFailed(t *testing.T) {
	store := new(MockDripStore)
	sender := new(MockStepSender)
	w := NewDripWorker(store, sender, nil, time.Minute, 25, nil)

	store.On("ClaimDue", mock.Anything, 25).Return([]DueStep{middleStep()}, nil)
	sender.On("SendStep", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp refused"))
	store.On("MarkFailed", mock.Anything, "enr-1", "smtp refused").Return(nil)

	sent, failed := w.ProcessBatch(context.Background())

	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, failed)
	store.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestProcessBatch_MissingEmailFailsWithoutSending(t *testing.T) {
	store := new(MockDripStore)
	sender := new(MockStepSender)
	w := NewDripWorker(store, sender, nil, time.Minute, 25, nil)

	step := middleStep()
	step.LeadEmail = ""
	store.On("ClaimDue", mock.Anything, 25).Return([]DueStep{step}, nil)
	store.On("MarkFailed", mock.Anything, "enr-1", "lead has no email address").Return(nil)

	sent, failed := w.ProcessBatch(context.Background())

	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, failed)
	sender.AssertNotCalled(t, "SendStep", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessBatch_FirstStepFiresEmailSentTrigger(t *testing.T) {
	store := new(MockDripStore)
	sender := new(MockStepSender)
	triggers := new(MockTriggerProcessor)
	w := NewDripWorker(store, sender, triggers, time.Minute, 25, nil)

	step := middleStep()
	step.StepIndex = 0
	store.On("ClaimDue", mock.Anything, 25).Return([]DueStep{step}, nil)
	sender.On("SendStep", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("MarkSent", mock.Anything, "enr-1", 0, mock.Anything).Return(nil)
	triggers.On("ProcessTrigger", mock.Anything, "lead-1", "", usecase.TriggerEmailSent, "", "").
		Return(&usecase.TriggerOutcome{LeadID: "lead-1"}, nil)

	sent, _ := w.ProcessBatch(context.Background())

	assert.Equal(t, 1, sent)
	triggers.AssertExpectations(t)
}

func TestProcessBatch_LaterStepsDoNotFireTrigger(t *testing.T) {
	store := new(MockDripStore)
	sender := new(MockStepSender)
	triggers := new(MockTriggerProcessor)
	w := NewDripWorker(store, sender, triggers, time.Minute, 25, nil)

	store.On("ClaimDue", mock.Anything, 25).Return([]DueStep{middleStep()}, nil)
	sender.On("SendStep", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("MarkSent", mock.Anything, "enr-1", 1, mock.Anything).Return(nil)

	w.ProcessBatch(context.Background())

	triggers.AssertNotCalled(t, "ProcessTrigger",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessBatch_ClaimFailureIsQuiet(t *testing.T) {
	store := new(MockDripStore)
	w := NewDripWorker(store, new(MockStepSender), nil, time.Minute, 25, nil)

	store.On("ClaimDue", mock.Anything, 25).Return(nil, errors.New("db down"))

	sent, failed := w.ProcessBatch(context.Background())

	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, failed)
}

func TestProcessBatch_SentHookSeesBothOutcomes(t *testing.T) {
	store := new(MockDripStore)
	sender := new(MockStepSender)

	good := middleStep()
	bad := middleStep()
	bad.EnrollmentID = "enr-2"
	bad.LeadEmail = ""

	store.On("ClaimDue", mock.Anything, 25).Return([]DueStep{good, bad}, nil)
	sender.On("SendStep", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("MarkSent", mock.Anything, "enr-1", 1, mock.Anything).Return(nil)
	store.On("MarkFailed", mock.Anything, "enr-2", mock.Anything).Return(nil)

	var oks, fails int
	w := NewDripWorker(store, sender, nil, time.Minute, 25, nil).WithSentHook(func(ok bool) {
		if ok {
			oks++
		} else {
			fails++
		}
	})

	sent, failed := w.ProcessBatch(context.Background())

	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, oks)
	assert.Equal(t, 1, fails)
}

func TestDueStep_NextDelay(t *testing.T) {
	step := DueStep{NextDelayDays: 2, NextDelayHours: 12}
	assert.Equal(t, 60*time.Hour, step.NextDelay())
}

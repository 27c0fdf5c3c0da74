package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rsouza-dev/leadforge/internal/entity"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLeadRepository) UpdateScore(ctx context.Context, id string, score int) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}

type MockStatusHistoryRepository struct {
	mock.Mock
}

func (m *MockStatusHistoryRepository) Append(ctx context.Context, entry *entity.StatusHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func TestProcessTrigger_EmailSentMovesNewToContacted(t *testing.T) {
	leads := new(MockLeadRepository)
	history := new(MockStatusHistoryRepository)
	w := NewStatusWorkflow(leads, history, nil)

	lead := &entity.Lead{ID: "lead-1", OwnerID: "owner-1", Status: entity.LeadStatusNew}
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)
	leads.On("UpdateStatus", mock.Anything, "lead-1", entity.LeadStatusContacted).Return(nil)
	history.On("Append", mock.Anything, mock.MatchedBy(func(e *entity.StatusHistoryEntry) bool {
		return e.LeadID == "lead-1" &&
			e.FromStatus == entity.LeadStatusNew &&
			e.ToStatus == entity.LeadStatusContacted &&
			e.Trigger == string(TriggerEmailSent) &&
			e.ActorKind == entity.ActorSystem
	})).Return(nil)

	outcome, err := w.ProcessTrigger(context.Background(), "lead-1", "", TriggerEmailSent, "", "")

	assert.NoError(t, err)
	assert.NotNil(t, outcome)
	assert.Equal(t, entity.LeadStatusNew, outcome.FromStatus)
	assert.Equal(t, entity.LeadStatusContacted, outcome.Status)
	leads.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestProcessTrigger_NoMatchingRuleIsANoOp(t *testing.T) {
	leads := new(MockLeadRepository)
	history := new(MockStatusHistoryRepository)
	w := NewStatusWorkflow(leads, history, nil)

	// email_sent only applies to new leads; a qualified lead matches nothing.
	lead := &entity.Lead{ID: "lead-1", Status: entity.LeadStatusQualified}
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)

	outcome, err := w.ProcessTrigger(context.Background(), "lead-1", "", TriggerEmailSent, "", "")

	assert.NoError(t, err)
	assert.Nil(t, outcome)
	leads.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestProcessTrigger_SecondIdenticalTriggerDoesNotReapply(t *testing.T) {
	leads := new(MockLeadRepository)
	history := new(MockStatusHistoryRepository)
	w := NewStatusWorkflow(leads, history, nil)

	// After the first email_sent the lead is contacted, where email_sent has
	// no rule. The second fire must change nothing.
	lead := &entity.Lead{ID: "lead-1", Status: entity.LeadStatusContacted}
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)

	outcome, err := w.ProcessTrigger(context.Background(), "lead-1", "", TriggerEmailSent, "", "")

	assert.NoError(t, err)
	assert.Nil(t, outcome)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestProcessTrigger_LeadNotFound(t *testing.T) {
	leads := new(MockLeadRepository)
	history := new(MockStatusHistoryRepository)
	w := NewStatusWorkflow(leads, history, nil)

	leads.On("FindByID", mock.Anything, "ghost").Return(nil, nil)

	outcome, err := w.ProcessTrigger(context.Background(), "ghost", "", TriggerEmailSent, "", "")

	assert.Nil(t, outcome)
	var derr *DomainError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, "LEAD_NOT_FOUND", derr.Code)
}

func TestProcessTrigger_HistoryWriteFailureIsTechnical(t *testing.T) {
	leads := new(MockLeadRepository)
	history := new(MockStatusHistoryRepository)
	w := NewStatusWorkflow(leads, history, nil)

	lead := &entity.Lead{ID: "lead-1", Status: entity.LeadStatusNew}
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)
	leads.On("UpdateStatus", mock.Anything, "lead-1", entity.LeadStatusContacted).Return(nil)
	history.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	outcome, err := w.ProcessTrigger(context.Background(), "lead-1", "", TriggerEmailSent, "", "")

	assert.Nil(t, outcome)
	var terr *TechnicalError
	assert.ErrorAs(t, err, &terr)
	assert.Equal(t, "HISTORY_WRITE_FAILED", terr.Code)
}

func TestResolveIn_HighestPriorityWins(t *testing.T) {
	rules := []TransitionRule{
		{Trigger: "t", From: []entity.LeadStatus{entity.LeadStatusNew}, To: entity.LeadStatusContacted, Priority: 10},
		{Trigger: "t", From: []entity.LeadStatus{entity.LeadStatusNew}, To: entity.LeadStatusQualified, Priority: 90},
	}

	rule, ok := resolveIn(rules, "t", entity.LeadStatusNew)

	assert.True(t, ok)
	assert.Equal(t, entity.LeadStatusQualified, rule.To)
}

func TestResolveIn_DeclarationOrderBreaksTies(t *testing.T) {
	rules := []TransitionRule{
		{Trigger: "t", From: []entity.LeadStatus{entity.LeadStatusNew}, To: entity.LeadStatusContacted, Priority: 50},
		{Trigger: "t", From: []entity.LeadStatus{entity.LeadStatusNew}, To: entity.LeadStatusLost, Priority: 50},
	}

	rule, ok := resolveIn(rules, "t", entity.LeadStatusNew)

	assert.True(t, ok)
	assert.Equal(t, entity.LeadStatusContacted, rule.To)
}

func TestResolveIn_NoMatch(t *testing.T) {
	_, ok := resolveIn(transitionRules, TriggerInactivityTimeout, entity.LeadStatusNew)
	assert.False(t, ok)
}

func TestUpdateLeadStatus_SameStatusSkipsHistory(t *testing.T) {
	leads := new(MockLeadRepository)
	history := new(MockStatusHistoryRepository)
	w := NewStatusWorkflow(leads, history, nil)

	lead := &entity.Lead{ID: "lead-1", OwnerID: "owner-1", Status: entity.LeadStatusQualified}
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)

	outcome, err := w.UpdateLeadStatus(context.Background(), "lead-1", "owner-1", entity.LeadStatusQualified, "", "")

	assert.NoError(t, err)
	assert.NotNil(t, outcome)
	assert.Equal(t, entity.LeadStatusQualified, outcome.Status)
	leads.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestUpdateLeadStatus_InvalidStatusRejected(t *testing.T) {
	w := NewStatusWorkflow(new(MockLeadRepository), new(MockStatusHistoryRepository), nil)

	outcome, err := w.UpdateLeadStatus(context.Background(), "lead-1", "owner-1", "bogus", "", "")

	assert.Nil(t, outcome)
	var derr *DomainError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, "INVALID_STATUS", derr.Code)
}

func TestUpdateLeadStatus_OwnershipEnforced(t *testing.T) {
	leads := new(MockLeadRepository)
	w := NewStatusWorkflow(leads, new(MockStatusHistoryRepository), nil)

	lead := &entity.Lead{ID: "lead-1", OwnerID: "owner-1", Status: entity.LeadStatusNew}
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)

	outcome, err := w.UpdateLeadStatus(context.Background(), "lead-1", "intruder", entity.LeadStatusQualified, "", "")

	assert.Nil(t, outcome)
	var derr *DomainError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, "ACCESS_DENIED", derr.Code)
}

func TestUpdateLeadStatus_AuditsWithDefaultTrigger(t *testing.T) {
	leads := new(MockLeadRepository)
	history := new(MockStatusHistoryRepository)
	w := NewStatusWorkflow(leads, history, nil)

	lead := &entity.Lead{ID: "lead-1", OwnerID: "owner-1", Status: entity.LeadStatusNew}
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)
	leads.On("UpdateStatus", mock.Anything, "lead-1", entity.LeadStatusNurturing).Return(nil)
	history.On("Append", mock.Anything, mock.MatchedBy(func(e *entity.StatusHistoryEntry) bool {
		return e.Trigger == "manual_update" && e.ActorKind == entity.ActorUser && e.ActorID == "owner-1"
	})).Return(nil)

	outcome, err := w.UpdateLeadStatus(context.Background(), "lead-1", "owner-1", entity.LeadStatusNurturing, "note", "")

	assert.NoError(t, err)
	assert.Equal(t, entity.LeadStatusNurturing, outcome.Status)
	history.AssertExpectations(t)
}

func TestActorKindFor(t *testing.T) {
	assert.Equal(t, entity.ActorUser, actorKindFor(TriggerManualQualify, 200))
	assert.Equal(t, entity.ActorWorkflow, actorKindFor(TriggerInactivityTimeout, 50))
	assert.Equal(t, entity.ActorSystem, actorKindFor(TriggerEmailSent, 100))
}

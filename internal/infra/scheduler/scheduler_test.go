package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rsouza-dev/leadforge/internal/entity"
	"github.com/rsouza-dev/leadforge/internal/usecase"
)

type countingRunner struct {
	mu     sync.Mutex
	owners []string
}

func (r *countingRunner) ExecuteAll(ctx context.Context, ownerID string) usecase.AggregateResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners = append(r.owners, ownerID)
	return usecase.AggregateResult{TotalWorkflows: 1, Successful: 1}
}

func (r *countingRunner) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}

type fakeJobStore struct {
	mu          sync.Mutex
	upserts     []string
	deactivated []string
	runs        int
	jobs        []entity.ScheduledJob
}

func (s *fakeJobStore) UpsertSchedule(ctx context.Context, ownerID, jobType, cronExpr string, next time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, ownerID)
	return nil
}

func (s *fakeJobStore) Deactivate(ctx context.Context, ownerID, jobType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivated = append(s.deactivated, ownerID)
	return nil
}

func (s *fakeJobStore) RecordRun(ctx context.Context, ownerID, jobType string, succeeded bool, ranAt, next time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	return nil
}

func (s *fakeJobStore) ListActive(ctx context.Context) ([]entity.ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs, nil
}

func TestScheduleForOwner_RejectsBadCron(t *testing.T) {
	s := New(&countingRunner{}, nil, nil)
	defer s.Stop()

	err := s.ScheduleForOwner("owner-1", "not a cron expression")
	assert.Error(t, err)
	assert.Equal(t, 0, s.TimerCount())
}

func TestScheduleForOwner_RegistersTimer(t *testing.T) {
	runner := &countingRunner{}
	store := &fakeJobStore{}
	s := New(runner, store, nil)
	defer s.Stop()

	err := s.ScheduleForOwner("owner-1", "0 9 * * *")
	assert.NoError(t, err)
	assert.Equal(t, 1, s.TimerCount())
	assert.Equal(t, []string{"owner-1"}, store.upserts)
}

func TestScheduleForOwner_ReplaceKeepsOneTimer(t *testing.T) {
	s := New(&countingRunner{}, nil, nil)
	defer s.Stop()

	assert.NoError(t, s.ScheduleForOwner("owner-1", "0 9 * * *"))
	assert.NoError(t, s.ScheduleForOwner("owner-1", "0 18 * * *"))
	assert.Equal(t, 1, s.TimerCount())
}

func TestScheduler_FiresAndRecordsRuns(t *testing.T) {
	runner := &countingRunner{}
	store := &fakeJobStore{}
	s := New(runner, store, nil)
	defer s.Stop()

	assert.NoError(t, s.ScheduleForOwner("owner-1", "@every 20ms"))

	assert.Eventually(t, func() bool {
		return runner.calls() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	store.mu.Lock()
	runs := store.runs
	store.mu.Unlock()
	assert.GreaterOrEqual(t, runs, 2)
}

func TestUnscheduleForOwner_StopsFiring(t *testing.T) {
	runner := &countingRunner{}
	store := &fakeJobStore{}
	s := New(runner, store, nil)
	defer s.Stop()

	assert.NoError(t, s.ScheduleForOwner("owner-1", "@every 20ms"))
	assert.Eventually(t, func() bool { return runner.calls() >= 1 }, 2*time.Second, 10*time.Millisecond)

	s.UnscheduleForOwner("owner-1")
	assert.Equal(t, 0, s.TimerCount())
	assert.Equal(t, []string{"owner-1"}, store.deactivated)

	settled := runner.calls()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, runner.calls())
}

func TestUnscheduleForOwner_UnknownOwnerIsANoOp(t *testing.T) {
	s := New(&countingRunner{}, nil, nil)
	defer s.Stop()

	s.UnscheduleForOwner("nobody")
	assert.Equal(t, 0, s.TimerCount())
}

func TestStart_InstallsDailyTimer(t *testing.T) {
	s := New(&countingRunner{}, nil, nil)
	s.Start()
	assert.Equal(t, 1, s.TimerCount())

	s.Stop()
	assert.Equal(t, 0, s.TimerCount())
}

func TestRestoreFromStore_ReregistersActiveJobs(t *testing.T) {
	runner := &countingRunner{}
	store := &fakeJobStore{jobs: []entity.ScheduledJob{
		{OwnerID: "owner-1", JobType: entity.JobTypeReengagement, CronExpr: "0 9 * * *"},
		{OwnerID: "owner-2", JobType: entity.JobTypeReengagement, CronExpr: "0 18 * * *"},
		{OwnerID: "owner-3", JobType: "something_else", CronExpr: "0 0 * * *"},
	}}
	s := New(runner, store, nil)
	defer s.Stop()

	s.RestoreFromStore(context.Background())

	assert.Equal(t, 2, s.TimerCount())
}

func TestScheduler_IndependentInstances(t *testing.T) {
	a := New(&countingRunner{}, nil, nil)
	b := New(&countingRunner{}, nil, nil)
	defer a.Stop()
	defer b.Stop()

	assert.NoError(t, a.ScheduleForOwner("owner-1", "0 9 * * *"))

	assert.Equal(t, 1, a.TimerCount())
	assert.Equal(t, 0, b.TimerCount())
}

func TestNextNineAM(t *testing.T) {
	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), nextNineAM(morning))

	afternoon := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), nextNineAM(afternoon))

	exactlyNine := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), nextNineAM(exactlyNine))
}

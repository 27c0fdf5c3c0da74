package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rsouza-dev/leadforge/internal/entity"
	"github.com/rsouza-dev/leadforge/internal/usecase"
)

const dailyKey = "daily"

// Runner is the workflow executor's fan-out entry point.
type Runner interface {
	ExecuteAll(ctx context.Context, ownerID string) usecase.AggregateResult
}

// JobStore mirrors timer registrations to storage so schedules survive
// restarts. Optional; a nil store keeps the scheduler purely in-memory.
type JobStore interface {
	UpsertSchedule(ctx context.Context, ownerID, jobType, cronExpr string, next time.Time) error
	Deactivate(ctx context.Context, ownerID, jobType string) error
	RecordRun(ctx context.Context, ownerID, jobType string, succeeded bool, ranAt, next time.Time) error
	ListActive(ctx context.Context) ([]entity.ScheduledJob, error)
}

// Scheduler owns a registry of named recurring timers, one per owner, plus a
// fixed daily timer. It is an explicit, injected type: separate instances do
// not share state, so tests can run side by side.
//
// Deployment constraint: the registry is single-process and cooperative.
// Running two instances of the service would fire every schedule twice; there
// is no distributed coordination or cross-instance dedupe.
type Scheduler struct {
	runner Runner
	store  JobStore
	log    *slog.Logger

	mu     sync.Mutex
	timers map[string]*timerEntry
}

type timerEntry struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func New(runner Runner, store JobStore, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		runner: runner,
		store:  store,
		log:    log,
		timers: make(map[string]*timerEntry),
	}
}

// Start installs the fixed 09:00 daily timer. Its body is a hook for a
// future fan-out across all owners; today it only logs the fire.
// TODO: enumerate active scheduled jobs and invoke the runner for each owner
// once the per-owner catch-up semantics are agreed.
func (s *Scheduler) Start() {
	s.register(dailyKey, nextNineAM, func(ctx context.Context) {
		s.log.Info("daily scheduler tick", "key", dailyKey)
	})
	s.log.Info("scheduler started")
}

// ScheduleForOwner registers (or replaces) the owner's recurring re-engagement
// timer. cronExpr is a standard five-field cron expression; parsing is
// delegated to robfig/cron.
func (s *Scheduler) ScheduleForOwner(ownerID, cronExpr string) error {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return err
	}

	key := ownerKey(ownerID)
	next := func(from time.Time) time.Time { return schedule.Next(from) }

	s.register(key, next, func(ctx context.Context) {
		ranAt := time.Now()
		agg := s.runner.ExecuteAll(ctx, ownerID)
		if s.store != nil {
			succeeded := agg.Failed == 0
			if err := s.store.RecordRun(ctx, ownerID, entity.JobTypeReengagement, succeeded, ranAt, schedule.Next(ranAt)); err != nil {
				s.log.Warn("scheduled job run record failed", "owner_id", ownerID, "err", err)
			}
		}
	})

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.UpsertSchedule(ctx, ownerID, entity.JobTypeReengagement, cronExpr, schedule.Next(time.Now())); err != nil {
			s.log.Warn("scheduled job upsert failed", "owner_id", ownerID, "err", err)
		}
	}

	s.log.Info("owner workflow schedule registered", "owner_id", ownerID, "cron", cronExpr)
	return nil
}

// UnscheduleForOwner cancels the owner's timer. A no-op when none exists.
// In-flight executions finish; only future fires are cancelled.
func (s *Scheduler) UnscheduleForOwner(ownerID string) {
	s.remove(ownerKey(ownerID))

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.Deactivate(ctx, ownerID, entity.JobTypeReengagement); err != nil {
			s.log.Warn("scheduled job deactivate failed", "owner_id", ownerID, "err", err)
		}
	}
}

// RestoreFromStore re-registers every persisted active schedule. Called once
// at boot; does nothing without a store.
func (s *Scheduler) RestoreFromStore(ctx context.Context) {
	if s.store == nil {
		return
	}
	jobs, err := s.store.ListActive(ctx)
	if err != nil {
		s.log.Error("scheduled job restore failed", "err", err)
		return
	}
	for _, job := range jobs {
		if job.JobType != entity.JobTypeReengagement {
			continue
		}
		if err := s.ScheduleForOwner(job.OwnerID, job.CronExpr); err != nil {
			s.log.Error("scheduled job restore: bad cron expression",
				"owner_id", job.OwnerID, "cron", job.CronExpr, "err", err)
		}
	}
	s.log.Info("scheduled jobs restored", "count", len(jobs))
}

// Stop cancels and clears every registered timer, daily and per-owner alike,
// and waits for their loops to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	entries := make([]*timerEntry, 0, len(s.timers))
	for key, e := range s.timers {
		e.cancel()
		entries = append(entries, e)
		delete(s.timers, key)
	}
	s.mu.Unlock()

	for _, e := range entries {
		<-e.done
	}
	s.log.Info("scheduler stopped")
}

// TimerCount reports the number of registered timers.
func (s *Scheduler) TimerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// register installs a timer loop under key, replacing any prior registration.
// Each fire is fully awaited before the next one for the same key is armed;
// fires across different keys run independently.
func (s *Scheduler) register(key string, next func(time.Time) time.Time, fire func(context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	entry := &timerEntry{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	if old, ok := s.timers[key]; ok {
		old.cancel()
	}
	s.timers[key] = entry
	s.mu.Unlock()

	go func() {
		defer close(entry.done)
		for {
			wait := time.Until(next(time.Now()))
			if wait < 0 {
				wait = 0
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.safeFire(ctx, key, fire)
			}
		}
	}()
}

func (s *Scheduler) remove(key string) {
	s.mu.Lock()
	entry, ok := s.timers[key]
	if ok {
		entry.cancel()
		delete(s.timers, key)
	}
	s.mu.Unlock()

	if ok {
		<-entry.done
	}
}

func (s *Scheduler) safeFire(ctx context.Context, key string, fire func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduler fire panic recovered", "key", key, "panic", r)
		}
	}()

	start := time.Now()
	fire(ctx)
	s.log.Info("scheduler fire completed", "key", key, "duration_ms", time.Since(start).Milliseconds())
}

func ownerKey(ownerID string) string {
	return "owner:" + ownerID
}

// nextNineAM returns the next local 09:00 after from.
func nextNineAM(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), 9, 0, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

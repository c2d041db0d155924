package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
)

// Enqueuer persists jobs for the background workers.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobs ...backlite.Task) ([]string, error)
}

// MaintenanceScheduler enqueues a fixed batch of housekeeping jobs on a cron
// schedule. The jobs themselves run on the task queue.
type MaintenanceScheduler struct {
	queue    Enqueuer
	schedule string
	jobs     func() []backlite.Task

	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.RWMutex
	running bool
}

// NewMaintenanceScheduler builds a scheduler. jobs is evaluated on every run so
// task payloads can pick up current settings.
func NewMaintenanceScheduler(queue Enqueuer, schedule string, jobs func() []backlite.Task) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		queue:    queue,
		schedule: schedule,
		jobs:     jobs,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(ctx); err != nil {
			log.Printf("Maintenance scheduler: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule maintenance: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.running = true
	log.Printf("Maintenance scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a run in progress to finish.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.running = false
	log.Printf("Maintenance scheduler: stopped")
}

// RunNow enqueues the maintenance batch immediately and returns the task ids.
func (s *MaintenanceScheduler) RunNow(ctx context.Context) ([]string, error) {
	jobs := s.jobs()
	if len(jobs) == 0 {
		return nil, nil
	}
	ids, err := s.queue.Enqueue(ctx, jobs...)
	if err != nil {
		return nil, fmt.Errorf("enqueue maintenance: %w", err)
	}
	log.Printf("Maintenance scheduler: enqueued %d jobs", len(ids))
	return ids, nil
}

func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NextRun is nil while the scheduler is stopped.
func (s *MaintenanceScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

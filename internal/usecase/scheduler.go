package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsPrep/internal/ports"
)

// Trigger abstracts the recurring clock drivers so tests can fake them.
type Trigger interface {
	Start(job func(time.Time))
	Stop()
	Next() time.Time
	Active() bool
}

// JobStatus reports one recurring job's schedule state.
type JobStatus struct {
	Name      string     `json:"name"`
	Scheduled bool       `json:"scheduled"`
	NextRun   *time.Time `json:"next_run,omitempty"`
}

// JobIngest and JobCleanup name the two recurring jobs.
const (
	JobIngest  = "news-processing"
	JobCleanup = "cleanup"
)

type jobEntry struct {
	name    string
	trigger Trigger
	run     func(time.Time)
}

// SchedulerDeps wires the recurring jobs.
type SchedulerDeps struct {
	Pipeline       *Pipeline
	Repository     ports.ArticleRepository
	Notifier       ports.Notifier
	IngestTrigger  Trigger
	CleanupTrigger Trigger
	RetentionDays  int
	Logger         *slog.Logger
}

// Scheduler owns the recurring job list and the manual trigger surface.
// It is constructed once at process start and handed to the HTTP layer;
// there is no module-level singleton.
type Scheduler struct {
	pipeline      *Pipeline
	repository    ports.ArticleRepository
	notifier      ports.Notifier
	retentionDays int
	logger        *slog.Logger
	jobs          []jobEntry
}

// NewScheduler returns a stopped scheduler; Start arms the triggers.
func NewScheduler(deps SchedulerDeps) *Scheduler {
	retention := deps.RetentionDays
	if retention <= 0 {
		retention = 30
	}

	s := &Scheduler{
		pipeline:      deps.Pipeline,
		repository:    deps.Repository,
		notifier:      deps.Notifier,
		retentionDays: retention,
		logger:        deps.Logger,
	}

	if deps.IngestTrigger != nil {
		s.jobs = append(s.jobs, jobEntry{
			name:    JobIngest,
			trigger: deps.IngestTrigger,
			run: func(time.Time) {
				saved, err := s.TriggerIngest(context.Background())
				if err != nil {
					s.warn("scheduled ingest failed", "error", err)
					return
				}
				s.info("scheduled ingest finished", "saved", saved)
			},
		})
	}

	if deps.CleanupTrigger != nil {
		s.jobs = append(s.jobs, jobEntry{
			name:    JobCleanup,
			trigger: deps.CleanupTrigger,
			run: func(time.Time) {
				deleted, err := s.TriggerCleanup(context.Background())
				if err != nil {
					s.warn("scheduled cleanup failed", "error", err)
					return
				}
				s.info("scheduled cleanup finished", "deleted", deleted)
			},
		})
	}

	return s
}

// Start arms every recurring trigger.
func (s *Scheduler) Start() {
	for _, job := range s.jobs {
		job.trigger.Start(job.run)
		s.info("job scheduled", "job", job.name)
	}
}

// Stop halts all recurring triggers. An in-flight run is not cancelled.
func (s *Scheduler) Stop() {
	for _, job := range s.jobs {
		job.trigger.Stop()
		s.info("job stopped", "job", job.name)
	}
}

// TriggerIngest runs the pipeline immediately, bypassing the schedule.
func (s *Scheduler) TriggerIngest(ctx context.Context) (int, error) {
	if s.pipeline == nil {
		return 0, fmt.Errorf("pipeline not configured")
	}

	saved, err := s.pipeline.Run(ctx)
	if err != nil {
		return 0, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyRun(ctx, saved); err != nil {
			s.warn("run notification failed", "error", err)
		}
	}

	return saved, nil
}

// TriggerCleanup deletes articles older than the retention window and
// returns how many were removed.
func (s *Scheduler) TriggerCleanup(ctx context.Context) (int, error) {
	if s.repository == nil {
		return 0, fmt.Errorf("repository not configured")
	}

	deleted, err := s.repository.DeleteOlderThan(ctx, s.retentionDays)
	if err != nil {
		return 0, fmt.Errorf("delete old articles: %w", err)
	}

	return len(deleted), nil
}

// Status reports each job's schedule state and next fire time.
func (s *Scheduler) Status() []JobStatus {
	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, job := range s.jobs {
		status := JobStatus{
			Name:      job.name,
			Scheduled: job.trigger.Active(),
		}
		if next := job.trigger.Next(); !next.IsZero() {
			status.NextRun = &next
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func (s *Scheduler) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Scheduler) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

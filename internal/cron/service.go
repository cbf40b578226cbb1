package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/Shashankphatkure/equico-app/pkg/metrics"
	robfig "github.com/robfig/cron/v3"
)

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
}

// Service runs registered jobs on their cron schedules. Every run takes the
// job's distributed lock first, so only one worker executes a given tick.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
}

// NewService builds a cron service and validates every schedule up front.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	for _, entry := range registry.Entries() {
		if _, err := robfig.ParseStandard(entry.Schedule); err != nil {
			return nil, fmt.Errorf("job %s: invalid schedule %q: %w", entry.Job.Name(), entry.Schedule, err)
		}
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
	}, nil
}

// Run schedules every job and blocks until ctx is canceled, then waits for
// in-flight jobs to finish.
func (s *Service) Run(ctx context.Context) error {
	scheduler := robfig.New(robfig.WithLocation(time.UTC))
	for _, entry := range s.registry.Entries() {
		job := entry.Job
		if _, err := scheduler.AddFunc(entry.Schedule, func() { s.runLocked(ctx, job) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name(), err)
		}
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"job": job.Name(), "schedule": entry.Schedule}), "job scheduled")
	}

	scheduler.Start()
	<-ctx.Done()
	s.logg.Info(ctx, "cron service context canceled")
	<-scheduler.Stop().Done()
	return ctx.Err()
}

// RunOnce executes every job immediately, honouring the locks.
func (s *Service) RunOnce(ctx context.Context) {
	for _, entry := range s.registry.Entries() {
		s.runLocked(ctx, entry.Job)
	}
}

func (s *Service) runLocked(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	token, ok, err := s.lock.Acquire(jobCtx, job.Name())
	if err != nil {
		s.logg.Error(jobCtx, "lock acquire failed", err)
		s.recordFailure(job.Name())
		return
	}
	if !ok {
		s.logg.Info(jobCtx, "another cron instance holds the lock; skipping")
		if s.metrics != nil {
			s.metrics.IncSkipped(job.Name())
		}
		return
	}
	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(jobCtx), job.Name(), token); relErr != nil {
			s.logg.Error(jobCtx, "failed to release cron lock", relErr)
		}
	}()
	s.runJob(jobCtx, job)
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "event", "cron.job")
	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.observeDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(job.Name())
		return
	}
	s.logg.Info(jobCtx, "job completed")
	s.recordSuccess(job.Name())
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) recordSuccess(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncFailure(job)
}

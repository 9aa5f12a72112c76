// Package scheduler runs the periodic maintenance jobs (stale payment
// sweep, expired gig closing) on robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

const jobTimeout = 5 * time.Minute

// Job is a unit of periodic work
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron. Overlapping runs of the same job are skipped
// and panics are recovered.
type Scheduler struct {
	cron *cron.Cron
	log  *logging.Logger

	mu   sync.Mutex
	ctx  context.Context
	jobs map[string]Job
}

// New creates a stopped scheduler
func New(log *logging.Logger) *Scheduler {
	logger := cronLogger{log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		log:  log,
		ctx:  context.Background(),
		jobs: make(map[string]Job),
	}
}

// Add registers job under name on a cron spec such as "@every 1h" or
// "0 3 * * *".
func (s *Scheduler) Add(spec, name string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", spec, name, err)
	}
	s.jobs[name] = job
	return nil
}

// Start begins firing jobs. Job contexts derive from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	n := len(s.jobs)
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("scheduler started", "jobs", n)
}

// Stop stops firing and waits for running jobs to return
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunNow runs a registered job synchronously, outside its schedule
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) error {
	s.mu.Lock()
	parent := s.ctx
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()

	start := time.Now()
	err := job(ctx)
	if err != nil {
		s.log.Error("scheduled job failed", "job", name, "duration", time.Since(start), "err", err)
		return err
	}
	s.log.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
	return nil
}

// cronLogger adapts the application logger to cron.Logger
type cronLogger struct {
	log *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}

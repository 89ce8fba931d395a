package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"stable-app-go/pkg/logger"
)

const defaultRunTimeout = time.Minute

type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

type Recorder interface {
	RecordSweep(removed int64, err error)
}

// Job removes expired announcements of every stable.
type Job struct {
	sweeper  Sweeper
	recorder Recorder
	log      logger.Logger
	timeout  time.Duration
}

func NewJob(sweeper Sweeper, recorder Recorder, log logger.Logger) *Job {
	return &Job{
		sweeper:  sweeper,
		recorder: recorder,
		log:      log,
		timeout:  defaultRunTimeout,
	}
}

func (j *Job) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	removed, err := j.sweeper.SweepExpired(ctx)
	if j.recorder != nil {
		j.recorder.RecordSweep(removed, err)
	}
	if err != nil {
		j.log.InternalError("sweep: announcements failed", err)
		return fmt.Errorf("sweep announcements: %w", err)
	}

	j.log.Info("sweep: announcements done", "removed", removed, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Scheduler runs a Job on a cron schedule such as "@every 1h" or "0 3 * * *".
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger
}

func NewScheduler(schedule string, job *Job, log logger.Logger) (*Scheduler, error) {
	cronLog := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	if _, err := c.AddFunc(schedule, func() {
		_ = job.Run(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.log.Info("sweep: scheduler started")
	s.cron.Start()
}

// Stop prevents new runs and waits for a running one until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("sweep: scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.InternalError("cron: "+msg, err, keysAndValues...)
}

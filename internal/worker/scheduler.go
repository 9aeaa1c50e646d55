package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vytor/numguess/internal/logger"
)

const (
	DefaultInterval   = 5 * time.Minute
	DefaultRetryDelay = time.Minute
)

var errPanicked = errors.New("job panicked")

// Scheduler runs a job immediately and then repeatedly. After a success it
// waits interval before the next run; after a failure it waits retryDelay.
type Scheduler struct {
	job        Job
	interval   time.Duration
	retryDelay time.Duration
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	log        *logger.Logger
}

func NewScheduler(job Job, interval, retryDelay time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	log := logger.Default().WithPrefix("scheduler").WithField("job", job.Name())
	log.Debug("creating scheduler with interval %v and retry delay %v", interval, retryDelay)
	return &Scheduler{
		job:        job,
		interval:   interval,
		retryDelay: retryDelay,
		log:        log,
	}
}

// Start launches the run loop. It returns immediately; the loop ends when ctx
// is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.log.Info("starting scheduler")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			wait := s.interval
			if err := s.runOnce(ctx); err != nil {
				if ctx.Err() != nil {
					s.log.Debug("scheduler shutting down (context cancelled)")
					return
				}
				wait = s.retryDelay
				s.log.Warn("retrying in %v", wait)
			}

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				s.log.Debug("scheduler shutting down (context cancelled)")
				return
			case <-timer.C:
			}
		}
	}()
}

func (s *Scheduler) runOnce(ctx context.Context) (err error) {
	jobCtx := logger.NewContext(ctx, s.log)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("job panicked after %v: %v", time.Since(start), r)
			err = errPanicked
		}
	}()

	s.log.Debug("starting job")
	if err = s.job.Run(jobCtx); err != nil {
		s.log.Error("job failed after %v: %v", time.Since(start), err)
		return err
	}
	s.log.Debug("job completed in %v", time.Since(start))
	return nil
}

// Stop cancels the run loop and waits for an in-flight run to return.
func (s *Scheduler) Stop() {
	s.log.Info("stopping scheduler")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

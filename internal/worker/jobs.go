package worker

import (
	"context"

	"github.com/vytor/numguess/internal/logger"
)

// Job is a unit of background work.
type Job interface {
	Run(context.Context) error
	Name() string
}

// EnsureStatisticsJob backfills statistics for users that registered
// without one.
type EnsureStatisticsJob struct {
	Stats StatisticsReconciler
}

func (j *EnsureStatisticsJob) Name() string { return "ensure_statistics" }

func (j *EnsureStatisticsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	created, err := j.Stats.ReconcileMissing(ctx)
	if err != nil {
		log.Error("statistics reconciliation stopped after %d rows: %v", created, err)
		return err
	}
	log.Debug("statistics reconciliation created %d rows", created)
	return nil
}

package worker

import "context"

// StatisticsReconciler creates statistics rows that are missing for
// registered users. It is declared here so worker does not import services.
type StatisticsReconciler interface {
	ReconcileMissing(ctx context.Context) (int, error)
}

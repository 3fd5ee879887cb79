package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RelaySyncJobName is the name of the message relay reconciliation job
const RelaySyncJobName = "relay_sync"

// RelayReconciler defines the interface for re-deriving relay messages from
// the order store. The interface keeps the job decoupled from the service
// package so reconciliation and direct notification can be disabled
// independently.
type RelayReconciler interface {
	// Reconcile backfills missing message rows for orders whose status
	// changed since the given instant. Returns the number of rows created.
	Reconcile(ctx context.Context, since time.Time) (int, error)
}

// RelaySyncJob polls the order store on a fixed interval and re-derives
// relay messages that a direct notification failed to produce. Each run
// scans from slightly before the previous run's start, so a write racing
// the scan is picked up next time.
type RelaySyncJob struct {
	reconciler RelayReconciler
	logger     *zap.Logger
	timeout    time.Duration

	mu       sync.Mutex
	lastScan time.Time
}

// NewRelaySyncJob creates a new relay reconciliation job.
// The timeout controls how long a single reconciliation run may take.
func NewRelaySyncJob(reconciler RelayReconciler, logger *zap.Logger, timeout time.Duration) *RelaySyncJob {
	return &RelaySyncJob{
		reconciler: reconciler,
		logger:     logger,
		timeout:    timeout,
		lastScan:   time.Now().Add(-24 * time.Hour),
	}
}

// Run executes one reconciliation pass.
// This is called by the scheduler according to the poll interval.
func (j *RelaySyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	j.mu.Lock()
	since := j.lastScan
	scanStart := time.Now()
	j.mu.Unlock()

	created, err := j.reconciler.Reconcile(ctx, since)
	if err != nil {
		j.logger.Error("relay reconciliation failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(scanStart)))
		return
	}

	j.mu.Lock()
	j.lastScan = scanStart.Add(-time.Second)
	j.mu.Unlock()

	if created > 0 {
		j.logger.Info("relay reconciliation backfilled messages",
			zap.Int("created", created),
			zap.Duration("duration", time.Since(scanStart)))
	}
}

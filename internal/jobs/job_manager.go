package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// Intervals configures how often each job runs. Zero values use the job
// defaults.
type Intervals struct {
	TrackingPoll  time.Duration
	WalletRefresh time.Duration
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	scheduler Scheduler
	poller    *TrackingPollerJob
	wallet    *WalletRefreshJob
	intervals Intervals
	logger    *slog.Logger
}

// NewJobManager wires the jobs onto one scheduler. A nil wallet job is
// allowed and leaves the wallet cache to refresh on read.
func NewJobManager(
	scheduler Scheduler,
	poller *TrackingPollerJob,
	walletJob *WalletRefreshJob,
	intervals Intervals,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		scheduler: scheduler,
		poller:    poller,
		wallet:    walletJob,
		intervals: intervals,
		logger:    logger.With("component", "job_manager"),
	}
}

// StartAll registers every job and starts the scheduler.
// Returns an error if any job fails to register; nothing is started then.
func (jm *JobManager) StartAll() error {
	if err := jm.poller.Schedule(jm.scheduler, jm.intervals.TrackingPoll); err != nil {
		return fmt.Errorf("failed to schedule tracking poller job: %w", err)
	}
	if jm.wallet != nil {
		if err := jm.wallet.Schedule(jm.scheduler, jm.intervals.WalletRefresh); err != nil {
			return fmt.Errorf("failed to schedule wallet refresh job: %w", err)
		}
	}

	jm.scheduler.Start()
	jm.logger.Info("Jobs started")
	return nil
}

// StopAll stops the scheduler and waits for running jobs to return.
func (jm *JobManager) StopAll() {
	jm.scheduler.Stop()
	jm.logger.Info("Jobs stopped")
}

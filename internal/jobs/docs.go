// Package jobs provides scheduled background tasks for the shipping service.
//
// Jobs register on a Scheduler. CronScheduler backs it with
// github.com/robfig/cron/v3 in production; ManualScheduler runs tasks only
// on Tick and drives the jobs in tests.
//
// # Available Jobs
//
// 1. TrackingPollerJob - every 30s by default, refreshes tracking for each open shipment
// 2. WalletRefreshJob - every 5m by default, refreshes the cached wallet balance
//
// # Usage
//
//	poller := jobs.NewTrackingPollerJob(openShipmentsHandler, &refreshHandler, 4, 200, logger)
//	walletJob := jobs.NewWalletRefreshJob(walletCache, logger)
//	jobManager := jobs.NewJobManager(jobs.NewCronScheduler(logger), poller, walletJob, jobs.Intervals{}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Overlap and busy orders
//
// A task still running when its next tick fires skips that tick. The poller
// refreshes with a non-blocking per-order lock; an order held by a user
// operation is counted as busy and retried on the next sweep.
//
// # Error Handling
//
// - A failed refresh of one order is logged and never stops the sweep
// - A provider-side cancellation of an open shipment opens a reconciliation issue
// - Stopping the scheduler cancels the sweep's dispatch; started refreshes finish
package jobs

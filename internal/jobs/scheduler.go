package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs registered tasks at fixed intervals. Tasks receive a
// context that is cancelled when the scheduler stops.
type Scheduler interface {
	Every(interval time.Duration, name string, task func(ctx context.Context)) error
	Start()
	Stop()
}

// CronScheduler is the production Scheduler. A task still running when its
// next tick fires skips that tick.
type CronScheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

func NewCronScheduler(logger *slog.Logger) *CronScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &CronScheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With("component", "scheduler"),
	}
}

// Every registers task under an "@every" schedule.
func (s *CronScheduler) Every(interval time.Duration, name string, task func(ctx context.Context)) error {
	if interval <= 0 {
		return fmt.Errorf("schedule %s: interval must be positive, got %s", name, interval)
	}
	_, err := s.cron.AddFunc("@every "+interval.String(), func() {
		task(s.ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.InfoContext(s.ctx, "task scheduled", "task", name, "interval", interval.String())
	return nil
}

func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop cancels running tasks and waits for them to return.
func (s *CronScheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// ManualScheduler runs tasks only when Tick is called. Tests drive the
// poller and the wallet refresh with it.
type ManualScheduler struct {
	mu      sync.Mutex
	tasks   []manualTask
	started bool
}

type manualTask struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Every(interval time.Duration, name string, task func(ctx context.Context)) error {
	if interval <= 0 {
		return fmt.Errorf("schedule %s: interval must be positive, got %s", name, interval)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, manualTask{name: name, interval: interval, run: task})
	return nil
}

func (s *ManualScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
}

func (s *ManualScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
}

// Tick runs every registered task once, in registration order, if the
// scheduler is started.
func (s *ManualScheduler) Tick(ctx context.Context) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	tasks := append([]manualTask(nil), s.tasks...)
	s.mu.Unlock()

	for _, t := range tasks {
		t.run(ctx)
	}
}

// Tasks lists the registered task names.
func (s *ManualScheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tasks))
	for _, t := range s.tasks {
		names = append(names, t.name)
	}
	return names
}

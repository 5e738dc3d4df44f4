// Package scheduler triggers reminder runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/robfig/cron/v3"
)

// DefaultSpec runs every six hours on the hour.
const DefaultSpec = "0 */6 * * *"

// Runner executes one reminder run.
type Runner interface {
	Run(ctx context.Context, opts reminder.RunOptions) (*reminder.Result, error)
}

// Config controls when runs happen.
type Config struct {
	Spec       string
	RunOnStart bool
	Timeout    time.Duration
}

// RunRecord describes the most recent run.
type RunRecord struct {
	StartedAt time.Time
	Duration  time.Duration
	Result    *reminder.Result
	Err       error
}

// Scheduler owns the cron instance that drives reminder runs.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *slog.Logger
	cfg    Config
	entry  cron.EntryID
	wg     sync.WaitGroup

	mu   sync.Mutex
	last *RunRecord
}

// ValidateSpec reports whether spec is a valid five-field cron expression or descriptor.
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// New creates a scheduler. Overlapping scheduled runs are skipped.
func New(runner Runner, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}

	cronLog := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		runner: runner,
		logger: logger,
		cfg:    cfg,
	}

	entry, err := s.cron.AddFunc(cfg.Spec, func() { s.execute("schedule") })
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", cfg.Spec, err)
	}
	s.entry = entry
	return s, nil
}

// Start begins scheduling; with RunOnStart an immediate run happens in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	if s.cfg.RunOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.execute("startup")
		}()
	}
	s.logger.Info("reminder scheduler started", "spec", s.cfg.Spec, "next_run", s.Next())
}

// Stop stops scheduling and waits for in-flight runs, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next scheduled run time.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// LastRun returns the most recent run, if any.
func (s *Scheduler) LastRun() (RunRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return RunRecord{}, false
	}
	return *s.last, true
}

func (s *Scheduler) execute(trigger string) {
	_, _ = s.run(context.Background(), trigger)
}

func (s *Scheduler) run(ctx context.Context, trigger string) (*reminder.Result, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	started := time.Now()
	res, err := s.runner.Run(ctx, reminder.RunOptions{})
	rec := &RunRecord{StartedAt: started, Duration: time.Since(started), Result: res, Err: err}

	s.mu.Lock()
	s.last = rec
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled reminder run failed", "trigger", trigger, "error", err)
		return nil, err
	}
	s.logger.Info("scheduled reminder run finished",
		"trigger", trigger,
		"generated", res.Generated,
		"candidates", res.Candidates,
		"duration", rec.Duration,
	)
	return res, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

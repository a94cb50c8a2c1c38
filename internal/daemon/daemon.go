// Package daemon schedules rotation invocations and enforces single-instance
// execution via a lock file.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"mural/internal/config"
	"mural/internal/engine"
	"mural/internal/logging"
	"mural/internal/notifications"
)

// Runner executes one rotation invocation. *engine.Engine satisfies it.
type Runner interface {
	RunOnce(ctx context.Context) (engine.Status, error)
}

// Status represents daemon runtime information.
type Status struct {
	Running     bool
	PID         int
	LastStatus  string
	LastError   string
	LastRunAt   time.Time
	NextRunAt   time.Time
	LockPath    string
	StateFile   string
	JournalPath string
}

// Daemon drives the runner on the configured schedule.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	runner Runner

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	runNow  chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	mu         sync.Mutex
	lastStatus engine.Status
	lastError  string
	lastRunAt  time.Time
	nextRunAt  time.Time
}

// New constructs a daemon around an engine runner.
func New(cfg *config.Config, runner Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "murald.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		runner:   runner,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		runNow:   make(chan struct{}, 1),
	}, nil
}

// Start acquires the daemon lock and launches the scheduler loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another murald instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	d.running.Store(true)
	go d.loop(d.ctx)

	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("interval", d.cfg.Schedule.Interval),
		logging.String("detect_interval", d.cfg.Schedule.DetectInterval))
	return nil
}

// Stop halts the scheduler loop and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.done != nil {
		<-d.done
	}
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", err,
			logging.String("lock", d.lockPath))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// TriggerRun asks the scheduler to run immediately. It never blocks; a second
// trigger while one is already pending is reported, not queued.
func (d *Daemon) TriggerRun() (bool, string) {
	if !d.running.Load() {
		return false, "daemon is not running"
	}
	select {
	case d.runNow <- struct{}{}:
		return true, "rotation run scheduled"
	default:
		return false, "a run is already pending"
	}
}

// TestNotification sends a test message using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns a snapshot of the scheduler state.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{
		Running:     d.running.Load(),
		PID:         os.Getpid(),
		LastStatus:  string(d.lastStatus),
		LastError:   d.lastError,
		LastRunAt:   d.lastRunAt,
		NextRunAt:   d.nextRunAt,
		LockPath:    d.lockPath,
		StateFile:   d.cfg.Paths.StateFile,
		JournalPath: filepath.Join(d.cfg.Paths.LogDir, "journal.db"),
	}
}

func (d *Daemon) loop(ctx context.Context) {
	defer close(d.done)

	if d.cfg.Schedule.RunOnStartup {
		d.invoke(ctx)
	}

	for {
		wait := nextInterval(d.cfg, d.snapshotStatus())
		d.setNextRun(time.Now().Add(wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-d.runNow:
			timer.Stop()
			d.invoke(ctx)
		case <-timer.C:
			d.invoke(ctx)
		}
	}
}

func (d *Daemon) invoke(ctx context.Context) {
	status, err := d.runner.RunOnce(ctx)
	if err != nil {
		logging.WarnWithContext(d.logger, "rotation run failed", err,
			logging.String("status", string(status)))
	}

	d.mu.Lock()
	d.lastStatus = status
	d.lastRunAt = time.Now()
	d.lastError = ""
	if err != nil {
		d.lastError = err.Error()
	}
	d.mu.Unlock()

	if days := d.cfg.Logging.RetentionDays; days > 0 {
		maxAge := time.Duration(days) * 24 * time.Hour
		if err := logging.CleanupOldLogs(d.cfg.Paths.LogDir, maxAge); err != nil {
			logging.WarnWithContext(d.logger, "log retention pass failed", err)
		}
	}
}

func (d *Daemon) snapshotStatus() engine.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastStatus
}

func (d *Daemon) setNextRun(at time.Time) {
	d.mu.Lock()
	d.nextRunAt = at
	d.mu.Unlock()
}

// nextInterval selects the sleep before the next invocation: the short detect
// interval while a prerequisite is missing, the rotation interval otherwise.
func nextInterval(cfg *config.Config, last engine.Status) time.Duration {
	if last.Waiting() {
		return cfg.Schedule.DetectIntervalValue
	}
	return cfg.Schedule.IntervalValue
}

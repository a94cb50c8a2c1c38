// Package wallpaper discovers a Wallpaper Engine installation and drives its
// control protocol to open wallpapers.
package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultApplyRetries = 3
	defaultApplyDelay   = 1500 * time.Millisecond
)

// Runner abstracts process launching for testability.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Applier is what the activation pipeline needs from the engine.
type Applier interface {
	Apply(ctx context.Context, entry string) error
}

// Option configures the engine.
type Option func(*Engine)

// WithRunner injects a custom process runner (primarily for tests).
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithRetry overrides the apply retry policy.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(e *Engine) {
		if attempts > 0 {
			e.retries = attempts
		}
		if delay >= 0 {
			e.delay = delay
		}
	}
}

// Engine drives one Wallpaper Engine installation.
type Engine struct {
	exe     string
	retries int
	delay   time.Duration
	runner  Runner
}

// New wraps the executable at exe.
func New(exe string, opts ...Option) (*Engine, error) {
	if exe == "" {
		return nil, errors.New("wallpaper engine executable required")
	}
	engine := &Engine{
		exe:     exe,
		retries: defaultApplyRetries,
		delay:   defaultApplyDelay,
		runner:  processRunner{},
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// InstallDir returns the engine's install directory.
func (e *Engine) InstallDir() string {
	return filepath.Dir(e.exe)
}

// BackupDir returns the per-item projects/backup directory the engine reads
// local copies from.
func (e *Engine) BackupDir(id uint64) string {
	return filepath.Join(e.InstallDir(), "projects", "backup", strconv.FormatUint(id, 10))
}

// Apply opens the wallpaper entry file via the control protocol, retrying a
// few times because the engine ignores control commands while starting up.
func (e *Engine) Apply(ctx context.Context, entry string) error {
	if entry == "" {
		return errors.New("entry file required")
	}
	args := []string{"-control", "openWallpaper", "-file", entry}

	var lastErr error
	for attempt := 1; attempt <= e.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.runner.Run(ctx, e.exe, args); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt < e.retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.delay):
			}
		}
	}
	return fmt.Errorf("apply wallpaper after %d attempts: %w", e.retries, lastErr)
}

type processRunner struct{}

func (processRunner) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}

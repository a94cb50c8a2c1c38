// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"
	"time"

	"mural/internal/config"
)

// NewConfig returns a validated default config with every path rooted in a
// per-test temp directory and a placeholder API key.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()

	cfg := config.Default()
	cfg.Steam.APIKey = "test-key"
	cfg.Paths.StateFile = filepath.Join(base, "state.json")
	cfg.Paths.ActivationLog = filepath.Join(base, "applied.log")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SocketPath = filepath.Join(base, "murald.sock")
	cfg.Paths.TrashDir = filepath.Join(base, "trash")
	cfg.Paths.WorkshopRoot = filepath.Join(base, "workshop")

	// Load normally parses these; tests bypass the file round-trip.
	cfg.Schedule.IntervalValue, _ = time.ParseDuration(cfg.Schedule.Interval)
	cfg.Schedule.DetectIntervalValue, _ = time.ParseDuration(cfg.Schedule.DetectInterval)

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

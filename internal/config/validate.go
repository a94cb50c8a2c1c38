package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. An empty steam.api_key is
// allowed: fetching then degrades to the public community browse pages.
func (c *Config) Validate() error {
	if err := c.validateFilters(); err != nil {
		return err
	}
	if err := c.validateRotation(); err != nil {
		return err
	}
	if err := c.validateCleanup(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateNetwork(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFilters() error {
	if err := ensurePositiveMap(map[string]int{
		"filters.numperpage":     c.Filters.NumPerPage,
		"filters.max_pages":      c.Filters.MaxPages,
		"filters.min_candidates": c.Filters.MinCandidates,
	}); err != nil {
		return err
	}
	if c.Filters.NumPerPage > 100 {
		return errors.New("filters.numperpage must be at most 100")
	}
	return nil
}

func (c *Config) validateRotation() error {
	if c.Rotation.MaxAttemptsPerRun <= 0 {
		return errors.New("rotation.max_attempts_per_run must be positive")
	}
	return nil
}

func (c *Config) validateCleanup() error {
	if c.Cleanup.KeepLastN < 1 {
		return errors.New("cleanup.keep_last_n must be >= 1")
	}
	if c.Cleanup.UseRecycleBin && strings.TrimSpace(c.Paths.TrashDir) == "" {
		return errors.New("paths.trash_dir must be set when cleanup.use_recycle_bin is true")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.IntervalValue <= 0 {
		return errors.New("schedule.interval must be a positive duration")
	}
	if c.Schedule.DetectIntervalValue <= 0 {
		return errors.New("schedule.detect_interval must be a positive duration")
	}
	return nil
}

func (c *Config) validateNetwork() error {
	return ensurePositiveMap(map[string]int{
		"network.request_timeout":       c.Network.RequestTimeout,
		"network.rate_limit_per_minute": c.Network.RateLimitPerMinute,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

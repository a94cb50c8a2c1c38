package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSteam()
	c.normalizeFilters()
	c.normalizeSort()
	c.normalizeRotation()
	c.normalizeCleanup()
	if err := c.normalizeSchedule(); err != nil {
		return err
	}
	c.normalizeNetwork()
	c.normalizeLogging()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.Steamcmd, err = expandPath(strings.TrimSpace(c.Paths.Steamcmd)); err != nil {
		return fmt.Errorf("paths.steamcmd: %w", err)
	}
	if c.Paths.WallpaperEngine, err = expandPath(strings.TrimSpace(c.Paths.WallpaperEngine)); err != nil {
		return fmt.Errorf("paths.wallpaper_engine: %w", err)
	}
	if c.Paths.WorkshopRoot, err = expandPath(strings.TrimSpace(c.Paths.WorkshopRoot)); err != nil {
		return fmt.Errorf("paths.workshop_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateFile) == "" {
		c.Paths.StateFile = defaultStateFile
	}
	if c.Paths.StateFile, err = expandPath(c.Paths.StateFile); err != nil {
		return fmt.Errorf("paths.state_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.ActivationLog) == "" {
		c.Paths.ActivationLog = defaultActivationLog
	}
	if c.Paths.ActivationLog, err = expandPath(c.Paths.ActivationLog); err != nil {
		return fmt.Errorf("paths.activation_log: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = defaultSocketPath
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.TrashDir) == "" {
		c.Paths.TrashDir = defaultTrashDir
	}
	if c.Paths.TrashDir, err = expandPath(c.Paths.TrashDir); err != nil {
		return fmt.Errorf("paths.trash_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSteam() {
	c.Steam.APIKey = strings.TrimSpace(c.Steam.APIKey)
	if c.Steam.APIKey == "" {
		if value, ok := os.LookupEnv("STEAM_API_KEY"); ok {
			c.Steam.APIKey = strings.TrimSpace(value)
		}
	}
	c.Steam.Username = strings.TrimSpace(c.Steam.Username)
	if c.Steam.Username == "" {
		if value, ok := os.LookupEnv("STEAM_USERNAME"); ok {
			c.Steam.Username = strings.TrimSpace(value)
		}
	}
	c.Steam.Password = strings.TrimSpace(c.Steam.Password)
	if c.Steam.Password == "" {
		if value, ok := os.LookupEnv("STEAM_PASSWORD"); ok {
			c.Steam.Password = strings.TrimSpace(value)
		}
	}
	c.Steam.GuardCode = strings.TrimSpace(c.Steam.GuardCode)
	if c.Steam.GuardCode == "" {
		if value, ok := os.LookupEnv("STEAM_GUARD_CODE"); ok {
			c.Steam.GuardCode = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeFilters() {
	if c.Filters.NumPerPage <= 0 {
		c.Filters.NumPerPage = defaultNumPerPage
	}
	if c.Filters.NumPerPage > 100 {
		c.Filters.NumPerPage = 100
	}
	// pages is the older spelling of the per-tag page cap; the larger of the
	// two wins so either key alone works.
	if c.Filters.Pages > c.Filters.MaxPages {
		c.Filters.MaxPages = c.Filters.Pages
	}
	if c.Filters.MaxPages <= 0 {
		c.Filters.MaxPages = defaultMaxPages
	}
	if c.Filters.MinCandidates <= 0 {
		c.Filters.MinCandidates = defaultMinCandidates
	}
}

func (c *Config) normalizeSort() {
	c.Sort.Method = strings.TrimSpace(c.Sort.Method)
	if c.Sort.Method == "" {
		c.Sort.Method = defaultSortMethod
	}
}

func (c *Config) normalizeRotation() {
	if c.Rotation.MaxAttemptsPerRun <= 0 {
		c.Rotation.MaxAttemptsPerRun = defaultMaxAttemptsPerRun
	}
}

func (c *Config) normalizeCleanup() {
	if c.Cleanup.KeepLastN < 1 {
		c.Cleanup.KeepLastN = 1
	}
}

func (c *Config) normalizeSchedule() error {
	c.Schedule.Interval = strings.TrimSpace(c.Schedule.Interval)
	if c.Schedule.Interval == "" {
		c.Schedule.Interval = defaultInterval
	}
	interval, err := time.ParseDuration(c.Schedule.Interval)
	if err != nil {
		return fmt.Errorf("schedule.interval: %w", err)
	}
	c.Schedule.IntervalValue = interval

	c.Schedule.DetectInterval = strings.TrimSpace(c.Schedule.DetectInterval)
	if c.Schedule.DetectInterval == "" {
		c.Schedule.DetectInterval = defaultDetectInterval
	}
	detect, err := time.ParseDuration(c.Schedule.DetectInterval)
	if err != nil {
		return fmt.Errorf("schedule.detect_interval: %w", err)
	}
	c.Schedule.DetectIntervalValue = detect
	return nil
}

func (c *Config) normalizeNetwork() {
	c.Network.HTTPSProxy = strings.TrimSpace(c.Network.HTTPSProxy)
	if c.Network.RequestTimeout <= 0 {
		c.Network.RequestTimeout = defaultRequestTimeout
	}
	if c.Network.MaxRetries < 0 {
		c.Network.MaxRetries = 0
	}
	if c.Network.RateLimitPerMinute <= 0 {
		c.Network.RateLimitPerMinute = defaultRateLimitPerMinute
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

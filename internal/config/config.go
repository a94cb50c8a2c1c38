package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	Steamcmd        string `toml:"steamcmd"`
	WallpaperEngine string `toml:"wallpaper_engine"`
	WorkshopRoot    string `toml:"workshop_root"`
	StateFile       string `toml:"state_file"`
	ActivationLog   string `toml:"activation_log"`
	LogDir          string `toml:"log_dir"`
	SocketPath      string `toml:"socket_path"`
	TrashDir        string `toml:"trash_dir"`
}

// Steam contains Steam Web API and steamcmd credentials.
type Steam struct {
	APIKey    string `toml:"api_key"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	GuardCode string `toml:"guard_code"`
}

// Filters contains the operator's candidate filter. List-valued fields are
// comma-separated, matching how operators write them.
type Filters struct {
	ShowOnly             string `toml:"show_only"`
	Tags                 string `toml:"tags"`
	Types                string `toml:"types"`
	Age                  string `toml:"age"`
	Resolution           string `toml:"resolution"`
	Exclude              string `toml:"exclude"`
	TitleExcludeContains string `toml:"title_exclude_contains"`
	CreatorExcludeIDs    string `toml:"creator_exclude_ids"`
	NumPerPage           int    `toml:"numperpage"`
	Pages                int    `toml:"pages"`
	MaxPages             int    `toml:"max_pages"`
	MinCandidates        int    `toml:"min_candidates"`
}

// Sort selects the Workshop query ordering.
type Sort struct {
	Method string `toml:"method"`
}

// Rotation controls the per-invocation rotation walk.
type Rotation struct {
	SubscribedIDs     string `toml:"subscribed_ids"`
	OnePerRun         bool   `toml:"one_per_run"`
	RotateIfAllDone   bool   `toml:"rotate_if_all_done"`
	MaxAttemptsPerRun int    `toml:"max_attempts_per_run"`
}

// Cleanup controls retention of previously activated items.
type Cleanup struct {
	DeletePrevious bool   `toml:"delete_previous"`
	KeepLastN      int    `toml:"keep_last_n"`
	ProtectedIDs   string `toml:"protected_ids"`
	UseRecycleBin  bool   `toml:"use_recycle_bin"`
}

// Schedule contains daemon timing. Interval fields are duration strings
// ("90m", "1h30m", "45s"); parsed values are populated during load.
type Schedule struct {
	RunOnStartup   bool   `toml:"run_on_startup"`
	Interval       string `toml:"interval"`
	DetectInterval string `toml:"detect_interval"`

	IntervalValue       time.Duration `toml:"-"`
	DetectIntervalValue time.Duration `toml:"-"`
}

// Network contains HTTP transport settings for the Steam Web API.
type Network struct {
	HTTPSProxy         string `toml:"https_proxy"`
	RequestTimeout     int    `toml:"request_timeout"`
	MaxRetries         int    `toml:"max_retries"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Applied        bool   `toml:"applied"`
	Errors         bool   `toml:"errors"`
}

// Config encapsulates all configuration values for Mural.
//
// Configuration sections by subsystem:
//   - Paths: steamcmd, Wallpaper Engine, workshop tree, state and log files
//   - Steam: Web API key and steamcmd credentials
//   - Filters: the candidate filter and fetch sizing knobs
//   - Sort: Workshop query ordering
//   - Rotation: per-invocation rotation walk behavior
//   - Cleanup: retention over previously activated items
//   - Schedule: daemon run intervals
//   - Network: HTTP timeouts, retries, and rate limiting
//   - Logging: log format, level, and retention
//   - Notifications: ntfy push notification settings
type Config struct {
	Paths         Paths         `toml:"paths"`
	Steam         Steam         `toml:"steam"`
	Filters       Filters       `toml:"filters"`
	Sort          Sort          `toml:"sort"`
	Rotation      Rotation      `toml:"rotation"`
	Cleanup       Cleanup       `toml:"cleanup"`
	Schedule      Schedule      `toml:"schedule"`
	Network       Network       `toml:"network"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mural/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/mural/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mural.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.LogDir,
		filepath.Dir(c.Paths.StateFile),
		filepath.Dir(c.Paths.ActivationLog),
		filepath.Dir(c.Paths.SocketPath),
	}
	if c.Cleanup.UseRecycleBin && strings.TrimSpace(c.Paths.TrashDir) != "" {
		dirs = append(dirs, c.Paths.TrashDir)
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SplitList splits a comma-separated config value into trimmed, non-empty
// entries. The first occurrence wins for duplicates.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

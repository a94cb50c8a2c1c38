package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"mural/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("STEAM_API_KEY", "test-key")

	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Filters.NumPerPage != 100 {
		t.Fatalf("numperpage default = %d, want 100", cfg.Filters.NumPerPage)
	}
	if cfg.Schedule.IntervalValue != 90*time.Minute {
		t.Fatalf("interval = %v, want 90m", cfg.Schedule.IntervalValue)
	}
	if !cfg.Rotation.OnePerRun || !cfg.Rotation.RotateIfAllDone {
		t.Fatal("rotation defaults should enable one_per_run and rotate_if_all_done")
	}
	if cfg.Steam.APIKey != "test-key" {
		t.Fatalf("api key = %q, want env fallback", cfg.Steam.APIKey)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := writeConfig(t, `
[steam]
api_key = "abc123"

[filters]
show_only = "Nature, Landscape"
resolution = "3840 x 2160"
min_candidates = 12

[sort]
method = "Top Rated"

[schedule]
interval = "1h30m"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Steam.APIKey != "abc123" {
		t.Fatalf("api key = %q", cfg.Steam.APIKey)
	}
	if cfg.Filters.MinCandidates != 12 {
		t.Fatalf("min_candidates = %d", cfg.Filters.MinCandidates)
	}
	if cfg.Sort.Method != "Top Rated" {
		t.Fatalf("sort method = %q", cfg.Sort.Method)
	}
	if cfg.Schedule.IntervalValue != 90*time.Minute {
		t.Fatalf("interval = %v, want 1h30m", cfg.Schedule.IntervalValue)
	}
}

func TestLoadRejectsBadInterval(t *testing.T) {
	path := writeConfig(t, `
[steam]
api_key = "abc123"

[schedule]
interval = "ninety minutes"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unparseable interval")
	} else if !strings.Contains(err.Error(), "schedule.interval") {
		t.Fatalf("error should name the field, got: %v", err)
	}
}

func TestLoadRejectsOversizedPage(t *testing.T) {
	path := writeConfig(t, `
[steam]
api_key = "abc123"

[filters]
numperpage = 100
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Filters.NumPerPage != 100 {
		t.Fatalf("numperpage = %d", cfg.Filters.NumPerPage)
	}
}

func TestPagesAliasMergesIntoMaxPages(t *testing.T) {
	path := writeConfig(t, `
[steam]
api_key = "abc123"

[filters]
pages = 7
max_pages = 4
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Filters.MaxPages != 7 {
		t.Fatalf("max_pages = %d, want 7 (larger alias wins)", cfg.Filters.MaxPages)
	}

	path = writeConfig(t, `
[steam]
api_key = "abc123"

[filters]
pages = 2
`)
	cfg, _, _, err = config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Filters.MaxPages != 2 {
		t.Fatalf("max_pages = %d, want 2 from pages alone", cfg.Filters.MaxPages)
	}
}

func TestKeylessConfigValidates(t *testing.T) {
	t.Setenv("STEAM_API_KEY", "")
	os.Unsetenv("STEAM_API_KEY")

	// A missing key is not an error: fetching falls back to the community
	// browse pages.
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Steam.APIKey != "" {
		t.Fatalf("api key = %q, want empty", cfg.Steam.APIKey)
	}
}

func TestSubscribedIDsSkipAPIKeyRequirement(t *testing.T) {
	t.Setenv("STEAM_API_KEY", "")
	os.Unsetenv("STEAM_API_KEY")

	path := writeConfig(t, `
[rotation]
subscribed_ids = "123456789, 987654321"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := config.SplitList(cfg.Rotation.SubscribedIDs); len(got) != 2 {
		t.Fatalf("subscribed ids = %v", got)
	}
}

func TestSplitList(t *testing.T) {
	got := config.SplitList(" a, b ,, a , c ")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitList = %v, want %v", got, want)
	}
	if got := config.SplitList(""); len(got) != 0 {
		t.Fatalf("SplitList(empty) = %v", got)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := config.ExpandPath("~/wallpapers")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Join(home, "wallpapers") {
		t.Fatalf("expanded = %q", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	t.Setenv("STEAM_API_KEY", "test-key")

	base := t.TempDir()
	path := writeConfig(t, `
[steam]
api_key = "abc123"

[paths]
log_dir = "`+filepath.Join(base, "logs")+`"
state_file = "`+filepath.Join(base, "state", "state.json")+`"
activation_log = "`+filepath.Join(base, "state", "applied.log")+`"
socket_path = "`+filepath.Join(base, "run", "murald.sock")+`"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	for _, dir := range []string{filepath.Join(base, "logs"), filepath.Join(base, "state"), filepath.Join(base, "run")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("directory %q missing: %v", dir, err)
		}
	}
}

package wallpaper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mural/internal/workshop"
)

// exeNames are the Wallpaper Engine binaries, preferred order.
var exeNames = []string{"wallpaper64.exe", "wallpaper32.exe", "wallpaper_engine.exe"}

// steamInstallDirs are the usual Wallpaper Engine install locations probed
// when no path is configured.
var steamInstallDirs = []string{
	`C:\Program Files (x86)\Steam\steamapps\common\wallpaper_engine`,
	`C:\Program Files\Steam\steamapps\common\wallpaper_engine`,
	`D:\Steam\steamapps\common\wallpaper_engine`,
	`D:\SteamLibrary\steamapps\common\wallpaper_engine`,
	`E:\SteamLibrary\steamapps\common\wallpaper_engine`,
}

// steamLibraryRoots are the usual Steam library locations probed for the
// workshop content tree.
var steamLibraryRoots = []string{
	`C:\Program Files (x86)\Steam`,
	`C:\Program Files\Steam`,
	`D:\Steam`,
	`D:\SteamLibrary`,
	`E:\SteamLibrary`,
}

// ErrEngineNotFound reports that no Wallpaper Engine executable could be
// located; the daemon keeps retrying on its detect interval.
var ErrEngineNotFound = errors.New("wallpaper engine executable not found")

// ErrWorkshopNotFound reports that no workshop content root could be located.
var ErrWorkshopNotFound = errors.New("workshop content root not found")

// Locate resolves the Wallpaper Engine executable. A configured value may be
// the executable itself or its install directory; with no value the usual
// Steam install locations are probed.
func Locate(configured string) (string, error) {
	configured = strings.TrimSpace(configured)
	if configured != "" {
		info, err := os.Stat(configured)
		if err != nil {
			return "", fmt.Errorf("%w: configured path %q: %v", ErrEngineNotFound, configured, err)
		}
		if !info.IsDir() {
			return configured, nil
		}
		if exe := exeIn(configured); exe != "" {
			return exe, nil
		}
		return "", fmt.Errorf("%w: no executable under configured directory %q", ErrEngineNotFound, configured)
	}
	for _, dir := range steamInstallDirs {
		if exe := exeIn(dir); exe != "" {
			return exe, nil
		}
	}
	return "", ErrEngineNotFound
}

func exeIn(dir string) string {
	for _, name := range exeNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// LocateWorkshopRoot resolves the workshop content tree for appid 431960,
// probing common Steam library roots when nothing is configured.
func LocateWorkshopRoot(configured string) (string, error) {
	configured = strings.TrimSpace(configured)
	if configured != "" {
		if info, err := os.Stat(configured); err == nil && info.IsDir() {
			return configured, nil
		}
		return "", fmt.Errorf("%w: configured root %q unusable", ErrWorkshopNotFound, configured)
	}
	appID := strconv.Itoa(workshop.AppID)
	for _, root := range steamLibraryRoots {
		candidate := filepath.Join(root, "steamapps", "workshop", "content", appID)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", ErrWorkshopNotFound
}

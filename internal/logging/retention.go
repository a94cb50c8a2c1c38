package logging

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanupOldLogs removes rotated log files in dir older than maxAge. The
// active mural.log is never removed. Missing directories are not an error.
func CleanupOldLogs(dir string, maxAge time.Duration) error {
	if dir == "" || maxAge <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == "mural.log" || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
	return nil
}

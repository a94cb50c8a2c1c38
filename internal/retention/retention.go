// Package retention enforces bounded cleanup over previously activated
// workshop items: the current item, a short tail of recent activations, and
// operator-protected ids survive; everything else is removed from each storage
// location best-effort.
package retention

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"mural/internal/logging"
)

// Policy describes one cleanup pass.
type Policy struct {
	KeepLastN     int
	Protected     map[uint64]struct{}
	UseRecycleBin bool
	TrashDir      string
	Logger        *slog.Logger
}

// Result summarizes a cleanup pass.
type Result struct {
	Deleted []uint64
	Failed  []uint64
}

// KeepSet computes the survivors: the current item, the most recent
// keepLastN-1 logged ids other than current (logged is newest first), and all
// protected ids.
func KeepSet(logged []uint64, current uint64, keepLastN int, protected map[uint64]struct{}) map[uint64]struct{} {
	keep := map[uint64]struct{}{}
	if current != 0 {
		keep[current] = struct{}{}
	}
	remaining := keepLastN - 1
	for _, id := range logged {
		if remaining <= 0 {
			break
		}
		if id == current {
			continue
		}
		if _, dup := keep[id]; dup {
			continue
		}
		keep[id] = struct{}{}
		remaining--
	}
	for id := range protected {
		keep[id] = struct{}{}
	}
	return keep
}

// DeleteSet is (logged ∪ onDisk) minus keep, ascending for stable output.
func DeleteSet(logged, onDisk []uint64, keep map[uint64]struct{}) []uint64 {
	candidates := map[uint64]struct{}{}
	for _, id := range logged {
		candidates[id] = struct{}{}
	}
	for _, id := range onDisk {
		candidates[id] = struct{}{}
	}
	var out []uint64
	for id := range candidates {
		if _, kept := keep[id]; kept {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ScanRoot lists the numeric item directories under a storage root. A missing
// root is an empty listing.
func ScanRoot(root string) []uint64 {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var out []uint64
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.ParseUint(entry.Name(), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Cleanup removes everything outside the keep set from each storage root.
// logged must be newest first. Per-location failures are logged and counted,
// never raised; retention is advisory, not transactional.
func (p Policy) Cleanup(current uint64, logged []uint64, roots []string) Result {
	keep := KeepSet(logged, current, p.KeepLastN, p.Protected)

	var onDisk []uint64
	for _, root := range roots {
		onDisk = append(onDisk, ScanRoot(root)...)
	}
	deletions := DeleteSet(logged, onDisk, keep)

	var result Result
	for _, id := range deletions {
		failed := false
		removedAnywhere := false
		for _, root := range roots {
			target := filepath.Join(root, strconv.FormatUint(id, 10))
			if _, err := os.Stat(target); err != nil {
				continue
			}
			if err := p.dispose(target, id); err != nil {
				failed = true
				logging.WarnWithContext(p.Logger, "retention removal failed", err,
					logging.Uint64("workshop_id", id),
					logging.String("path", target),
					logging.String(logging.FieldImpact, "item remains on disk until the next pass"),
				)
				continue
			}
			removedAnywhere = true
		}
		switch {
		case failed:
			result.Failed = append(result.Failed, id)
		case removedAnywhere:
			result.Deleted = append(result.Deleted, id)
		}
	}
	return result
}

func (p Policy) dispose(target string, id uint64) error {
	if !p.UseRecycleBin {
		return os.RemoveAll(target)
	}
	if p.TrashDir == "" {
		return fmt.Errorf("recycle bin enabled without a trash directory")
	}
	if err := os.MkdirAll(p.TrashDir, 0o755); err != nil {
		return fmt.Errorf("create trash directory: %w", err)
	}
	dest := filepath.Join(p.TrashDir, fmt.Sprintf("%d-%s", id, time.Now().UTC().Format("20060102T150405")))
	if err := os.Rename(target, dest); err != nil {
		return fmt.Errorf("move to trash: %w", err)
	}
	return nil
}

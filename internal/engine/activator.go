package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"mural/internal/logging"
	"mural/internal/mirror"
	"mural/internal/services/steamcmd"
	"mural/internal/services/wallpaper"
)

// itemActivator runs the full activation pipeline for one workshop item:
// download, mirror into the trees Wallpaper Engine reads, locate the entry
// file, and open it via the control protocol.
type itemActivator struct {
	downloader   steamcmd.Downloader // nil when no steamcmd is configured
	mirrorer     mirror.Mirrorer
	applier      wallpaper.Applier
	backupDirFor func(id uint64) string // nil when the install dir is unknown
	workshopRoot string
	logger       *slog.Logger
}

func (a itemActivator) Activate(ctx context.Context, id uint64) error {
	itemDir := filepath.Join(a.workshopRoot, strconv.FormatUint(id, 10))

	if a.downloader != nil {
		staged, err := a.downloader.Download(ctx, id)
		if err != nil {
			return fmt.Errorf("download item %d: %w", id, err)
		}
		if staged != itemDir {
			if err := a.mirrorer.Mirror(staged, itemDir); err != nil {
				return fmt.Errorf("mirror item %d into workshop tree: %w", id, err)
			}
		}
		if a.backupDirFor != nil {
			// The backup copy is a convenience for the engine UI; a
			// failed mirror there must not fail the activation.
			if err := a.mirrorer.Mirror(staged, a.backupDirFor(id)); err != nil {
				logging.WarnWithContext(a.logger, "backup mirror failed", err,
					logging.Uint64("workshop_id", id),
					logging.String(logging.FieldImpact, "engine backup copy is stale"),
				)
			}
		}
	}

	entry, err := a.locateEntry(itemDir, id)
	if err != nil {
		return err
	}
	if err := a.applier.Apply(ctx, entry); err != nil {
		return fmt.Errorf("apply item %d: %w", id, err)
	}
	return nil
}

// locateEntry finds the entry file in the workshop tree, falling back to the
// engine's backup copy when the tree is missing or empty.
func (a itemActivator) locateEntry(itemDir string, id uint64) (string, error) {
	entry, err := wallpaper.FindEntry(itemDir)
	if err == nil {
		return entry, nil
	}
	if a.backupDirFor != nil {
		if backupEntry, backupErr := wallpaper.FindEntry(a.backupDirFor(id)); backupErr == nil {
			return backupEntry, nil
		}
	}
	return "", fmt.Errorf("locate entry for item %d: %w", id, err)
}

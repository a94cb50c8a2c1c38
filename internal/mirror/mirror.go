// Package mirror copies a downloaded workshop item into the directories
// Wallpaper Engine reads from. A mirror is a full replace: the destination is
// rebuilt from the source so stale files from a previous version never linger.
package mirror

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Mirrorer replicates a source directory to a destination.
type Mirrorer interface {
	Mirror(src, dst string) error
}

// DirMirrorer mirrors via remove-and-copy on the local filesystem.
type DirMirrorer struct{}

// Mirror replaces dst with a copy of src. Symlinks are skipped; workshop
// items are plain file trees.
func (DirMirrorer) Mirror(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat mirror source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mirror source %q is not a directory", src)
	}

	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("clear mirror destination: %w", err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("create mirror destination: %w", err)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case !d.Type().IsRegular():
			return nil
		default:
			return copyFile(path, target)
		}
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %q: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %q: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %q: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %q: %w", dst, err)
	}
	return nil
}

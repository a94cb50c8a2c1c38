package wallpaper

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindEntry locates the file Wallpaper Engine opens for an item directory:
// project.json when present, then index.html, then the first video file found
// walking the tree in sorted order.
func FindEntry(dir string) (string, error) {
	for _, name := range []string{"project.json", "index.html"} {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	var videos []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".mp4", ".webm":
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan item directory: %w", err)
	}
	if len(videos) == 0 {
		return "", fmt.Errorf("no entry file under %q", dir)
	}
	sort.Strings(videos)
	return videos[0], nil
}

package mirror_test

import (
	"os"
	"path/filepath"
	"testing"

	"mural/internal/mirror"
)

func TestMirrorReplacesDestination(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	if err := os.MkdirAll(filepath.Join(src, "materials"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "project.json"), []byte(`{"file":"scene.pkg"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "materials", "tex.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Stale file from a previous version must not survive the mirror.
	if err := os.WriteFile(filepath.Join(dst, "old.mp4"), []byte("stale"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := (mirror.DirMirrorer{}).Mirror(src, dst); err != nil {
		t.Fatalf("mirror: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dst, "project.json"))
	if err != nil || string(got) != `{"file":"scene.pkg"}` {
		t.Fatalf("project.json = %q, %v", got, err)
	}
	if _, err := os.Stat(filepath.Join(dst, "materials", "tex.png")); err != nil {
		t.Fatalf("nested file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "old.mp4")); !os.IsNotExist(err) {
		t.Fatal("stale destination file should be gone")
	}
}

func TestMirrorMissingSource(t *testing.T) {
	err := (mirror.DirMirrorer{}).Mirror(filepath.Join(t.TempDir(), "absent"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

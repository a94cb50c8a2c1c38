package steamcmd_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"mural/internal/services/steamcmd"
)

type fakeExecutor struct {
	lines  []string
	err    error
	binary string
	args   []string
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string, onOutput func(string)) error {
	f.binary = binary
	f.args = args
	for _, line := range f.lines {
		onOutput(line)
	}
	return f.err
}

func TestDownloadSuccessMarker(t *testing.T) {
	binary := filepath.Join(t.TempDir(), "steamcmd.sh")
	execer := &fakeExecutor{lines: []string{
		"Loading Steam API...OK",
		`Success. Downloaded item 123456789 to "content" (123 bytes)`,
	}}
	client, err := steamcmd.New(binary, steamcmd.Credentials{}, steamcmd.WithExecutor(execer))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	dir, err := client.Download(context.Background(), 123456789)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	want := filepath.Join(filepath.Dir(binary), "steamapps", "workshop", "content", "431960", "123456789")
	if dir != want {
		t.Fatalf("content dir = %q, want %q", dir, want)
	}

	wantArgs := []string{"+login", "anonymous", "+workshop_download_item", "431960", "123456789", "validate", "+quit"}
	if !reflect.DeepEqual(execer.args, wantArgs) {
		t.Fatalf("args = %v, want %v", execer.args, wantArgs)
	}
}

func TestDownloadErrorMarker(t *testing.T) {
	client, err := steamcmd.New("/opt/steamcmd/steamcmd.sh", steamcmd.Credentials{},
		steamcmd.WithExecutor(&fakeExecutor{lines: []string{"ERROR! Download item 42 failed (Failure)."}}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := client.Download(context.Background(), 42); err == nil {
		t.Fatal("expected failure from error marker")
	}
}

func TestDownloadFallsBackToContentDir(t *testing.T) {
	base := t.TempDir()
	binary := filepath.Join(base, "steamcmd.sh")
	contentDir := filepath.Join(base, "steamapps", "workshop", "content", "431960", "777777")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(contentDir, "scene.pkg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	client, err := steamcmd.New(binary, steamcmd.Credentials{},
		steamcmd.WithExecutor(&fakeExecutor{lines: []string{"no markers at all"}}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	dir, err := client.Download(context.Background(), 777777)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if dir != contentDir {
		t.Fatalf("dir = %q, want %q", dir, contentDir)
	}
}

func TestDownloadCredentialArgs(t *testing.T) {
	execer := &fakeExecutor{lines: []string{"Success. Downloaded item"}}
	client, err := steamcmd.New("/opt/steamcmd/steamcmd.sh",
		steamcmd.Credentials{Username: "user", Password: "pass", GuardCode: "ABCDE"},
		steamcmd.WithExecutor(execer))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := client.Download(context.Background(), 55); err != nil {
		t.Fatalf("download: %v", err)
	}
	if got := execer.args[:4]; !reflect.DeepEqual(got, []string{"+login", "user", "pass", "ABCDE"}) {
		t.Fatalf("login args = %v", got)
	}
}

func TestDownloadExecutorError(t *testing.T) {
	client, err := steamcmd.New("/opt/steamcmd/steamcmd.sh", steamcmd.Credentials{},
		steamcmd.WithExecutor(&fakeExecutor{err: errors.New("binary missing")}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := client.Download(context.Background(), 1000000); err == nil {
		t.Fatal("expected executor error to surface")
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := steamcmd.New("  ", steamcmd.Credentials{}); err == nil {
		t.Fatal("expected error for empty binary path")
	}
}

package steamcmd

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "steamcmd.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

// The real executor scans stdout and stderr from separate goroutines; the
// callback must still see lines one at a time so Download's unlocked marker
// tracking stays safe. Run under -race this fails if delivery overlaps.
func TestCommandExecutorSerializesOutput(t *testing.T) {
	script := writeScript(t, `
i=0
while [ $i -lt 200 ]; do
  echo "Success. Downloaded item 42 to \"content\" (1 bytes)"
  echo "Success. Downloaded item 42 to \"content\" (1 bytes)" >&2
  i=$((i+1))
done
`)

	var lines []string
	err := commandExecutor{}.Run(context.Background(), script, nil, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(lines) != 400 {
		t.Fatalf("got %d lines, want 400", len(lines))
	}
}

func TestDownloadWithRealExecutorBothStreams(t *testing.T) {
	script := writeScript(t, `
echo "Loading Steam API...OK"
echo "Success. Downloaded item 42 to \"content\" (1 bytes)"
echo "Success. Downloaded item 42 to \"content\" (1 bytes)" >&2
`)

	client, err := New(script, Credentials{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	dir, err := client.Download(context.Background(), 42)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join("steamapps", "workshop", "content", "431960", "42")) {
		t.Fatalf("unexpected content dir %q", dir)
	}
}

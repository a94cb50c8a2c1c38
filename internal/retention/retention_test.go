package retention_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"mural/internal/retention"
)

func TestKeepAndDeleteSets(t *testing.T) {
	logged := []uint64{5, 4, 3, 2, 1} // newest first
	keep := retention.KeepSet(logged, 5, 2, map[uint64]struct{}{1: {}})

	for _, id := range []uint64{5, 4, 1} {
		if _, ok := keep[id]; !ok {
			t.Fatalf("id %d missing from keep set %v", id, keep)
		}
	}
	if len(keep) != 3 {
		t.Fatalf("keep set = %v, want exactly {5,4,1}", keep)
	}

	got := retention.DeleteSet(logged, nil, keep)
	if !reflect.DeepEqual(got, []uint64{2, 3}) {
		t.Fatalf("delete set = %v, want [2 3]", got)
	}
}

func TestDeleteSetIncludesOrphanDirs(t *testing.T) {
	keep := retention.KeepSet([]uint64{9}, 9, 1, nil)
	got := retention.DeleteSet([]uint64{9}, []uint64{9, 77}, keep)
	if !reflect.DeepEqual(got, []uint64{77}) {
		t.Fatalf("delete set = %v, want orphan [77]", got)
	}
}

func makeItemDir(t *testing.T, root string, id uint64) string {
	t.Helper()
	dir := filepath.Join(root, strconv.FormatUint(id, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "project.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return dir
}

func TestCleanupRemovesAcrossRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	for _, id := range []uint64{1, 2, 3, 4, 5} {
		makeItemDir(t, rootA, id)
	}
	makeItemDir(t, rootB, 3)

	policy := retention.Policy{KeepLastN: 2, Protected: map[uint64]struct{}{1: {}}}
	result := policy.Cleanup(5, []uint64{5, 4, 3, 2, 1}, []string{rootA, rootB})

	if !reflect.DeepEqual(result.Deleted, []uint64{2, 3}) {
		t.Fatalf("deleted = %v, want [2 3]", result.Deleted)
	}
	for _, id := range []uint64{1, 4, 5} {
		if _, err := os.Stat(filepath.Join(rootA, strconv.FormatUint(id, 10))); err != nil {
			t.Fatalf("kept id %d should survive: %v", id, err)
		}
	}
	for _, path := range []string{
		filepath.Join(rootA, "2"),
		filepath.Join(rootA, "3"),
		filepath.Join(rootB, "3"),
	} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("path %q should be gone", path)
		}
	}
}

func TestCleanupRecycleBin(t *testing.T) {
	root := t.TempDir()
	trash := filepath.Join(t.TempDir(), "trash")
	makeItemDir(t, root, 2)
	makeItemDir(t, root, 9)

	policy := retention.Policy{KeepLastN: 1, UseRecycleBin: true, TrashDir: trash}
	result := policy.Cleanup(9, []uint64{9, 2}, []string{root})

	if !reflect.DeepEqual(result.Deleted, []uint64{2}) {
		t.Fatalf("deleted = %v", result.Deleted)
	}
	entries, err := os.ReadDir(trash)
	if err != nil || len(entries) != 1 {
		t.Fatalf("trash entries = %v (err %v), want one moved dir", entries, err)
	}
	if got := entries[0].Name(); got[:2] != "2-" {
		t.Fatalf("trash entry %q should carry the id prefix", got)
	}
}

func TestScanRootMissing(t *testing.T) {
	if got := retention.ScanRoot(filepath.Join(t.TempDir(), "absent")); got != nil {
		t.Fatalf("scan = %v, want nil for missing root", got)
	}
}

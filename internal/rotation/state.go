package rotation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	historyCap      = 500
	trackedCap      = 30
	failedRecentCap = 50
)

// State is the persisted rotation record. It is rewritten in full on every
// save; there is no concurrent-writer protection by design, the daemon is the
// single writer.
type State struct {
	Cursor       int      `json:"cursor"`
	History      []uint64 `json:"history"`
	TrackedIDs   []uint64 `json:"tracked_ids"`
	LastApplied  uint64   `json:"last_applied"`
	FailedRecent []uint64 `json:"failed_recent"`
}

// LoadState reads the state file. A missing or unparseable file yields a
// fresh zero state; rotation must survive a corrupted record.
func LoadState(path string) *State {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &State{}
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return &State{}
	}
	if st.Cursor < 0 {
		st.Cursor = 0
	}
	return &st
}

// Save atomically rewrites the state file (temp file + rename).
func (s *State) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create state temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close state temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// RecordSuccess marks id as applied: last_applied moves, history and
// tracked_ids append (bounded, newest last), and any recent-failure mark for
// the id is cleared.
func (s *State) RecordSuccess(id uint64) {
	s.LastApplied = id
	s.History = appendBounded(s.History, id, historyCap)
	s.TrackedIDs = appendBounded(s.TrackedIDs, id, trackedCap)

	kept := s.FailedRecent[:0]
	for _, f := range s.FailedRecent {
		if f != id {
			kept = append(kept, f)
		}
	}
	s.FailedRecent = kept
}

// RecordFailure remembers a failed activation for diagnostics.
func (s *State) RecordFailure(id uint64) {
	for _, f := range s.FailedRecent {
		if f == id {
			return
		}
	}
	s.FailedRecent = appendBounded(s.FailedRecent, id, failedRecentCap)
}

func appendBounded(list []uint64, id uint64, cap int) []uint64 {
	list = append(list, id)
	if len(list) > cap {
		list = list[len(list)-cap:]
	}
	return list
}

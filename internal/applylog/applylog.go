// Package applylog maintains the append-only activation log: one timestamped
// line per successful activation. The log doubles as the durable "seen" record
// the pool assembler and retention policy read; parsing tolerates arbitrary
// surrounding text as long as a line carries an id= marker.
package applylog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"mural/internal/workshop"
)

var idPattern = regexp.MustCompile(`id=(\d{6,})`)

// Log is an append-only activation log backed by a text file.
type Log struct {
	path string
}

// New returns a Log at path. The file is created on first append.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the backing file location.
func (l *Log) Path() string { return l.path }

// Append records a successful activation. Each line carries the timestamp,
// the id= marker the parser keys on, and the item's public URL.
func (l *Log) Append(id uint64) error {
	if dir := filepath.Dir(l.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create activation log directory: %w", err)
		}
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open activation log: %w", err)
	}
	defer file.Close()

	line := fmt.Sprintf("%s applied id=%d %s\n",
		time.Now().UTC().Format(time.RFC3339), id, workshop.ItemURL(id))
	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("append activation log: %w", err)
	}
	return nil
}

// IDs returns every logged id oldest-first, first occurrence only. A missing
// log is an empty history, not an error.
func (l *Log) IDs() ([]uint64, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open activation log: %w", err)
	}
	defer file.Close()

	var (
		out  []uint64
		seen = map[uint64]struct{}{}
	)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := idPattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		id, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil || id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read activation log: %w", err)
	}
	return out, nil
}

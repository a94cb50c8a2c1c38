// Package steamcmd wraps the steamcmd CLI for downloading workshop items.
// steamcmd reports failures inconsistently across versions, so success is
// judged by output markers with the content directory as a fallback witness.
package steamcmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"mural/internal/workshop"
)

// Credentials holds the steamcmd login. An empty username logs in anonymously.
type Credentials struct {
	Username  string
	Password  string
	GuardCode string
}

// Downloader defines the behaviour the activation pipeline requires.
type Downloader interface {
	Download(ctx context.Context, id uint64) (string, error)
}

// Executor abstracts command execution for testability. Implementations must
// deliver output lines serially: onOutput is never invoked from more than one
// goroutine at a time, so callers may mutate captured state without locking.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(c *Client) {
		if executor != nil {
			c.exec = executor
		}
	}
}

// WithTimeout bounds one download invocation.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Client wraps steamcmd CLI interactions.
type Client struct {
	binary  string
	creds   Credentials
	timeout time.Duration
	exec    Executor
}

// New constructs a steamcmd client.
func New(binary string, creds Credentials, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("steamcmd binary required")
	}
	client := &Client{
		binary:  binary,
		creds:   creds,
		timeout: 10 * time.Minute,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ContentDir returns where steamcmd lands a downloaded item, relative to the
// steamcmd install directory.
func (c *Client) ContentDir(id uint64) string {
	return filepath.Join(filepath.Dir(c.binary),
		"steamapps", "workshop", "content",
		strconv.Itoa(workshop.AppID), strconv.FormatUint(id, 10))
}

// Download fetches one workshop item and returns its content directory.
func (c *Client) Download(ctx context.Context, id uint64) (string, error) {
	if id == 0 {
		return "", errors.New("workshop id required")
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := c.loginArgs()
	args = append(args,
		"+workshop_download_item", strconv.Itoa(workshop.AppID), strconv.FormatUint(id, 10), "validate",
		"+quit",
	)

	var (
		succeeded bool
		failure   string
	)
	err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		switch {
		case strings.Contains(line, "Success. Downloaded item"):
			succeeded = true
		case strings.Contains(line, "ERROR! Download item") && failure == "":
			failure = strings.TrimSpace(line)
		case strings.Contains(line, "FAILED login") && failure == "":
			failure = strings.TrimSpace(line)
		}
	})
	if err != nil && !succeeded {
		return "", fmt.Errorf("steamcmd: %w", err)
	}

	dir := c.ContentDir(id)
	if succeeded {
		return dir, nil
	}
	if failure != "" {
		return "", fmt.Errorf("steamcmd: %s", failure)
	}
	// No marker either way; trust the content directory if it has files.
	if hasFiles(dir) {
		return dir, nil
	}
	return "", fmt.Errorf("steamcmd: download of item %d produced no content", id)
}

func (c *Client) loginArgs() []string {
	user := strings.TrimSpace(c.creds.Username)
	if user == "" {
		return []string{"+login", "anonymous"}
	}
	args := []string{"+login", user}
	if c.creds.Password != "" {
		args = append(args, c.creds.Password)
		if c.creds.GuardCode != "" {
			args = append(args, c.creds.GuardCode)
		}
	}
	return args
}

func hasFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	return len(entries) > 0
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start steamcmd: %w", err)
	}

	// stdout and stderr are scanned concurrently; the mutex upholds the
	// Executor contract of serial onOutput delivery.
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onOutput != nil {
				mu.Lock()
				onOutput(scanner.Text())
				mu.Unlock()
			}
		}
	}
	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("steamcmd exited: %w", err)
	}
	return nil
}

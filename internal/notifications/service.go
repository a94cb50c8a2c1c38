package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mural/internal/config"
	"mural/internal/workshop"
)

const userAgent = "Mural-Go/0.1.0"

// Service defines the notification surface exposed to the engine and daemon.
type Service interface {
	NotifyApplied(ctx context.Context, id uint64, title string) error
	NotifyExhausted(ctx context.Context) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		sendApplied: cfg.Notifications.Applied,
		sendErrors:  cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	sendApplied bool
	sendErrors  bool
}

func (n *ntfyService) NotifyApplied(ctx context.Context, id uint64, title string) error {
	if !n.sendApplied {
		return nil
	}
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Applied wallpaper %d\n%s", id, workshop.ItemURL(id))
	if title != "" {
		message = fmt.Sprintf("Applied: %s\n%s", title, workshop.ItemURL(id))
	}
	data := payload{
		title:   "Mural - Wallpaper Applied",
		message: message,
		tags:    []string{"mural", "applied"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyExhausted(ctx context.Context) error {
	if !n.sendErrors {
		return nil
	}
	data := payload{
		title:   "Mural - Rotation Exhausted",
		message: "Every candidate has been attempted and wraparound is disabled.",
		tags:    []string{"mural", "exhausted"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, context string) error {
	if !n.sendErrors || err == nil {
		return nil
	}
	context = strings.TrimSpace(context)
	message := err.Error()
	if context != "" {
		message = fmt.Sprintf("%s: %s", context, message)
	}
	data := payload{
		title:    "Mural - Error",
		message:  message,
		tags:     []string{"mural", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:   "Mural - Test",
		message: "Test notification from mural.",
		tags:    []string{"mural", "test"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyApplied(context.Context, uint64, string) error  { return nil }
func (noopService) NotifyExhausted(context.Context) error                { return nil }
func (noopService) NotifyError(context.Context, error, string) error     { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }

package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mural/internal/config"
	"mural/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyApplied(context.Background(), 42, "Example"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceSendsApplied(t *testing.T) {
	var (
		gotTitle   string
		gotTags    string
		gotMessage string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		body, _ := io.ReadAll(r.Body)
		gotMessage = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyApplied(context.Background(), 3103430809, "City Rain"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if gotTitle != "Mural - Wallpaper Applied" {
		t.Fatalf("title = %q", gotTitle)
	}
	if gotTags != "mural,applied" {
		t.Fatalf("tags = %q", gotTags)
	}
	if !strings.Contains(gotMessage, "City Rain") || !strings.Contains(gotMessage, "id=3103430809") {
		t.Fatalf("message = %q", gotMessage)
	}
}

func TestNtfyServiceErrorPriority(t *testing.T) {
	var gotPriority string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPriority = r.Header.Get("Priority")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyError(context.Background(), errors.New("boom"), "engine run"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if gotPriority != "high" {
		t.Fatalf("priority = %q", gotPriority)
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestNotifyAppliedRespectsToggle(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Applied = false
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyApplied(context.Background(), 1, ""); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if requests != 0 {
		t.Fatalf("requests = %d, want 0 when applied notifications are off", requests)
	}
}

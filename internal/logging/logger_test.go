package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerIncludesComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl))

	NewComponentLogger(logger, "engine").Info("rotation complete", Int("attempts", 2))

	line := buf.String()
	if !strings.Contains(line, "INFO engine: rotation complete") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "attempts=2") {
		t.Fatalf("missing attribute in line: %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl))

	logger.Warn("apply failed", String("title", "City Rain 4K"))

	if !strings.Contains(buf.String(), `title="City Rain 4K"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newPrettyHandler(&buf, lvl))

	logger.Info("should be dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}

	logger.Error("kept")
	if !strings.Contains(buf.String(), "ERROR kept") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}

func TestWarnWithContextNilLogger(t *testing.T) {
	// Must not panic.
	WarnWithContext(nil, "ignored", errors.New("boom"))
}

func TestWarnWithContextAttachesError(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl))

	WarnWithContext(logger, "fetch degraded", errors.New("timeout"),
		String(FieldErrorHint, "check network"))

	line := buf.String()
	if !strings.Contains(line, "error=timeout") {
		t.Fatalf("missing error attr: %q", line)
	}
	if !strings.Contains(line, `error_hint="check network"`) {
		t.Fatalf("missing hint attr: %q", line)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should never be enabled")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

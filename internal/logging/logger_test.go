package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"steeple/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerWritesComponentPrefix(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "steeple.log")

	logger, err := logging.New(logging.Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "matcher")
	component.Info("candidate selected", logging.String("video_id", "abc123"), logging.Int("day_diff", 2))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "INFO matcher: candidate selected") {
		t.Fatalf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "video_id=abc123") || !strings.Contains(line, "day_diff=2") {
		t.Fatalf("missing attributes in log line: %q", line)
	}
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "steeple.log")

	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("visible")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("debug line should be suppressed: %q", string(data))
	}
	if !strings.Contains(string(data), "visible") {
		t.Fatalf("info line missing: %q", string(data))
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Info("ignored")
	logger.Error("ignored", logging.Error(nil))
}

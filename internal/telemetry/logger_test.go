package telemetry

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	logger, err := NewJSONLogger(path, "session-1")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Event("set_created", map[string]any{"set_id": "123"})
	logger.Error("generate_failed", errors.New("boom"), nil)
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer func() { _ = f.Close() }()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line is not json: %v", err)
		}
		entries = append(entries, entry)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["event"] != "set_created" || entries[0]["set_id"] != "123" {
		t.Fatalf("unexpected first entry: %v", entries[0])
	}
	if entries[0]["session"] != "session-1" {
		t.Fatalf("expected session id on every entry, got %v", entries[0])
	}
	if entries[1]["level"] != "error" || entries[1]["error"] != "boom" {
		t.Fatalf("unexpected error entry: %v", entries[1])
	}
}

func TestNilAndDiscardLoggersAreSafe(t *testing.T) {
	var nilLogger *JSONLogger
	nilLogger.Event("ignored", nil)

	discard, err := NewJSONLogger("", "s")
	if err != nil {
		t.Fatalf("new discard logger: %v", err)
	}
	discard.Event("ignored", nil)
	if err := discard.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

package practice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cardaroo/internal/storage"
)

// History is the newest-first practiceTestResults log.
type History struct {
	kv  storage.KV
	now func() time.Time
}

func NewHistory(kv storage.KV) *History {
	return &History{kv: kv, now: time.Now}
}

func (h *History) List(ctx context.Context) ([]TestResult, error) {
	raw, ok, err := h.kv.Get(ctx, storage.KeyPracticeTestResults)
	if err != nil {
		return nil, fmt.Errorf("load test results: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []TestResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode test results: %w", err)
	}
	return out, nil
}

// Record prepends the result and stamps lastStudiedDate, which feeds the
// study-streak display.
func (h *History) Record(ctx context.Context, result TestResult) error {
	all, err := h.List(ctx)
	if err != nil {
		return err
	}
	all = append([]TestResult{result}, all...)
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode test results: %w", err)
	}
	if err := h.kv.Set(ctx, storage.KeyPracticeTestResults, string(raw)); err != nil {
		return fmt.Errorf("save test results: %w", err)
	}
	stamp := h.now().UTC().Format(time.RFC3339)
	if err := h.kv.Set(ctx, storage.KeyLastStudiedDate, stamp); err != nil {
		return fmt.Errorf("save last studied date: %w", err)
	}
	return nil
}

package achievements

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cardaroo/internal/storage"
)

// Tracker keeps the seen-count watermark behind the "new achievement" badge
// and derives the study streak from lastStudiedDate.
type Tracker struct {
	kv storage.KV
}

func NewTracker(kv storage.KV) *Tracker {
	return &Tracker{kv: kv}
}

func (t *Tracker) SeenCount(ctx context.Context) (int, error) {
	raw, ok, err := t.kv.Get(ctx, storage.KeySeenAchievements)
	if err != nil {
		return 0, fmt.Errorf("load seen achievements: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// MarkSeen stores the fresh unlocked count. The achievements view calls this
// on open, which clears the badge.
func (t *Tracker) MarkSeen(ctx context.Context, unlocked int) error {
	if err := t.kv.Set(ctx, storage.KeySeenAchievements, strconv.Itoa(unlocked)); err != nil {
		return fmt.Errorf("save seen achievements: %w", err)
	}
	return nil
}

// HasNew compares a fresh unlocked count against the watermark without
// updating it, so the home badge keeps showing until the view is opened.
func (t *Tracker) HasNew(ctx context.Context, unlocked int) (bool, error) {
	seen, err := t.SeenCount(ctx)
	if err != nil {
		return false, err
	}
	return unlocked > seen, nil
}

// Streak is 1 when the stored lastStudiedDate falls within the past day of
// now, else 0. An unreadable or missing date is simply no streak.
func (t *Tracker) Streak(ctx context.Context, now time.Time) (int, error) {
	raw, ok, err := t.kv.Get(ctx, storage.KeyLastStudiedDate)
	if err != nil {
		return 0, fmt.Errorf("load last studied date: %w", err)
	}
	if !ok {
		return 0, nil
	}
	last, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return 0, nil
	}
	if diff := now.Sub(last); diff <= 24*time.Hour {
		return 1, nil
	}
	return 0, nil
}

package sets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cardaroo/internal/storage"
)

var (
	ErrNotFound     = errors.New("study set not found")
	ErrMissingTitle = errors.New("title is required")
	ErrNoValidCards = errors.New("at least one card needs both sides filled in")
)

// Repository owns the flashcardSets collection. Every mutation rewrites the
// whole collection under the same store key; last writer wins.
type Repository struct {
	kv  storage.KV
	now func() time.Time
}

func NewRepository(kv storage.KV) *Repository {
	return &Repository{kv: kv, now: time.Now}
}

// List loads every set. On the very first call of a fresh install, when the
// key has never been written, it seeds the sample sets and persists them.
// An empty array that the user produced by deleting everything is not
// re-seeded.
func (r *Repository) List(ctx context.Context) ([]FlashcardSet, error) {
	all, ok, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		seeded, err := sampleSets(r.now())
		if err != nil {
			return nil, err
		}
		if err := r.persist(ctx, seeded); err != nil {
			return nil, err
		}
		return seeded, nil
	}
	return all, nil
}

func (r *Repository) Get(ctx context.Context, id string) (FlashcardSet, error) {
	all, err := r.List(ctx)
	if err != nil {
		return FlashcardSet{}, err
	}
	for _, set := range all {
		if set.ID == id {
			return set, nil
		}
	}
	return FlashcardSet{}, ErrNotFound
}

// Create validates the input, drops cards missing either side, assigns an
// id and creation time, and appends the set to the collection.
func (r *Repository) Create(ctx context.Context, input CreateInput) (FlashcardSet, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return FlashcardSet{}, ErrMissingTitle
	}
	cards := ValidCards(input.Cards)
	if len(cards) == 0 {
		return FlashcardSet{}, ErrNoValidCards
	}

	all, _, err := r.load(ctx)
	if err != nil {
		return FlashcardSet{}, err
	}
	now := r.now()
	set := FlashcardSet{
		ID:          strconv.FormatInt(now.UnixMilli(), 10),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Cards:       cards,
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}
	all = append(all, set)
	if err := r.persist(ctx, all); err != nil {
		return FlashcardSet{}, err
	}
	return set, nil
}

// Update replaces the stored entry whose id matches set.ID.
func (r *Repository) Update(ctx context.Context, set FlashcardSet) error {
	all, _, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == set.ID {
			all[i] = set
			return r.persist(ctx, all)
		}
	}
	return ErrNotFound
}

// Delete removes the matching entry. Deleting an id that is already gone is
// not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	all, _, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, set := range all {
		if set.ID != id {
			kept = append(kept, set)
		}
	}
	return r.persist(ctx, kept)
}

// Rename updates the title only when the trimmed new title is non-empty;
// a blank rename leaves the set untouched.
func (r *Repository) Rename(ctx context.Context, id, newTitle string) error {
	title := strings.TrimSpace(newTitle)
	if title == "" {
		return nil
	}
	all, _, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id {
			all[i].Title = title
			return r.persist(ctx, all)
		}
	}
	return ErrNotFound
}

// ValidCards keeps the cards that have both sides non-empty after trimming.
// Card text itself is stored as typed.
func ValidCards(cards []Flashcard) []Flashcard {
	out := make([]Flashcard, 0, len(cards))
	for _, c := range cards {
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *Repository) load(ctx context.Context) ([]FlashcardSet, bool, error) {
	raw, ok, err := r.kv.Get(ctx, storage.KeyFlashcardSets)
	if err != nil {
		return nil, false, fmt.Errorf("load sets: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	var all []FlashcardSet
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &all); err != nil {
			return nil, false, fmt.Errorf("decode sets: %w", err)
		}
	}
	return all, true, nil
}

func (r *Repository) persist(ctx context.Context, all []FlashcardSet) error {
	if all == nil {
		all = []FlashcardSet{}
	}
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode sets: %w", err)
	}
	if err := r.kv.Set(ctx, storage.KeyFlashcardSets, string(raw)); err != nil {
		return fmt.Errorf("save sets: %w", err)
	}
	return nil
}

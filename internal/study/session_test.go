package study

import (
	"testing"

	"cardaroo/internal/sets"
)

func threeCardSet() sets.FlashcardSet {
	return sets.FlashcardSet{
		ID:    "s1",
		Title: "Capitals",
		Cards: []sets.Flashcard{
			{ID: "1", Front: "France", Back: "Paris"},
			{ID: "2", Front: "Italy", Back: "Rome"},
			{ID: "3", Front: "Spain", Back: "Madrid"},
		},
	}
}

func TestNextClampsAtLastCard(t *testing.T) {
	s := NewSession(threeCardSet())
	s.Next()
	s.Next()
	if s.Index() != 2 {
		t.Fatalf("expected index 2, got %d", s.Index())
	}
	s.Next()
	if s.Index() != 2 {
		t.Fatalf("expected clamp at last card, got index %d", s.Index())
	}
	s.Previous()
	s.Previous()
	s.Previous()
	if s.Index() != 0 {
		t.Fatalf("expected clamp at first card, got index %d", s.Index())
	}
}

func TestNavigationResetsFlip(t *testing.T) {
	s := NewSession(threeCardSet())
	s.Flip()
	if !s.Flipped() {
		t.Fatalf("expected flipped after Flip")
	}
	s.Next()
	if s.Flipped() {
		t.Fatalf("expected front side after Next")
	}
	s.Flip()
	s.Previous()
	if s.Flipped() {
		t.Fatalf("expected front side after Previous")
	}
	// Flip at the clamped edge stays, since no navigation happened.
	s.Flip()
	s.Previous()
	if !s.Flipped() {
		t.Fatalf("expected flip to survive a clamped Previous")
	}
}

func TestProgressAndAccuracy(t *testing.T) {
	s := NewSession(threeCardSet())
	if got := s.AccuracyPercent(); got != 0 {
		t.Fatalf("expected 0 accuracy before studying, got %v", got)
	}

	s.MarkKnown()   // card 0 known
	s.MarkUnknown() // card 1 not known
	if got := s.ProgressPercent(); got < 66.6 || got > 66.7 {
		t.Fatalf("expected ~66.7 progress, got %v", got)
	}
	if got := s.AccuracyPercent(); got != 50 {
		t.Fatalf("expected 50 accuracy, got %v", got)
	}
	if s.Complete() {
		t.Fatalf("session must not be complete with one card unstudied")
	}

	s.MarkKnown() // card 2 known
	if got := s.ProgressPercent(); got != 100 {
		t.Fatalf("expected 100 progress, got %v", got)
	}
	if !s.Complete() {
		t.Fatalf("expected complete session")
	}
	// Accuracy: 2 of 3 studied cards known.
	if got := s.AccuracyPercent(); got < 66.6 || got > 66.7 {
		t.Fatalf("expected ~66.7 accuracy, got %v", got)
	}
}

func TestMarkingSameCardTwiceCountsOnce(t *testing.T) {
	s := NewSession(threeCardSet())
	s.MarkUnknown()
	s.Previous()
	s.MarkKnown()
	if s.StudiedCount() != 1 {
		t.Fatalf("expected 1 studied card, got %d", s.StudiedCount())
	}
	if s.KnownCount() != 1 {
		t.Fatalf("expected re-mark to upgrade the card to known, got %d", s.KnownCount())
	}
}

func TestMarkUnknownKeepsEarlierKnownMark(t *testing.T) {
	s := NewSession(threeCardSet())
	s.MarkKnown()
	s.Previous()
	s.MarkUnknown()
	if s.KnownCount() != 1 {
		t.Fatalf("expected the known mark to stick, got %d", s.KnownCount())
	}
	if s.StudiedCount() != 1 {
		t.Fatalf("expected 1 studied card, got %d", s.StudiedCount())
	}
	if got := s.AccuracyPercent(); got != 100 {
		t.Fatalf("expected 100 accuracy, got %v", got)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := NewSession(threeCardSet())
	s.MarkKnown()
	s.Flip()
	s.Reset()
	if s.Index() != 0 || s.Flipped() || s.StudiedCount() != 0 || s.ProgressPercent() != 0 {
		t.Fatalf("expected pristine session after reset")
	}
}

func TestEmptySetIsSafe(t *testing.T) {
	s := NewSession(sets.FlashcardSet{ID: "empty"})
	s.Next()
	s.MarkKnown()
	if s.ProgressPercent() != 0 || s.Complete() {
		t.Fatalf("empty set must report zero progress and never complete")
	}
	if card := s.Card(); card.Front != "" {
		t.Fatalf("expected zero card, got %+v", card)
	}
}

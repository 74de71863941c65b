package study

import "cardaroo/internal/sets"

// Session tracks one pass through a set's cards. It is purely in-memory;
// nothing here touches storage, and nothing persists until the caller decides
// to write progress back.
type Session struct {
	set     sets.FlashcardSet
	index   int
	flipped bool
	studied map[int]struct{}
	known   map[int]struct{}
}

func NewSession(set sets.FlashcardSet) *Session {
	return &Session{
		set:     set,
		studied: make(map[int]struct{}),
		known:   make(map[int]struct{}),
	}
}

func (s *Session) Set() sets.FlashcardSet { return s.set }
func (s *Session) Index() int             { return s.index }
func (s *Session) Flipped() bool          { return s.flipped }

func (s *Session) Card() sets.Flashcard {
	if s.index < 0 || s.index >= len(s.set.Cards) {
		return sets.Flashcard{}
	}
	return s.set.Cards[s.index]
}

func (s *Session) Flip() { s.flipped = !s.flipped }

// Next moves forward and shows the new card front-side up. At the last card
// it clamps instead of wrapping, so the user reviews the end of the deck
// without being thrown back to the start.
func (s *Session) Next() {
	if s.index < len(s.set.Cards)-1 {
		s.index++
		s.flipped = false
	}
}

func (s *Session) Previous() {
	if s.index > 0 {
		s.index--
		s.flipped = false
	}
}

// MarkKnown records the current card as studied and known, then advances.
func (s *Session) MarkKnown() {
	if len(s.set.Cards) == 0 {
		return
	}
	s.studied[s.index] = struct{}{}
	s.known[s.index] = struct{}{}
	s.Next()
}

// MarkUnknown records the current card as studied, then advances. A card
// already marked known stays known; within one pass the best mark sticks.
func (s *Session) MarkUnknown() {
	if len(s.set.Cards) == 0 {
		return
	}
	s.studied[s.index] = struct{}{}
	s.Next()
}

func (s *Session) Reset() {
	s.index = 0
	s.flipped = false
	s.studied = make(map[int]struct{})
	s.known = make(map[int]struct{})
}

func (s *Session) StudiedCount() int { return len(s.studied) }
func (s *Session) KnownCount() int   { return len(s.known) }

// ProgressPercent is studied cards over total cards.
func (s *Session) ProgressPercent() float64 {
	if len(s.set.Cards) == 0 {
		return 0
	}
	return float64(len(s.studied)) / float64(len(s.set.Cards)) * 100
}

// AccuracyPercent is known cards over studied cards, 0 before anything has
// been studied.
func (s *Session) AccuracyPercent() float64 {
	if len(s.studied) == 0 {
		return 0
	}
	return float64(len(s.known)) / float64(len(s.studied)) * 100
}

func (s *Session) Complete() bool {
	return len(s.set.Cards) > 0 && len(s.studied) == len(s.set.Cards)
}

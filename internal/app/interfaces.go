package app

import (
	"context"

	"cardaroo/internal/genai"
	"cardaroo/internal/practice"
)

// Generator produces flashcards and practice tests from a study set.
// The Gemini client is the real implementation; tests stub it out.
type Generator interface {
	GenerateCards(ctx context.Context, brief genai.CardBrief) ([]genai.CardDraft, error)
	GenerateTest(ctx context.Context, brief genai.TestBrief) ([]practice.Question, error)
}

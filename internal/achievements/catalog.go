package achievements

import (
	"strings"

	"cardaroo/internal/practice"
	"cardaroo/internal/sets"
)

// Achievement is one entry in the fixed catalog. Unlock state is never
// stored per achievement; it is recomputed from the collections every time.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Unlocked    func(all []sets.FlashcardSet, tests []practice.TestResult) bool
}

var Catalog = []Achievement{
	{
		ID:          "first-set",
		Name:        "Getting Started",
		Description: "Create your first study set.",
		Unlocked: func(all []sets.FlashcardSet, _ []practice.TestResult) bool {
			return len(all) >= 1
		},
	},
	{
		ID:          "five-sets",
		Name:        "Set Collector",
		Description: "Create 5 different study sets.",
		Unlocked: func(all []sets.FlashcardSet, _ []practice.TestResult) bool {
			return len(all) >= 5
		},
	},
	{
		ID:          "ai-creator",
		Name:        "AI Assistant",
		Description: "Generate a set using the AI.",
		Unlocked: func(all []sets.FlashcardSet, _ []practice.TestResult) bool {
			for _, set := range all {
				if strings.Contains(set.Title, "AI Generated Set") {
					return true
				}
			}
			return false
		},
	},
	{
		ID:          "first-test",
		Name:        "First Steps",
		Description: "Take your first practice test.",
		Unlocked: func(_ []sets.FlashcardSet, tests []practice.TestResult) bool {
			return len(tests) >= 1
		},
	},
	{
		ID:          "perfect-score",
		Name:        "Perfectionist",
		Description: "Get a perfect score on a test.",
		Unlocked: func(_ []sets.FlashcardSet, tests []practice.TestResult) bool {
			for _, t := range tests {
				if t.Score == t.TotalQuestions {
					return true
				}
			}
			return false
		},
	},
}

// UnlockedIDs evaluates the whole catalog in display order.
func UnlockedIDs(all []sets.FlashcardSet, tests []practice.TestResult) []string {
	var out []string
	for _, a := range Catalog {
		if a.Unlocked(all, tests) {
			out = append(out, a.ID)
		}
	}
	return out
}

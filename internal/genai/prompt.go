package genai

import (
	"encoding/json"
	"fmt"
	"strings"

	"cardaroo/internal/practice"
)

func buildCardPrompt(brief CardBrief) string {
	return fmt.Sprintf(`Based on the following information, generate a set of flashcards. Each flashcard should be a distinct concept.
The topic is: %q.
Things to take into consideration: %q.
Content from uploaded file: %q.

Return the flashcards as a JSON array of objects, where each object has a "front" and a "back" key.
Example: [{"front": "What is the capital of France?", "back": "Paris"}]`,
		brief.Topic, brief.Notes, brief.FileText)
}

func buildTestPrompt(brief TestBrief) string {
	var cards strings.Builder
	for _, c := range brief.Cards {
		fmt.Fprintf(&cards, "- %s: %s\n", c.Front, c.Back)
	}

	var shape string
	switch brief.Type {
	case practice.FillInTheBlank:
		shape = `Each question must be a sentence with the key term replaced by "____".
Return the test as a JSON array of objects. Each object must have a "question" string containing the blank and a "correctAnswer" string that fills it.
Example: [{"question": "The capital of France is ____.", "correctAnswer": "Paris"}]`
	case practice.TrueFalse:
		shape = `Each question must be a statement that is either true or false.
Return the test as a JSON array of objects. Each object must have a "question" string and a "correctAnswer" string that is exactly "True" or "False".
Example: [{"question": "Paris is the capital of France.", "correctAnswer": "True"}]`
	default:
		shape = `For each question, provide 4 options, one of which is the correct answer.
Return the test as a JSON array of objects. Each object must have a "question", an "options" array of 4 strings, and a "correctAnswer" string equal to one of the options.
Example: [{"question": "What is the capital of France?", "options": ["London", "Berlin", "Paris", "Madrid"], "correctAnswer": "Paris"}]`
	}

	return fmt.Sprintf(`Based on the following flashcard set titled %q, create a practice test with %d questions.
Each question must test a concept from the flashcards. No tricky questions.
Flashcard Content:
%s
%s`, brief.SetTitle, brief.Count, cards.String(), shape)
}

// Response schemas in Gemini's OpenAPI-subset form; they force the model to
// emit exactly the arrays the parsers expect.
var cardSchema = json.RawMessage(`{
	"type": "ARRAY",
	"items": {
		"type": "OBJECT",
		"properties": {
			"front": {"type": "STRING"},
			"back": {"type": "STRING"}
		},
		"required": ["front", "back"]
	}
}`)

func testSchema(t practice.TestType) json.RawMessage {
	if t == practice.MultipleChoice {
		return json.RawMessage(`{
	"type": "ARRAY",
	"items": {
		"type": "OBJECT",
		"properties": {
			"question": {"type": "STRING"},
			"options": {"type": "ARRAY", "items": {"type": "STRING"}},
			"correctAnswer": {"type": "STRING"}
		},
		"required": ["question", "options", "correctAnswer"]
	}
}`)
	}
	return json.RawMessage(`{
	"type": "ARRAY",
	"items": {
		"type": "OBJECT",
		"properties": {
			"question": {"type": "STRING"},
			"correctAnswer": {"type": "STRING"}
		},
		"required": ["question", "correctAnswer"]
	}
}`)
}

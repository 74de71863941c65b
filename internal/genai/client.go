package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cardaroo/internal/practice"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
)

var ErrMissingAPIKey = errors.New("gemini api key is not set")

// Client calls the Gemini generateContent endpoint. Prompts ask for JSON and
// the generationConfig pins the response schema, so replies parse directly.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

func NewClient(apiKey, model string) *Client {
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL points the client at a different endpoint root. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// CardBrief describes what the user wants flashcards about. At least one
// field must be non-empty.
type CardBrief struct {
	Topic    string
	Notes    string
	FileText string
}

func (b CardBrief) empty() bool {
	return strings.TrimSpace(b.Topic) == "" &&
		strings.TrimSpace(b.Notes) == "" &&
		strings.TrimSpace(b.FileText) == ""
}

type CardDraft struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// TestBrief carries everything the generator needs to build a practice test.
type TestBrief struct {
	SetTitle string
	Cards    []CardLine
	Count    int
	Type     practice.TestType
}

type CardLine struct {
	Front string
	Back  string
}

// GenerateCards turns a brief into card drafts.
func (c *Client) GenerateCards(ctx context.Context, brief CardBrief) ([]CardDraft, error) {
	if brief.empty() {
		return nil, errors.New("provide a topic, notes, or a file to generate flashcards")
	}
	text, err := c.generate(ctx, buildCardPrompt(brief), cardSchema)
	if err != nil {
		return nil, err
	}
	var drafts []CardDraft
	if err := json.Unmarshal([]byte(text), &drafts); err != nil {
		return nil, fmt.Errorf("decode generated cards: %w", err)
	}
	kept := drafts[:0]
	for _, d := range drafts {
		if strings.TrimSpace(d.Front) == "" || strings.TrimSpace(d.Back) == "" {
			continue
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		return nil, errors.New("generator returned no usable cards")
	}
	return kept, nil
}

// GenerateTest builds a question list for the requested shape and validates
// it before handing it to the engine. Any shape violation is a generation
// failure; nothing partial is returned.
func (c *Client) GenerateTest(ctx context.Context, brief TestBrief) ([]practice.Question, error) {
	if len(brief.Cards) == 0 {
		return nil, errors.New("the selected set has no cards to test on")
	}
	text, err := c.generate(ctx, buildTestPrompt(brief), testSchema(brief.Type))
	if err != nil {
		return nil, err
	}
	var questions []practice.Question
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, fmt.Errorf("decode generated test: %w", err)
	}
	if len(questions) == 0 {
		return nil, errors.New("generator returned no questions")
	}
	for i, q := range questions {
		if err := validateQuestion(brief.Type, q); err != nil {
			return nil, fmt.Errorf("generated question %d: %w", i+1, err)
		}
	}
	return questions, nil
}

func validateQuestion(t practice.TestType, q practice.Question) error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("missing question text")
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return errors.New("missing correct answer")
	}
	switch t {
	case practice.MultipleChoice:
		if len(q.Options) != 4 {
			return fmt.Errorf("expected 4 options, got %d", len(q.Options))
		}
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				return nil
			}
		}
		return errors.New("correct answer is not among the options")
	case practice.TrueFalse:
		if q.CorrectAnswer != "True" && q.CorrectAnswer != "False" {
			return fmt.Errorf("true-false answer must be True or False, got %q", q.CorrectAnswer)
		}
	case practice.FillInTheBlank:
		// Question text plus a non-empty answer is all the shape requires.
	default:
		return fmt.Errorf("unknown test type %q", t)
	}
	return nil
}

// generate performs one generateContent call and extracts the reply text.
func (c *Client) generate(ctx context.Context, prompt string, schema json.RawMessage) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", ErrMissingAPIKey
	}

	payload := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("gemini request failed with status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini response has no candidates")
	}
	text := decoded.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini response is empty")
	}
	return text, nil
}

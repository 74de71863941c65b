package practice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cardaroo/internal/sets"
	"cardaroo/internal/storage"
)

func capitalsSet() sets.FlashcardSet {
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

func startedTest(t *testing.T, testType TestType, questions []Question) *Engine {
	t.Helper()
	e := NewEngine()
	e.SetType(testType)
	e.SelectSet(capitalsSet())
	seq, err := e.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := e.ApplyQuestions(seq, questions); err != nil {
		t.Fatalf("apply questions: %v", err)
	}
	return e
}

func TestBeginRequiresSelectedSet(t *testing.T) {
	e := NewEngine()
	if _, err := e.Begin(); !errors.Is(err, ErrNoSetSelected) {
		t.Fatalf("expected ErrNoSetSelected, got %v", err)
	}
}

func TestQuestionCountClampsBothEnds(t *testing.T) {
	e := NewEngine()
	e.SetQuestionCount(0)
	if e.QuestionCount() != MinQuestions {
		t.Fatalf("expected clamp to %d, got %d", MinQuestions, e.QuestionCount())
	}
	e.SetQuestionCount(999)
	if e.QuestionCount() != MaxQuestions {
		t.Fatalf("expected clamp to %d, got %d", MaxQuestions, e.QuestionCount())
	}
	e.SetQuestionCount(7)
	if e.QuestionCount() != 7 {
		t.Fatalf("expected 7, got %d", e.QuestionCount())
	}
}

func TestStaleGenerationReplyIsDropped(t *testing.T) {
	e := NewEngine()
	e.SelectSet(capitalsSet())
	seq, err := e.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	e.Cancel()
	if e.Phase() != PhaseSelecting {
		t.Fatalf("expected selecting after cancel, got %v", e.Phase())
	}
	err = e.ApplyQuestions(seq, []Question{{Question: "late?", CorrectAnswer: "x"}})
	if !errors.Is(err, ErrNotGenerating) {
		t.Fatalf("expected stale reply to be rejected, got %v", err)
	}
	if e.Phase() != PhaseSelecting || e.Total() != 0 {
		t.Fatalf("stale reply must not change state")
	}
	// A stale failure is equally inert.
	if e.Fail(seq) {
		t.Fatalf("stale failure must report not applied")
	}
	if e.Phase() != PhaseSelecting {
		t.Fatalf("stale failure must not change state")
	}
}

func TestGenerationFailureReturnsToSelecting(t *testing.T) {
	e := NewEngine()
	e.SelectSet(capitalsSet())
	seq, err := e.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !e.Fail(seq) {
		t.Fatalf("expected the live failure to apply")
	}
	if e.Phase() != PhaseSelecting || e.Total() != 0 {
		t.Fatalf("expected clean return to selecting, got phase=%v total=%d", e.Phase(), e.Total())
	}
}

func TestSubmitAnswerAtMostOnce(t *testing.T) {
	e := startedTest(t, MultipleChoice, []Question{
		{Question: "Capital of France?", Options: []string{"London", "Berlin", "Paris", "Madrid"}, CorrectAnswer: "Paris"},
	})

	if _, err := e.SubmitAnswer("   "); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}
	correct, err := e.SubmitAnswer("Paris")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !correct {
		t.Fatalf("expected correct answer")
	}
	if _, err := e.SubmitAnswer("Berlin"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	if q := e.Question(); q.UserAnswer != "Paris" || !q.Correct {
		t.Fatalf("re-answer must not change the recorded answer: %+v", q)
	}
}

func TestFillInTheBlankGrading(t *testing.T) {
	cases := []struct {
		answer string
		want   bool
	}{
		{"Paris", true},
		{"  Paris ", true},
		{"paris", true},
		{"Rome", false},
	}
	for _, tc := range cases {
		e := startedTest(t, FillInTheBlank, []Question{
			{Question: "The capital of France is ____.", CorrectAnswer: "Paris"},
		})
		correct, err := e.SubmitAnswer(tc.answer)
		if err != nil {
			t.Fatalf("submit %q: %v", tc.answer, err)
		}
		if correct != tc.want {
			t.Fatalf("answer %q: expected correct=%v, got %v", tc.answer, tc.want, correct)
		}
	}
}

func TestMultipleChoiceGradingIsExact(t *testing.T) {
	e := startedTest(t, MultipleChoice, []Question{
		{Question: "Capital of France?", Options: []string{"London", "Berlin", "Paris", "Madrid"}, CorrectAnswer: "Paris"},
	})
	correct, err := e.SubmitAnswer("paris")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if correct {
		t.Fatalf("choice answers must match exactly")
	}
}

func TestFullRunScoresAndSummarizes(t *testing.T) {
	e := startedTest(t, TrueFalse, []Question{
		{Question: "Paris is the capital of France.", CorrectAnswer: "True"},
		{Question: "Rome is the capital of Spain.", CorrectAnswer: "False"},
		{Question: "Madrid is the capital of Spain.", CorrectAnswer: "True"},
	})

	answers := []string{"True", "True", "True"} // second one is wrong
	for i, a := range answers {
		if _, err := e.SubmitAnswer(a); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		finished := e.Advance()
		if wantFinished := i == len(answers)-1; finished != wantFinished {
			t.Fatalf("question %d: finished=%v", i, finished)
		}
	}
	if e.Phase() != PhaseResults {
		t.Fatalf("expected results phase, got %v", e.Phase())
	}
	if e.Score() != 2 {
		t.Fatalf("expected score 2, got %d", e.Score())
	}

	now := time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)
	result := e.Result(now)
	want := TestResult{SetName: "Capitals", Score: 2, TotalQuestions: 3, Date: "8/31/2026"}
	if result != want {
		t.Fatalf("unexpected result: %+v", result)
	}

	e.Retake()
	if e.Phase() != PhaseSelecting || e.Total() != 0 {
		t.Fatalf("expected retake to discard questions")
	}
}

func TestAdvanceRequiresAnAnswer(t *testing.T) {
	e := startedTest(t, MultipleChoice, []Question{
		{Question: "q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
		{Question: "q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "b"},
	})
	if e.Advance() {
		t.Fatalf("advance before answering must be a no-op")
	}
	if e.Index() != 0 {
		t.Fatalf("expected index 0, got %d", e.Index())
	}
}

type memKV struct {
	values map[string]string
}

func newMemKV() *memKV { return &memKV{values: map[string]string{}} }

func (m *memKV) EnsureSchema(context.Context) error { return nil }

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memKV) Close() error { return nil }

func TestHistoryRecordPrependsAndStampsStudyDate(t *testing.T) {
	kv := newMemKV()
	h := NewHistory(kv)
	h.now = func() time.Time {
		return time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	first := TestResult{SetName: "Capitals", Score: 2, TotalQuestions: 3, Date: "8/30/2026"}
	second := TestResult{SetName: "Biology Terms", Score: 3, TotalQuestions: 3, Date: "8/31/2026"}
	if err := h.Record(ctx, first); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if err := h.Record(ctx, second); err != nil {
		t.Fatalf("record second: %v", err)
	}

	all, err := h.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0] != second || all[1] != first {
		t.Fatalf("expected newest-first history, got %+v", all)
	}
	if got := kv.values[storage.KeyLastStudiedDate]; got != "2026-08-31T09:00:00Z" {
		t.Fatalf("unexpected lastStudiedDate: %q", got)
	}

	// Persisted shape stays compatible with the documented JSON keys.
	var decoded []map[string]any
	if err := json.Unmarshal([]byte(kv.values[storage.KeyPracticeTestResults]), &decoded); err != nil {
		t.Fatalf("decode raw history: %v", err)
	}
	for _, key := range []string{"setName", "score", "totalQuestions", "date"} {
		if _, ok := decoded[0][key]; !ok {
			t.Fatalf("missing %q in persisted result: %v", key, decoded[0])
		}
	}
}

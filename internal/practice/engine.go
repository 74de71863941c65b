package practice

import (
	"errors"
	"strings"
	"time"

	"cardaroo/internal/sets"
)

type Phase int

const (
	PhaseSelecting Phase = iota
	PhaseGenerating
	PhaseTaking
	PhaseResults
)

func (p Phase) String() string {
	switch p {
	case PhaseSelecting:
		return "selecting"
	case PhaseGenerating:
		return "generating"
	case PhaseTaking:
		return "taking"
	case PhaseResults:
		return "results"
	}
	return "unknown"
}

const (
	MinQuestions     = 1
	MaxQuestions     = 20
	DefaultQuestions = 5
)

var (
	ErrNoSetSelected   = errors.New("select a study set first")
	ErrNotGenerating   = errors.New("no generation in progress")
	ErrNotTaking       = errors.New("no test in progress")
	ErrEmptyAnswer     = errors.New("answer is empty")
	ErrAlreadyAnswered = errors.New("question already answered")
)

// Engine drives one practice test from set selection through the results
// review. Only the aggregate TestResult outlives a run; questions are
// discarded on retake.
type Engine struct {
	phase     Phase
	set       *sets.FlashcardSet
	count     int
	testType  TestType
	questions []Question
	index     int

	// genSeq identifies the in-flight generation. Replies carrying an older
	// token are dropped, so a response arriving after the user backed out
	// cannot resurrect a test.
	genSeq int
}

func NewEngine() *Engine {
	return &Engine{phase: PhaseSelecting, count: DefaultQuestions, testType: MultipleChoice}
}

func (e *Engine) Phase() Phase                    { return e.phase }
func (e *Engine) SelectedSet() *sets.FlashcardSet { return e.set }
func (e *Engine) QuestionCount() int              { return e.count }
func (e *Engine) Type() TestType                  { return e.testType }
func (e *Engine) Index() int                      { return e.index }
func (e *Engine) Total() int                      { return len(e.questions) }

func (e *Engine) SelectSet(set sets.FlashcardSet) {
	if e.phase != PhaseSelecting {
		return
	}
	copied := set
	e.set = &copied
}

// SetQuestionCount clamps into [MinQuestions, MaxQuestions].
func (e *Engine) SetQuestionCount(n int) {
	if n < MinQuestions {
		n = MinQuestions
	}
	if n > MaxQuestions {
		n = MaxQuestions
	}
	e.count = n
}

func (e *Engine) SetType(t TestType) {
	for _, known := range TestTypes {
		if t == known {
			e.testType = t
			return
		}
	}
}

// CycleType advances to the next question shape in display order.
func (e *Engine) CycleType() {
	for i, t := range TestTypes {
		if t == e.testType {
			e.testType = TestTypes[(i+1)%len(TestTypes)]
			return
		}
	}
	e.testType = TestTypes[0]
}

// Begin moves to the generating phase and returns the token the eventual
// reply must present.
func (e *Engine) Begin() (int, error) {
	if e.set == nil {
		return 0, ErrNoSetSelected
	}
	e.phase = PhaseGenerating
	e.genSeq++
	return e.genSeq, nil
}

// ApplyQuestions installs a generated question list. Stale or out-of-phase
// replies are dropped without touching state.
func (e *Engine) ApplyQuestions(seq int, questions []Question) error {
	if e.phase != PhaseGenerating || seq != e.genSeq {
		return ErrNotGenerating
	}
	if len(questions) == 0 {
		e.phase = PhaseSelecting
		return errors.New("generator returned no questions")
	}
	for i := range questions {
		questions[i].Type = e.testType
	}
	e.questions = questions
	e.index = 0
	e.phase = PhaseTaking
	return nil
}

// Fail abandons the in-flight generation and returns to selection. Stale
// failures are ignored the same way stale successes are; the return value
// tells the caller whether the failure applied and is worth surfacing.
func (e *Engine) Fail(seq int) bool {
	if e.phase != PhaseGenerating || seq != e.genSeq {
		return false
	}
	e.questions = nil
	e.phase = PhaseSelecting
	return true
}

// Cancel backs out of a pending generation from the user's side; any reply
// still in flight becomes stale.
func (e *Engine) Cancel() {
	if e.phase != PhaseGenerating {
		return
	}
	e.genSeq++
	e.questions = nil
	e.phase = PhaseSelecting
}

func (e *Engine) Question() Question {
	if e.index < 0 || e.index >= len(e.questions) {
		return Question{}
	}
	return e.questions[e.index]
}

func (e *Engine) Questions() []Question {
	out := make([]Question, len(e.questions))
	copy(out, e.questions)
	return out
}

// SubmitAnswer grades the current question in place. Each question accepts
// exactly one answer; empty answers are rejected.
func (e *Engine) SubmitAnswer(answer string) (bool, error) {
	if e.phase != PhaseTaking {
		return false, ErrNotTaking
	}
	if strings.TrimSpace(answer) == "" {
		return false, ErrEmptyAnswer
	}
	q := &e.questions[e.index]
	if q.Answered {
		return false, ErrAlreadyAnswered
	}
	q.UserAnswer = answer
	q.Correct = answerMatches(q.Type, answer, q.CorrectAnswer)
	q.Answered = true
	return q.Correct, nil
}

// Advance moves past an answered question once feedback has been shown,
// finishing the test after the last one. It reports whether the test ended.
func (e *Engine) Advance() bool {
	if e.phase != PhaseTaking || len(e.questions) == 0 {
		return false
	}
	if !e.questions[e.index].Answered {
		return false
	}
	if e.index < len(e.questions)-1 {
		e.index++
		return false
	}
	e.phase = PhaseResults
	return true
}

func (e *Engine) Score() int {
	score := 0
	for _, q := range e.questions {
		if q.Correct {
			score++
		}
	}
	return score
}

// Result summarizes the finished test for the history log.
func (e *Engine) Result(now time.Time) TestResult {
	name := ""
	if e.set != nil {
		name = e.set.Title
	}
	return TestResult{
		SetName:        name,
		Score:          e.Score(),
		TotalQuestions: len(e.questions),
		Date:           now.Format("1/2/2006"),
	}
}

// Retake returns to set selection, discarding the finished questions.
func (e *Engine) Retake() {
	e.questions = nil
	e.index = 0
	e.phase = PhaseSelecting
}

// answerMatches grades one answer. Typed answers tolerate surrounding
// whitespace and letter case; choice answers must match exactly.
func answerMatches(t TestType, answer, correct string) bool {
	if t == FillInTheBlank {
		return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(correct))
	}
	return answer == correct
}

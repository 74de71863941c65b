package practice

// TestType selects the question shape the generator is asked for.
type TestType string

const (
	MultipleChoice TestType = "multiple-choice"
	FillInTheBlank TestType = "fill-in-the-blank"
	TrueFalse      TestType = "true-false"
)

// TestTypes is the cycle order shown in the setup view.
var TestTypes = []TestType{MultipleChoice, FillInTheBlank, TrueFalse}

// Question is one generated test question. The JSON tags cover the generator
// payload; answer bookkeeping is session-local and never serialized.
type Question struct {
	Type          TestType `json:"-"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`

	UserAnswer string `json:"-"`
	Answered   bool   `json:"-"`
	Correct    bool   `json:"-"`
}

// TestResult is the persisted summary of a finished test. It snapshots the
// set title; renaming or deleting the set later does not rewrite history.
type TestResult struct {
	SetName        string `json:"setName"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Date           string `json:"date"`
}

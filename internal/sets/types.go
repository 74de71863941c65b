package sets

type Flashcard struct {
	ID    string `json:"id" yaml:"id"`
	Front string `json:"front" yaml:"front"`
	Back  string `json:"back" yaml:"back"`
}

// FlashcardSet is the persisted shape of one study set. StudyProgress is a
// rounded percent in [0,100] and is omitted until a session has been studied.
type FlashcardSet struct {
	ID            string      `json:"id" yaml:"id"`
	Title         string      `json:"title" yaml:"title"`
	Description   string      `json:"description" yaml:"description"`
	Cards         []Flashcard `json:"cards" yaml:"cards"`
	CreatedAt     string      `json:"createdAt" yaml:"createdAt,omitempty"`
	StudyProgress int         `json:"studyProgress,omitempty" yaml:"studyProgress,omitempty"`
}

type CreateInput struct {
	Title       string
	Description string
	Cards       []Flashcard
}

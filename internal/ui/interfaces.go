package ui

type Controller interface {
	OnOpenHome()
	OnOpenStudy(setID string)
	OnOpenGenerator()
	OnOpenPractice()
	OnOpenAchievements()

	OnCreateSet(form SetForm)
	OnEditSet(setID string)
	OnUpdateSet(form SetForm)
	OnDeleteSet(setID string)
	OnRenameSet(setID, title string)

	OnFlipCard()
	OnNextCard()
	OnPreviousCard()
	OnMarkKnown()
	OnMarkUnknown()
	OnResetSession()

	OnSelectTestSet(setID string)
	OnAdjustQuestionCount(delta int)
	OnCycleTestType()
	OnStartTest()
	OnCancelGeneration()
	OnSubmitAnswer(answer string)
	OnRetakeTest()

	OnGenerateCards(topic, notes, filePath string)
	OnSaveGeneratedSet()
	OnDiscardDrafts()

	OnQuit()
}

type View interface {
	Run() error
	Stop()
	SetController(Controller)
	SetScreen(screen Screen)
	SetHomeState(HomeState)
	SetStudyState(StudyState)
	SetGeneratorState(GeneratorState)
	SetPracticeState(PracticeState)
	SetAchievementsState(AchievementsState)
	OpenSetForm(form SetForm)
	SetError(title, text string, open bool)
	FlashStatus(msg string)
	RequestDraw()
}

type Screen int

const (
	ScreenHome Screen = iota
	ScreenStudy
	ScreenGenerator
	ScreenPractice
	ScreenAchievements
)

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutCompact
	LayoutTooSmall
)

type SetSummary struct {
	ID          string
	Title       string
	Description string
	CardCount   int
	CreatedAt   string
	Progress    int
}

type HomeState struct {
	Sets               []SetSummary
	TotalCards         int
	AvgProgress        int
	HasNewAchievements bool
}

type StudyState struct {
	SetID           string
	Title           string
	Index           int
	Total           int
	Front           string
	Back            string
	Flipped         bool
	StudiedCount    int
	ProgressPercent float64
	AccuracyPercent float64
	Complete        bool
}

type CardRow struct {
	Front string
	Back  string
}

type GeneratorState struct {
	Generating bool
	Drafts     []CardRow
}

type QuestionView struct {
	Text          string
	Options       []string
	Type          string
	Answered      bool
	UserAnswer    string
	Correct       bool
	CorrectAnswer string
}

type ReviewRow struct {
	Question      string
	UserAnswer    string
	CorrectAnswer string
	Correct       bool
}

type PracticeState struct {
	Phase         string
	Sets          []SetSummary
	SelectedID    string
	QuestionCount int
	TestType      string
	Index         int
	Total         int
	Question      QuestionView
	Score         int
	Review        []ReviewRow
}

type AchievementRow struct {
	ID          string
	Name        string
	Description string
	Unlocked    bool
}

type AchievementsState struct {
	Streak   int
	Unlocked int
	Items    []AchievementRow
}

// SetForm is what the create/edit overlay hands back to the controller.
type SetForm struct {
	ID          string
	Title       string
	Description string
	Cards       []CardRow
}

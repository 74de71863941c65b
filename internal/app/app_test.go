package app

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cardaroo/internal/achievements"
	"cardaroo/internal/genai"
	"cardaroo/internal/practice"
	"cardaroo/internal/sets"
	"cardaroo/internal/storage"
	"cardaroo/internal/telemetry"
	"cardaroo/internal/ui"
)

type fakeView struct {
	mu       sync.Mutex
	screen   ui.Screen
	home     ui.HomeState
	study    ui.StudyState
	gen      ui.GeneratorState
	practice ui.PracticeState
	awards   ui.AchievementsState
	form     ui.SetForm
	errTitle string
	flashes  []string
	stopped  bool
}

func (f *fakeView) Run() error                  { return nil }
func (f *fakeView) SetController(ui.Controller) {}
func (f *fakeView) RequestDraw()                {}

func (f *fakeView) Stop() {
	defer f.lock()()
	f.stopped = true
}
func (f *fakeView) SetScreen(s ui.Screen) {
	defer f.lock()()
	f.screen = s
}
func (f *fakeView) SetHomeState(s ui.HomeState) {
	defer f.lock()()
	f.home = s
}
func (f *fakeView) SetStudyState(s ui.StudyState) {
	defer f.lock()()
	f.study = s
}
func (f *fakeView) SetGeneratorState(s ui.GeneratorState) {
	defer f.lock()()
	f.gen = s
}
func (f *fakeView) SetPracticeState(s ui.PracticeState) {
	defer f.lock()()
	f.practice = s
}
func (f *fakeView) SetAchievementsState(s ui.AchievementsState) {
	defer f.lock()()
	f.awards = s
}
func (f *fakeView) SetError(title, text string, open bool) {
	defer f.lock()()
	if open {
		f.errTitle = title
	} else {
		f.errTitle = ""
	}
}
func (f *fakeView) FlashStatus(msg string) {
	defer f.lock()()
	f.flashes = append(f.flashes, msg)
}
func (f *fakeView) OpenSetForm(form ui.SetForm) {
	defer f.lock()()
	f.form = form
}

func (f *fakeView) lock() func() {
	f.mu.Lock()
	return f.mu.Unlock
}

func (f *fakeView) practiceState() ui.PracticeState {
	defer f.lock()()
	return f.practice
}

func (f *fakeView) errorTitle() string {
	defer f.lock()()
	return f.errTitle
}

type fakeGen struct {
	cards     []genai.CardDraft
	questions []practice.Question
	err       error
	release   chan struct{}
}

func (g *fakeGen) GenerateCards(context.Context, genai.CardBrief) ([]genai.CardDraft, error) {
	if g.release != nil {
		<-g.release
	}
	return g.cards, g.err
}

func (g *fakeGen) GenerateTest(context.Context, genai.TestBrief) ([]practice.Question, error) {
	if g.release != nil {
		<-g.release
	}
	return g.questions, g.err
}

func newTestApp(t *testing.T, gen Generator) (*App, *fakeView) {
	t.Helper()
	store, err := storage.NewSQLite(filepath.Join(t.TempDir(), "cardaroo.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	logger, err := telemetry.NewJSONLogger("", "test-session")
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Study.AnswerFeedbackMS = 1
	view := &fakeView{}
	a := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		repo:      sets.NewRepository(store),
		history:   practice.NewHistory(store),
		tracker:   achievements.NewTracker(store),
		gateway:   gen,
		view:      view,
		sessionID: "test-session",
		test:      practice.NewEngine(),
	}
	return a, view
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestOpenStudyUnknownSetFallsBackHome(t *testing.T) {
	a, view := newTestApp(t, &fakeGen{})
	a.OnOpenStudy("does-not-exist")

	if view.screen != ui.ScreenHome {
		t.Fatalf("expected home screen, got %v", view.screen)
	}
	if len(view.flashes) == 0 || !strings.Contains(view.flashes[0], "no longer exists") {
		t.Fatalf("expected a missing-set flash, got %v", view.flashes)
	}
}

func TestCreateSetSkipsSeedingAndShowsDashboard(t *testing.T) {
	a, view := newTestApp(t, &fakeGen{})
	a.OnCreateSet(ui.SetForm{
		Title: "Chemistry",
		Cards: []ui.CardRow{{Front: "H2O", Back: "Water"}, {Front: "", Back: "ignored"}},
	})

	if len(view.home.Sets) != 1 {
		t.Fatalf("expected only the created set, got %d", len(view.home.Sets))
	}
	if view.home.Sets[0].Title != "Chemistry" || view.home.Sets[0].CardCount != 1 {
		t.Fatalf("unexpected summary: %+v", view.home.Sets[0])
	}
	if view.home.TotalCards != 1 {
		t.Fatalf("expected 1 total card, got %d", view.home.TotalCards)
	}
}

func TestEditSetRoundTrip(t *testing.T) {
	a, view := newTestApp(t, &fakeGen{})
	a.OnOpenHome()
	setID := view.home.Sets[0].ID

	a.OnEditSet(setID)
	if view.form.ID != setID || len(view.form.Cards) == 0 {
		t.Fatalf("expected a populated edit form, got %+v", view.form)
	}

	form := view.form
	form.Title = "Renamed via Form"
	a.OnUpdateSet(form)

	set, err := a.repo.Get(context.Background(), setID)
	if err != nil {
		t.Fatal(err)
	}
	if set.Title != "Renamed via Form" {
		t.Fatalf("expected updated title, got %q", set.Title)
	}
	if len(set.Cards) != len(form.Cards) {
		t.Fatalf("expected %d cards, got %d", len(form.Cards), len(set.Cards))
	}
}

func TestStudyMarksPersistProgress(t *testing.T) {
	a, view := newTestApp(t, &fakeGen{})
	a.OnOpenHome()
	setID := view.home.Sets[0].ID

	a.OnOpenStudy(setID)
	if view.screen != ui.ScreenStudy {
		t.Fatalf("expected study screen, got %v", view.screen)
	}
	total := view.study.Total
	a.OnMarkKnown()
	a.OnMarkUnknown()

	set, err := a.repo.Get(context.Background(), setID)
	if err != nil {
		t.Fatal(err)
	}
	want := int(float64(2) / float64(total) * 100)
	if set.StudyProgress < want-1 || set.StudyProgress > want+1 {
		t.Fatalf("expected persisted progress near %d, got %d", want, set.StudyProgress)
	}
}

func TestPracticeFlowRecordsHistory(t *testing.T) {
	gen := &fakeGen{questions: []practice.Question{
		{Question: "Capital of France?", Options: []string{"Paris", "Rome", "Oslo", "Bern"}, CorrectAnswer: "Paris"},
		{Question: "Capital of Italy?", Options: []string{"Paris", "Rome", "Oslo", "Bern"}, CorrectAnswer: "Rome"},
	}}
	a, view := newTestApp(t, gen)

	a.OnOpenPractice()
	if view.practiceState().SelectedID == "" {
		t.Fatal("expected a default selected set")
	}
	a.OnStartTest()
	if got := view.practiceState().Phase; got != "taking" {
		t.Fatalf("expected taking phase, got %q", got)
	}

	a.OnSubmitAnswer("Paris")
	waitFor(t, "advance to question 2", func() bool { return view.practiceState().Index == 1 })
	a.OnSubmitAnswer("Oslo")
	waitFor(t, "results", func() bool { return view.practiceState().Phase == "results" })

	state := view.practiceState()
	if state.Score != 1 || len(state.Review) != 2 {
		t.Fatalf("expected score 1 over 2 reviewed questions, got %+v", state)
	}
	results, err := a.history.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Score != 1 || results[0].TotalQuestions != 2 {
		t.Fatalf("unexpected history: %+v", results)
	}
}

func TestCancelMakesTestReplyInert(t *testing.T) {
	gen := &fakeGen{
		questions: []practice.Question{{Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"}},
		release:   make(chan struct{}),
	}
	a, view := newTestApp(t, gen)
	a.OnOpenPractice()

	done := make(chan struct{})
	go func() {
		a.OnStartTest()
		close(done)
	}()
	waitFor(t, "generating phase", func() bool { return view.practiceState().Phase == "generating" })

	a.OnCancelGeneration()
	close(gen.release)
	<-done

	if got := view.practiceState().Phase; got != "selecting" {
		t.Fatalf("expected the stale reply to be dropped, got phase %q", got)
	}
}

func TestCancelSilencesLateGenerationFailure(t *testing.T) {
	gen := &fakeGen{
		err:     context.DeadlineExceeded,
		release: make(chan struct{}),
	}
	a, view := newTestApp(t, gen)
	a.OnOpenPractice()

	done := make(chan struct{})
	go func() {
		a.OnStartTest()
		close(done)
	}()
	waitFor(t, "generating phase", func() bool { return view.practiceState().Phase == "generating" })

	a.OnCancelGeneration()
	close(gen.release)
	<-done

	if got := view.errorTitle(); got != "" {
		t.Fatalf("expected no error overlay after cancel, got %q", got)
	}
	if got := view.practiceState().Phase; got != "selecting" {
		t.Fatalf("expected to stay on selection, got phase %q", got)
	}
}

func TestGenerateAndSaveAISet(t *testing.T) {
	gen := &fakeGen{cards: []genai.CardDraft{
		{Front: "Hola", Back: "Hello"},
		{Front: "Adios", Back: "Goodbye"},
	}}
	a, view := newTestApp(t, gen)

	a.OnGenerateCards("Spanish Greetings", "", "")
	if len(view.gen.Drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(view.gen.Drafts))
	}

	a.OnSaveGeneratedSet()
	all, err := a.repo.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var saved *sets.FlashcardSet
	for i := range all {
		if all[i].Title == "Spanish Greetings" {
			saved = &all[i]
		}
	}
	if saved == nil {
		t.Fatalf("expected the generated set to be saved, got %+v", all)
	}
	if !strings.HasPrefix(saved.Description, "Generated on ") {
		t.Fatalf("unexpected description: %q", saved.Description)
	}
	if len(saved.Cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(saved.Cards))
	}
}

func TestOpeningAchievementsMarksThemSeen(t *testing.T) {
	a, view := newTestApp(t, &fakeGen{})
	a.OnOpenAchievements()

	if view.awards.Unlocked == 0 {
		t.Fatal("expected the seeded sets to unlock an achievement")
	}
	seen, err := a.tracker.SeenCount(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if seen != view.awards.Unlocked {
		t.Fatalf("expected watermark %d, got %d", view.awards.Unlocked, seen)
	}
}

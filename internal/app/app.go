package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"cardaroo/internal/achievements"
	"cardaroo/internal/genai"
	"cardaroo/internal/practice"
	"cardaroo/internal/sets"
	"cardaroo/internal/storage"
	"cardaroo/internal/study"
	"cardaroo/internal/telemetry"
	"cardaroo/internal/ui"

	"github.com/google/uuid"
)

type App struct {
	cfg Config

	logger  *telemetry.JSONLogger
	store   *storage.SQLiteStore
	repo    *sets.Repository
	history *practice.History
	tracker *achievements.Tracker
	gateway Generator

	view      ui.View
	sessionID string

	mu      sync.Mutex
	session *study.Session
	test    *practice.Engine

	drafts     []genai.CardDraft
	draftTopic string
	generating bool
	genSeq     int
}

func New(cfg Config) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	logger, err := telemetry.NewJSONLogger(cfg.LogPath, sessionID)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLite(filepath.Join(cfg.DataDir, "cardaroo.db"))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	view := ui.New(ui.Options{
		ASCIIOnly:    cfg.ASCIIOnly,
		Debug:        cfg.DebugLayout,
		StyleVariant: cfg.UI.StyleVariant,
		MotionLevel:  cfg.UI.MotionLevel,
	})

	a := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		repo:      sets.NewRepository(store),
		history:   practice.NewHistory(store),
		tracker:   achievements.NewTracker(store),
		gateway:   genai.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model),
		view:      view,
		sessionID: sessionID,
		test:      practice.NewEngine(),
	}
	view.SetController(a)
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Event("app.start", map[string]any{"dataDir": a.cfg.DataDir})

	a.mu.Lock()
	a.showHome(ctx)
	a.mu.Unlock()

	return a.view.Run()
}

func (a *App) Close() {
	_ = a.store.Close()
	a.logger.Event("app.stop", nil)
	_ = a.logger.Close()
}

// showHome rebuilds the dashboard from storage. Callers hold a.mu.
func (a *App) showHome(ctx context.Context) {
	all, err := a.repo.List(ctx)
	if err != nil {
		a.logger.Error("sets.list_failed", err, nil)
		a.view.SetError("Storage Error", err.Error(), true)
		return
	}
	tests, err := a.history.List(ctx)
	if err != nil {
		a.logger.Error("history.list_failed", err, nil)
	}

	unlocked := achievements.UnlockedIDs(all, tests)
	hasNew, err := a.tracker.HasNew(ctx, len(unlocked))
	if err != nil {
		a.logger.Error("achievements.check_failed", err, nil)
	}

	totalCards := 0
	progressSum := 0
	for _, s := range all {
		totalCards += len(s.Cards)
		progressSum += s.StudyProgress
	}
	avg := 0
	if len(all) > 0 {
		avg = int(math.Round(float64(progressSum) / float64(len(all))))
	}

	a.view.SetHomeState(ui.HomeState{
		Sets:               summarize(all),
		TotalCards:         totalCards,
		AvgProgress:        avg,
		HasNewAchievements: hasNew,
	})
	a.view.SetScreen(ui.ScreenHome)
}

func summarize(all []sets.FlashcardSet) []ui.SetSummary {
	out := make([]ui.SetSummary, 0, len(all))
	for _, s := range all {
		created := s.CreatedAt
		if t, err := time.Parse(time.RFC3339, s.CreatedAt); err == nil {
			created = t.Format("Jan 2, 2006")
		}
		out = append(out, ui.SetSummary{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			CardCount:   len(s.Cards),
			CreatedAt:   created,
			Progress:    s.StudyProgress,
		})
	}
	return out
}

// --- navigation ---

func (a *App) OnOpenHome() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.showHome(context.Background())
}

func (a *App) OnOpenStudy(setID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ctx := context.Background()

	set, err := a.repo.Get(ctx, setID)
	if errors.Is(err, sets.ErrNotFound) {
		a.view.FlashStatus("That set no longer exists")
		a.showHome(ctx)
		return
	}
	if err != nil {
		a.view.SetError("Storage Error", err.Error(), true)
		return
	}
	if len(set.Cards) == 0 {
		a.view.FlashStatus("That set has no cards yet")
		return
	}
	a.session = study.NewSession(set)
	a.logger.Event("study.start", map[string]any{"set": set.ID, "cards": len(set.Cards)})
	a.pushStudy()
	a.view.SetScreen(ui.ScreenStudy)
}

func (a *App) OnOpenGenerator() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pushGenerator()
	a.view.SetScreen(ui.ScreenGenerator)
}

func (a *App) OnOpenPractice() {
	a.mu.Lock()
	defer a.mu.Unlock()
	ctx := context.Background()

	a.test = practice.NewEngine()
	all, err := a.repo.List(ctx)
	if err != nil {
		a.view.SetError("Storage Error", err.Error(), true)
		return
	}
	if len(all) > 0 {
		a.test.SelectSet(all[0])
	}
	a.pushPractice(all)
	a.view.SetScreen(ui.ScreenPractice)
}

func (a *App) OnOpenAchievements() {
	a.mu.Lock()
	defer a.mu.Unlock()
	ctx := context.Background()

	all, err := a.repo.List(ctx)
	if err != nil {
		a.view.SetError("Storage Error", err.Error(), true)
		return
	}
	tests, err := a.history.List(ctx)
	if err != nil {
		a.logger.Error("history.list_failed", err, nil)
	}

	ids := achievements.UnlockedIDs(all, tests)
	unlocked := map[string]bool{}
	for _, id := range ids {
		unlocked[id] = true
	}
	items := make([]ui.AchievementRow, 0, len(achievements.Catalog))
	for _, ach := range achievements.Catalog {
		items = append(items, ui.AchievementRow{
			ID:          ach.ID,
			Name:        ach.Name,
			Description: ach.Description,
			Unlocked:    unlocked[ach.ID],
		})
	}

	streak, err := a.tracker.Streak(ctx, time.Now())
	if err != nil {
		a.logger.Error("achievements.streak_failed", err, nil)
	}
	// Opening the page acknowledges everything unlocked so far.
	if err := a.tracker.MarkSeen(ctx, len(ids)); err != nil {
		a.logger.Error("achievements.mark_seen_failed", err, nil)
	}

	a.view.SetAchievementsState(ui.AchievementsState{
		Streak:   streak,
		Unlocked: len(ids),
		Items:    items,
	})
	a.view.SetScreen(ui.ScreenAchievements)
}

func (a *App) OnQuit() {
	a.view.Stop()
}

// --- set management ---

func (a *App) OnCreateSet(form ui.SetForm) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ctx := context.Background()

	set, err := a.repo.Create(ctx, sets.CreateInput{
		Title:       form.Title,
		Description: form.Description,
		Cards:       formCards(form.Cards),
	})
	if err != nil {
		a.view.SetError("Could Not Create Set", err.Error(), true)
		return
	}
	a.logger.Event("sets.created", map[string]any{"set": set.ID, "cards": len(set.Cards)})
	a.view.FlashStatus(fmt.Sprintf("Created %q", set.Title))
	a.showHome(ctx)
}

func (a *App) OnEditSet(setID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ctx := context.Background()

	set, err := a.repo.Get(ctx, setID)
	if err != nil {
		a.view.FlashStatus("That set no longer exists")
		a.showHome(ctx)
		return
	}
	form := ui.SetForm{ID: set.ID, Title: set.Title, Description: set.Description}
	for _, c := range set.Cards {
		form.Cards = append(form.Cards, ui.CardRow{Front: c.Front, Back: c.Back})
	}
	a.view.OpenSetForm(form)
}

func (a *App) OnUpdateSet(form ui.SetForm) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ctx := context.Background()

	set, err := a.repo.Get(ctx, form.ID)
	if err != nil {
		a.view.SetError("Could Not Update Set", err.Error(), true)
		return
	}
	set.Title = form.Title
	set.Description = form.Description
	set.Cards = sets.ValidCards(formCards(form.Cards))
	if err := a.repo.Update(ctx, set); err != nil {
		a.view.SetError("Could Not Update Set", err.Error(), true)
		return
	}
	a.view.FlashStatus(fmt.Sprintf("Updated %q", set.Title))
	a.showHome(ctx)
}

func (a *App) OnDeleteSet(setID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ctx := context.Background()

	if err := a.repo.Delete(ctx, setID); err != nil {
		a.view.SetError("Could Not Delete Set", err.Error(), true)
		return
	}
	a.logger.Event("sets.deleted", map[string]any{"set": setID})
	a.view.FlashStatus("Set deleted")
	a.showHome(ctx)
}

func (a *App) OnRenameSet(setID, title string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ctx := context.Background()

	if err := a.repo.Rename(ctx, setID, title); err != nil {
		a.view.SetError("Could Not Rename Set", err.Error(), true)
		return
	}
	a.showHome(ctx)
}

func formCards(rows []ui.CardRow) []sets.Flashcard {
	out := make([]sets.Flashcard, 0, len(rows))
	for i, row := range rows {
		out = append(out, sets.Flashcard{
			ID:    strconv.Itoa(i + 1),
			Front: row.Front,
			Back:  row.Back,
		})
	}
	return out
}

// --- study session ---

func (a *App) pushStudy() {
	s := a.session
	if s == nil {
		return
	}
	set := s.Set()
	card := s.Card()
	a.view.SetStudyState(ui.StudyState{
		SetID:           set.ID,
		Title:           set.Title,
		Index:           s.Index(),
		Total:           len(set.Cards),
		Front:           card.Front,
		Back:            card.Back,
		Flipped:         s.Flipped(),
		StudiedCount:    s.StudiedCount(),
		ProgressPercent: s.ProgressPercent(),
		AccuracyPercent: s.AccuracyPercent(),
		Complete:        s.Complete(),
	})
}

func (a *App) OnFlipCard() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	a.session.Flip()
	a.pushStudy()
}

func (a *App) OnNextCard() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	a.session.Next()
	a.pushStudy()
}

func (a *App) OnPreviousCard() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	a.session.Previous()
	a.pushStudy()
}

func (a *App) OnMarkKnown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	a.session.MarkKnown()
	a.saveStudyProgress()
	a.pushStudy()
}

func (a *App) OnMarkUnknown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	a.session.MarkUnknown()
	a.saveStudyProgress()
	a.pushStudy()
}

func (a *App) OnResetSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	a.session.Reset()
	a.pushStudy()
}

// saveStudyProgress persists the studied percentage onto the set so the
// dashboard survives restarts. Callers hold a.mu.
func (a *App) saveStudyProgress() {
	ctx := context.Background()
	set := a.session.Set()
	set.StudyProgress = int(math.Round(a.session.ProgressPercent()))
	if err := a.repo.Update(ctx, set); err != nil {
		a.logger.Error("study.save_progress_failed", err, map[string]any{"set": set.ID})
	}
}

// --- AI card generator ---

func (a *App) pushGenerator() {
	rows := make([]ui.CardRow, 0, len(a.drafts))
	for _, d := range a.drafts {
		rows = append(rows, ui.CardRow{Front: d.Front, Back: d.Back})
	}
	a.view.SetGeneratorState(ui.GeneratorState{Generating: a.generating, Drafts: rows})
}

func (a *App) OnGenerateCards(topic, notes, filePath string) {
	a.mu.Lock()
	if a.generating {
		a.mu.Unlock()
		return
	}

	fileText := ""
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			a.view.SetError("Could Not Read File", err.Error(), true)
			a.mu.Unlock()
			return
		}
		fileText = string(data)
	}

	a.genSeq++
	seq := a.genSeq
	a.generating = true
	a.drafts = nil
	a.pushGenerator()
	a.mu.Unlock()

	brief := genai.CardBrief{Topic: topic, Notes: notes, FileText: fileText}
	drafts, err := a.gateway.GenerateCards(context.Background(), brief)

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.genSeq || !a.generating {
		return
	}
	a.generating = false
	if err != nil {
		a.logger.Error("genai.cards_failed", err, map[string]any{"topic": topic})
		a.view.SetError("Generation Failed", err.Error(), true)
		a.pushGenerator()
		return
	}
	a.drafts = drafts
	a.draftTopic = topic
	a.logger.Event("genai.cards_generated", map[string]any{"topic": topic, "count": len(drafts)})
	a.pushGenerator()
}

func (a *App) OnSaveGeneratedSet() {
	a.mu.Lock()
	defer a.mu.Unlock()
	ctx := context.Background()

	if len(a.drafts) == 0 {
		a.view.FlashStatus("Nothing to save yet")
		return
	}

	title := a.draftTopic
	if title == "" {
		title = "AI Generated Set"
	}
	cards := make([]sets.Flashcard, 0, len(a.drafts))
	for i, d := range a.drafts {
		cards = append(cards, sets.Flashcard{ID: strconv.Itoa(i + 1), Front: d.Front, Back: d.Back})
	}
	set, err := a.repo.Create(ctx, sets.CreateInput{
		Title:       title,
		Description: "Generated on " + time.Now().Format("1/2/2006"),
		Cards:       cards,
	})
	if err != nil {
		a.view.SetError("Could Not Save Set", err.Error(), true)
		return
	}
	a.drafts = nil
	a.draftTopic = ""
	a.view.FlashStatus(fmt.Sprintf("Saved %q", set.Title))
	a.showHome(ctx)
}

func (a *App) OnDiscardDrafts() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.drafts = nil
	a.draftTopic = ""
	a.pushGenerator()
}

// --- practice tests ---

func (a *App) pushPractice(all []sets.FlashcardSet) {
	e := a.test
	selectedID := ""
	if e.SelectedSet() != nil {
		selectedID = e.SelectedSet().ID
	}

	state := ui.PracticeState{
		Phase:         e.Phase().String(),
		Sets:          summarize(all),
		SelectedID:    selectedID,
		QuestionCount: e.QuestionCount(),
		TestType:      string(e.Type()),
		Index:         e.Index(),
		Total:         e.Total(),
		Score:         e.Score(),
	}

	switch e.Phase() {
	case practice.PhaseTaking:
		q := e.Question()
		state.Question = ui.QuestionView{
			Text:          q.Question,
			Options:       q.Options,
			Type:          string(q.Type),
			Answered:      q.Answered,
			UserAnswer:    q.UserAnswer,
			Correct:       q.Correct,
			CorrectAnswer: q.CorrectAnswer,
		}
	case practice.PhaseResults:
		for _, q := range e.Questions() {
			state.Review = append(state.Review, ui.ReviewRow{
				Question:      q.Question,
				UserAnswer:    q.UserAnswer,
				CorrectAnswer: q.CorrectAnswer,
				Correct:       q.Correct,
			})
		}
	}
	a.view.SetPracticeState(state)
}

func (a *App) listForPractice(ctx context.Context) []sets.FlashcardSet {
	all, err := a.repo.List(ctx)
	if err != nil {
		a.logger.Error("sets.list_failed", err, nil)
		return nil
	}
	return all
}

func (a *App) OnSelectTestSet(setID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ctx := context.Background()

	set, err := a.repo.Get(ctx, setID)
	if err != nil {
		return
	}
	a.test.SelectSet(set)
	a.pushPractice(a.listForPractice(ctx))
}

func (a *App) OnAdjustQuestionCount(delta int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.test.SetQuestionCount(a.test.QuestionCount() + delta)
	a.pushPractice(a.listForPractice(context.Background()))
}

func (a *App) OnCycleTestType() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.test.CycleType()
	a.pushPractice(a.listForPractice(context.Background()))
}

func (a *App) OnStartTest() {
	a.mu.Lock()
	ctx := context.Background()

	seq, err := a.test.Begin()
	if err != nil {
		a.view.FlashStatus(err.Error())
		a.mu.Unlock()
		return
	}
	set := a.test.SelectedSet()
	brief := genai.TestBrief{
		SetTitle: set.Title,
		Count:    a.test.QuestionCount(),
		Type:     a.test.Type(),
	}
	for _, c := range set.Cards {
		brief.Cards = append(brief.Cards, genai.CardLine{Front: c.Front, Back: c.Back})
	}
	a.pushPractice(a.listForPractice(ctx))
	a.mu.Unlock()

	questions, err := a.gateway.GenerateTest(ctx, brief)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		// A failure from a cancelled request stays silent; the user already
		// backed out.
		if !a.test.Fail(seq) {
			return
		}
		a.logger.Error("genai.test_failed", err, map[string]any{"set": set.ID})
		a.view.SetError("Generation Failed", err.Error(), true)
		a.pushPractice(a.listForPractice(ctx))
		return
	}
	if err := a.test.ApplyQuestions(seq, questions); err != nil {
		a.logger.Event("genai.test_reply_dropped", map[string]any{"set": set.ID})
		a.pushPractice(a.listForPractice(ctx))
		return
	}
	a.logger.Event("practice.started", map[string]any{"set": set.ID, "questions": len(questions)})
	a.pushPractice(a.listForPractice(ctx))
}

func (a *App) OnCancelGeneration() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.genSeq++
	a.generating = false
	a.test.Cancel()
	a.pushGenerator()
	a.pushPractice(a.listForPractice(context.Background()))
}

func (a *App) OnSubmitAnswer(answer string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.test.SubmitAnswer(answer); err != nil {
		if errors.Is(err, practice.ErrEmptyAnswer) {
			a.view.FlashStatus("Type an answer first")
		}
		return
	}
	ctx := context.Background()
	a.pushPractice(a.listForPractice(ctx))

	delay := time.Duration(a.cfg.Study.AnswerFeedbackMS) * time.Millisecond
	time.AfterFunc(delay, a.advanceAfterFeedback)
}

// advanceAfterFeedback runs once the correctness flash has been on screen
// long enough, moving to the next question or the results.
func (a *App) advanceAfterFeedback() {
	a.mu.Lock()
	defer a.mu.Unlock()
	ctx := context.Background()

	if a.test.Phase() != practice.PhaseTaking || !a.test.Question().Answered {
		return
	}
	if a.test.Advance() {
		result := a.test.Result(time.Now())
		if err := a.history.Record(ctx, result); err != nil {
			a.logger.Error("history.record_failed", err, nil)
		}
		a.logger.Event("practice.finished", map[string]any{
			"set":   result.SetName,
			"score": result.Score,
			"total": result.TotalQuestions,
		})
	}
	a.pushPractice(a.listForPractice(ctx))
}

func (a *App) OnRetakeTest() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.test.Retake()
	a.pushPractice(a.listForPractice(context.Background()))
}

var _ ui.Controller = (*App)(nil)

package ui

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	clog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
)

type applyMsg struct {
	fn func(*Root)
}

type drawMsg struct{}
type animateMsg time.Time

type appKeyMap struct {
	Study    key.Binding
	NewSet   key.Binding
	Generate key.Binding
	Practice key.Binding
	Awards   key.Binding
	Search   key.Binding
	Quit     key.Binding
}

func (k appKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Study, k.NewSet, k.Generate, k.Practice, k.Awards, k.Search, k.Quit}
}

func (k appKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Study, k.NewSet, k.Generate}, {k.Practice, k.Awards, k.Search, k.Quit}}
}

type Root struct {
	theme        Theme
	ascii        bool
	debug        bool
	ctrl         Controller
	styleVariant string
	motionLevel  string

	mu      sync.Mutex
	program *tea.Program
	running bool

	screen Screen
	layout LayoutMode
	cols   int
	rows   int

	home         HomeState
	study        StudyState
	generator    GeneratorState
	practice     PracticeState
	achievements AchievementsState

	homeIndex   int
	statusFlash string

	searchInput textinput.Model
	searchFocus bool

	formOpen   bool
	formID     string
	formTitle  textinput.Model
	formDesc   textinput.Model
	formCards  []textinput.Model
	formFocus  int
	formNotice string

	renameOpen  bool
	renameID    string
	renameInput textinput.Model

	confirmOpen  bool
	confirmID    string
	confirmTitle string
	confirmIndex int

	errorOpen  bool
	errorTitle string
	errorText  string

	topicInput textinput.Model
	notesInput textinput.Model
	fileInput  textinput.Model
	genFocus   int

	answerInput textinput.Model
	optionIndex int

	help      help.Model
	keymap    appKeyMap
	studyBar  progress.Model
	waitSpin  spinner.Model
	markdown  *glamour.TermRenderer
	logger    *clog.Logger
	flipPos   float64
	flipVel   float64
	spring    harmonica.Spring

	drawPending atomic.Bool

	lastInputEvent string
}

type Options struct {
	ASCIIOnly    bool
	Debug        bool
	StyleVariant string
	MotionLevel  string
}

func New(opts Options) *Root {
	logger := clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "cardaroo-ui", Level: clog.WarnLevel})
	if opts.Debug {
		logger.SetLevel(clog.DebugLevel)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(60),
	)
	if err != nil {
		renderer = nil
	}

	h := help.New()
	h.Styles = help.DefaultDarkStyles()
	motionLevel := normalizeMotionLevel(opts.MotionLevel)
	styleVariant := normalizeStyleVariant(opts.StyleVariant)
	theme := ThemeForVariant(styleVariant)
	spring := harmonica.NewSpring(harmonica.FPS(60), 10.0, 0.8)
	switch motionLevel {
	case "reduced":
		spring = harmonica.NewSpring(harmonica.FPS(30), 9.0, 0.92)
	case "off":
		spring = harmonica.NewSpring(harmonica.FPS(60), 1000.0, 1.0)
	}
	studyBar := progress.New(
		progress.WithWidth(24),
		progress.WithColors(lipgloss.Color("#5EC2FF"), lipgloss.Color("#79E6A6"), lipgloss.Color("#F2D16B")),
		progress.WithScaled(true),
	)
	if motionLevel == "off" {
		studyBar.SetSpringOptions(1000.0, 1.0)
	}
	waitSpin := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(theme.Accent),
	)

	r := &Root{
		theme:        theme,
		ascii:        opts.ASCIIOnly,
		debug:        opts.Debug,
		styleVariant: styleVariant,
		motionLevel:  motionLevel,
		screen:       ScreenHome,
		layout:       LayoutWide,
		cols:         110,
		rows:         30,
		help:         h,
		studyBar:     studyBar,
		waitSpin:     waitSpin,
		markdown:     renderer,
		logger:       logger,
		spring:       spring,
	}
	r.keymap = appKeyMap{
		Study:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Study")),
		NewSet:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "New set")),
		Generate: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "AI cards")),
		Practice: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "Practice")),
		Awards:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "Progress")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "Search")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("Ctrl+Q", "Quit")),
	}

	r.searchInput = newInput("Search sets...")
	r.topicInput = newInput("Topic, e.g. Photosynthesis")
	r.notesInput = newInput("Anything the cards should emphasize")
	r.fileInput = newInput("Path to a notes file (optional)")
	r.answerInput = newInput("Type your answer")
	return r
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 400
	return ti
}

func (r *Root) Init() tea.Cmd {
	return tea.Batch(animateTickCmd(), spinnerTickCmd(r.waitSpin))
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.layout = DetermineLayoutMode(r.cols, r.rows)
		return r, nil
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, r.animateIfNeeded()
	case drawMsg:
		r.drawPending.Store(false)
		return r, nil
	case animateMsg:
		target := 0.0
		if r.study.Flipped {
			target = 1.0
		}
		r.flipPos, r.flipVel = r.spring.Update(r.flipPos, r.flipVel, target)
		if r.shouldAnimate(target) {
			return r, animateTickCmd()
		}
		if target == 0 {
			r.flipPos = 0
		} else {
			r.flipPos = 1
		}
		r.flipVel = 0
		return r, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.waitSpin, cmd = r.waitSpin.Update(msg)
		return r, cmd
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}
	return r, nil
}

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			msg := "UI recovered from a rendering panic. Check logs."
			if r.statusFlash == "" {
				r.statusFlash = "Recovered UI panic"
			}
			view = tea.NewView(r.theme.Incorrect.Width(width).Render(trimForWidth(msg, max(1, width-1))))
		}
	}()

	if r.cols < 1 {
		r.cols = 110
	}
	if r.rows < 1 {
		r.rows = 30
	}

	var base string
	if DetermineLayoutMode(r.cols, r.rows) == LayoutTooSmall {
		panel := r.drawPanel("Resize Required", []string{
			"Terminal too small",
			fmt.Sprintf("Current: %dx%d", r.cols, r.rows),
			"Minimum: 70x20",
			"Resize the terminal to continue.",
		}, min(50, r.cols), min(8, r.rows))
		base = lipgloss.Place(r.cols, r.rows, lipgloss.Center, lipgloss.Center, panel)
	} else {
		switch r.screen {
		case ScreenStudy:
			base = r.renderStudy()
		case ScreenGenerator:
			base = r.renderGenerator()
		case ScreenPractice:
			base = r.renderPractice()
		case ScreenAchievements:
			base = r.renderAchievements()
		default:
			base = r.renderHome()
		}
	}

	if overlay := r.renderOverlay(); overlay != "" {
		base = composeOverlay(base, overlay, r.cols, r.rows)
	}
	v := tea.NewView(base)
	v.AltScreen = true
	return v
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r)
	r.program = p
	r.running = true
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	r.mu.Unlock()
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

func (r *Root) SetController(c Controller) {
	r.ctrl = c
}

func (r *Root) SetScreen(screen Screen) {
	r.apply(func(m *Root) {
		m.screen = screen
		m.statusFlash = ""
		if screen != ScreenHome {
			m.searchFocus = false
			m.searchInput.Blur()
		}
		if screen == ScreenStudy {
			m.flipPos = 0
			m.flipVel = 0
		}
		if screen == ScreenPractice {
			m.optionIndex = 0
			m.answerInput.SetValue("")
		}
	})
}

func (r *Root) SetHomeState(state HomeState) {
	r.apply(func(m *Root) {
		m.home = state
		if m.homeIndex >= len(state.Sets) {
			m.homeIndex = max(0, len(state.Sets)-1)
		}
	})
}

func (r *Root) SetStudyState(state StudyState) {
	r.apply(func(m *Root) {
		m.study = state
		if !state.Flipped {
			// Snap the animation when the card changed under us.
			if m.flipPos > 0.999 {
				m.flipPos = 0
				m.flipVel = 0
			}
		}
	})
}

func (r *Root) SetGeneratorState(state GeneratorState) {
	r.apply(func(m *Root) {
		m.generator = state
	})
}

func (r *Root) SetPracticeState(state PracticeState) {
	r.apply(func(m *Root) {
		prevIndex := m.practice.Index
		m.practice = state
		if state.Phase != "taking" || state.Index != prevIndex {
			m.optionIndex = 0
			m.answerInput.SetValue("")
			m.answerInput.Blur()
			if state.Phase == "taking" && state.TestType == "fill-in-the-blank" && !state.Question.Answered {
				m.answerInput.Focus()
			}
		}
	})
}

func (r *Root) SetAchievementsState(state AchievementsState) {
	r.apply(func(m *Root) {
		m.achievements = state
	})
}

func (r *Root) OpenSetForm(form SetForm) {
	r.apply(func(m *Root) {
		m.openSetForm(form)
		_ = m.formFocusCmd()
	})
}

func (r *Root) SetError(title, text string, open bool) {
	r.apply(func(m *Root) {
		m.errorTitle = title
		m.errorText = text
		m.errorOpen = open
	})
}

func (r *Root) FlashStatus(msg string) {
	r.apply(func(m *Root) {
		m.statusFlash = msg
	})
}

func (r *Root) RequestDraw() {
	r.mu.Lock()
	p := r.program
	running := r.running
	r.mu.Unlock()
	if !running || p == nil {
		return
	}
	if !r.drawPending.CompareAndSwap(false, true) {
		return
	}
	time.AfterFunc(16*time.Millisecond, func() {
		r.mu.Lock()
		p := r.program
		running := r.running
		r.mu.Unlock()
		if !running || p == nil {
			r.drawPending.Store(false)
			return
		}
		p.Send(drawMsg{})
	})
}

func (r *Root) apply(fn func(*Root)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	p.Send(applyMsg{fn: fn})
}

func (r *Root) dispatchController(fn func(Controller)) {
	if fn == nil || r.ctrl == nil {
		return
	}
	ctrl := r.ctrl
	go fn(ctrl)
}

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	r.recordInputEvent(fmt.Sprintf("key:%v mod:%v text:%q", msg.Code, msg.Mod, msg.Text))

	if key.Matches(msg, r.keymap.Quit) {
		r.dispatchController(func(c Controller) { c.OnQuit() })
		return r, nil
	}

	if r.overlayActive() {
		return r.handleOverlayKey(msg)
	}

	switch r.screen {
	case ScreenStudy:
		return r.handleStudyKey(msg)
	case ScreenGenerator:
		return r.handleGeneratorKey(msg)
	case ScreenPractice:
		return r.handlePracticeKey(msg)
	case ScreenAchievements:
		return r.handleAchievementsKey(msg)
	default:
		return r.handleHomeKey(msg)
	}
}

// --- home ---

func (r *Root) filteredSets() []SetSummary {
	query := strings.ToLower(strings.TrimSpace(r.searchInput.Value()))
	if query == "" {
		return r.home.Sets
	}
	var out []SetSummary
	for _, s := range r.home.Sets {
		if strings.Contains(strings.ToLower(s.Title), query) {
			out = append(out, s)
		}
	}
	return out
}

func (r *Root) selectedHomeSet() (SetSummary, bool) {
	visible := r.filteredSets()
	if len(visible) == 0 {
		return SetSummary{}, false
	}
	return visible[wrapIndex(r.homeIndex, len(visible))], true
}

func (r *Root) handleHomeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if r.searchFocus {
		switch msg.Code {
		case tea.KeyEsc:
			r.searchFocus = false
			r.searchInput.Blur()
			r.searchInput.SetValue("")
			return r, nil
		case tea.KeyEnter, tea.KeyDown, tea.KeyTab:
			r.searchFocus = false
			r.searchInput.Blur()
			return r, nil
		}
		var cmd tea.Cmd
		r.searchInput, cmd = r.searchInput.Update(msg)
		r.homeIndex = 0
		return r, cmd
	}

	visible := r.filteredSets()
	switch msg.Code {
	case tea.KeyUp:
		r.homeIndex = wrapIndex(r.homeIndex-1, len(visible))
		return r, nil
	case tea.KeyDown, tea.KeyTab:
		r.homeIndex = wrapIndex(r.homeIndex+1, len(visible))
		return r, nil
	case tea.KeyEnter:
		if set, ok := r.selectedHomeSet(); ok {
			r.dispatchController(func(c Controller) { c.OnOpenStudy(set.ID) })
		}
		return r, nil
	case tea.KeyEsc:
		if strings.TrimSpace(r.searchInput.Value()) != "" {
			r.searchInput.SetValue("")
			return r, nil
		}
		r.dispatchController(func(c Controller) { c.OnQuit() })
		return r, nil
	}

	if msg.Mod != 0 {
		return r, nil
	}
	switch msg.Code {
	case '/':
		r.searchFocus = true
		return r, r.searchInput.Focus()
	case 'n':
		r.openSetForm(SetForm{})
		return r, r.formFocusCmd()
	case 'e':
		if set, ok := r.selectedHomeSet(); ok {
			r.dispatchController(func(c Controller) { c.OnEditSet(set.ID) })
		}
		return r, nil
	case 'r':
		if set, ok := r.selectedHomeSet(); ok {
			r.renameOpen = true
			r.renameID = set.ID
			r.renameInput = newInput("New title")
			r.renameInput.SetValue(set.Title)
			return r, r.renameInput.Focus()
		}
		return r, nil
	case 'd':
		if set, ok := r.selectedHomeSet(); ok {
			r.confirmOpen = true
			r.confirmID = set.ID
			r.confirmTitle = set.Title
			r.confirmIndex = 0
		}
		return r, nil
	case 'g':
		r.dispatchController(func(c Controller) { c.OnOpenGenerator() })
		return r, nil
	case 'p':
		r.dispatchController(func(c Controller) { c.OnOpenPractice() })
		return r, nil
	case 'a':
		r.dispatchController(func(c Controller) { c.OnOpenAchievements() })
		return r, nil
	}
	return r, nil
}

// --- study ---

func (r *Root) handleStudyKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.Code {
	case tea.KeyEsc:
		r.dispatchController(func(c Controller) { c.OnOpenHome() })
		return r, nil
	case ' ', tea.KeyEnter:
		r.dispatchController(func(c Controller) { c.OnFlipCard() })
		return r, r.animateIfNeeded()
	case tea.KeyLeft:
		r.dispatchController(func(c Controller) { c.OnPreviousCard() })
		return r, nil
	case tea.KeyRight:
		r.dispatchController(func(c Controller) { c.OnNextCard() })
		return r, nil
	}
	if msg.Mod != 0 {
		return r, nil
	}
	switch msg.Code {
	case 'k':
		r.dispatchController(func(c Controller) { c.OnMarkKnown() })
	case 'x':
		r.dispatchController(func(c Controller) { c.OnMarkUnknown() })
	case 'R':
		r.dispatchController(func(c Controller) { c.OnResetSession() })
	}
	return r, nil
}

// --- generator ---

func (r *Root) generatorInputs() []*textinput.Model {
	return []*textinput.Model{&r.topicInput, &r.notesInput, &r.fileInput}
}

func (r *Root) handleGeneratorKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	inputs := r.generatorInputs()

	switch msg.Code {
	case tea.KeyEsc:
		r.blurGenerator()
		if r.generator.Generating {
			r.dispatchController(func(c Controller) { c.OnCancelGeneration() })
		}
		r.dispatchController(func(c Controller) { c.OnOpenHome() })
		return r, nil
	case tea.KeyTab, tea.KeyDown:
		r.genFocus = wrapIndex(r.genFocus+1, len(inputs))
		return r, r.focusGenerator()
	case tea.KeyUp:
		r.genFocus = wrapIndex(r.genFocus-1, len(inputs))
		return r, r.focusGenerator()
	case tea.KeyEnter:
		if r.generator.Generating {
			return r, nil
		}
		topic, notes, file := r.topicInput.Value(), r.notesInput.Value(), r.fileInput.Value()
		r.dispatchController(func(c Controller) { c.OnGenerateCards(topic, notes, file) })
		return r, nil
	}

	if msg.Mod&tea.ModCtrl != 0 && (msg.Code == 's' || msg.Code == 'S') {
		r.dispatchController(func(c Controller) { c.OnSaveGeneratedSet() })
		return r, nil
	}
	if msg.Mod&tea.ModCtrl != 0 && (msg.Code == 'd' || msg.Code == 'D') {
		r.dispatchController(func(c Controller) { c.OnDiscardDrafts() })
		return r, nil
	}

	focused := inputs[wrapIndex(r.genFocus, len(inputs))]
	if !focused.Focused() {
		return r, r.focusGenerator()
	}
	var cmd tea.Cmd
	*focused, cmd = focused.Update(msg)
	return r, cmd
}

func (r *Root) focusGenerator() tea.Cmd {
	inputs := r.generatorInputs()
	var cmd tea.Cmd
	for i, in := range inputs {
		if i == wrapIndex(r.genFocus, len(inputs)) {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

func (r *Root) blurGenerator() {
	for _, in := range r.generatorInputs() {
		in.Blur()
	}
}

// --- practice ---

func (r *Root) handlePracticeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.Code == tea.KeyEsc {
		if r.practice.Phase == "generating" {
			r.dispatchController(func(c Controller) { c.OnCancelGeneration() })
			return r, nil
		}
		r.dispatchController(func(c Controller) { c.OnOpenHome() })
		return r, nil
	}

	switch r.practice.Phase {
	case "taking":
		return r.handleTakingKey(msg)
	case "results":
		if msg.Mod == 0 && (msg.Code == 'r' || msg.Code == tea.KeyEnter) {
			r.dispatchController(func(c Controller) { c.OnRetakeTest() })
		}
		return r, nil
	case "generating":
		return r, nil
	}

	// selecting
	sets := r.practice.Sets
	switch msg.Code {
	case tea.KeyUp:
		r.moveTestSelection(sets, -1)
		return r, nil
	case tea.KeyDown, tea.KeyTab:
		r.moveTestSelection(sets, 1)
		return r, nil
	case tea.KeyLeft:
		r.dispatchController(func(c Controller) { c.OnAdjustQuestionCount(-1) })
		return r, nil
	case tea.KeyRight:
		r.dispatchController(func(c Controller) { c.OnAdjustQuestionCount(1) })
		return r, nil
	case tea.KeyEnter:
		r.dispatchController(func(c Controller) { c.OnStartTest() })
		return r, nil
	}
	if msg.Mod == 0 && msg.Code == 't' {
		r.dispatchController(func(c Controller) { c.OnCycleTestType() })
	}
	return r, nil
}

func (r *Root) moveTestSelection(sets []SetSummary, delta int) {
	if len(sets) == 0 {
		return
	}
	idx := 0
	for i, s := range sets {
		if s.ID == r.practice.SelectedID {
			idx = i
			break
		}
	}
	next := sets[wrapIndex(idx+delta, len(sets))]
	r.dispatchController(func(c Controller) { c.OnSelectTestSet(next.ID) })
}

func (r *Root) handleTakingKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	q := r.practice.Question
	if q.Answered {
		// Feedback is on screen; the controller advances on its own clock.
		return r, nil
	}

	switch r.practice.TestType {
	case "fill-in-the-blank":
		if msg.Code == tea.KeyEnter {
			answer := r.answerInput.Value()
			r.dispatchController(func(c Controller) { c.OnSubmitAnswer(answer) })
			return r, nil
		}
		var cmd tea.Cmd
		r.answerInput, cmd = r.answerInput.Update(msg)
		return r, cmd
	case "true-false":
		switch msg.Code {
		case tea.KeyLeft, tea.KeyRight, tea.KeyUp, tea.KeyDown, tea.KeyTab:
			r.optionIndex = 1 - wrapIndex(r.optionIndex, 2)
		case tea.KeyEnter:
			answer := []string{"True", "False"}[wrapIndex(r.optionIndex, 2)]
			r.dispatchController(func(c Controller) { c.OnSubmitAnswer(answer) })
		}
		return r, nil
	default:
		switch msg.Code {
		case tea.KeyUp:
			r.optionIndex = wrapIndex(r.optionIndex-1, len(q.Options))
		case tea.KeyDown, tea.KeyTab:
			r.optionIndex = wrapIndex(r.optionIndex+1, len(q.Options))
		case tea.KeyEnter:
			if len(q.Options) > 0 {
				answer := q.Options[wrapIndex(r.optionIndex, len(q.Options))]
				r.dispatchController(func(c Controller) { c.OnSubmitAnswer(answer) })
			}
		}
		return r, nil
	}
}

func (r *Root) handleAchievementsKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.Code == tea.KeyEsc || (msg.Mod == 0 && msg.Code == 'q') {
		r.dispatchController(func(c Controller) { c.OnOpenHome() })
	}
	return r, nil
}

// --- set form overlay ---

func (r *Root) openSetForm(form SetForm) {
	r.formOpen = true
	r.formID = form.ID
	r.formNotice = ""
	r.formTitle = newInput("Set title")
	r.formTitle.SetValue(form.Title)
	r.formDesc = newInput("Short description")
	r.formDesc.SetValue(form.Description)
	r.formCards = nil
	for _, c := range form.Cards {
		front := newInput("Front")
		front.SetValue(c.Front)
		back := newInput("Back")
		back.SetValue(c.Back)
		r.formCards = append(r.formCards, front, back)
	}
	if len(r.formCards) == 0 {
		r.formCards = append(r.formCards, newInput("Front"), newInput("Back"))
	}
	r.formFocus = 0
}

func (r *Root) formInputs() []*textinput.Model {
	out := []*textinput.Model{&r.formTitle, &r.formDesc}
	for i := range r.formCards {
		out = append(out, &r.formCards[i])
	}
	return out
}

func (r *Root) formFocusCmd() tea.Cmd {
	inputs := r.formInputs()
	var cmd tea.Cmd
	for i, in := range inputs {
		if i == wrapIndex(r.formFocus, len(inputs)) {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

func (r *Root) submitSetForm() {
	form := SetForm{
		ID:          r.formID,
		Title:       r.formTitle.Value(),
		Description: r.formDesc.Value(),
	}
	for i := 0; i+1 < len(r.formCards); i += 2 {
		form.Cards = append(form.Cards, CardRow{
			Front: r.formCards[i].Value(),
			Back:  r.formCards[i+1].Value(),
		})
	}
	hasCard := false
	for _, c := range form.Cards {
		if strings.TrimSpace(c.Front) != "" && strings.TrimSpace(c.Back) != "" {
			hasCard = true
			break
		}
	}
	if strings.TrimSpace(form.Title) == "" {
		r.formNotice = "A title is required."
		return
	}
	if !hasCard {
		r.formNotice = "Fill in both sides of at least one card."
		return
	}
	r.formOpen = false
	if form.ID == "" {
		r.dispatchController(func(c Controller) { c.OnCreateSet(form) })
	} else {
		r.dispatchController(func(c Controller) { c.OnUpdateSet(form) })
	}
}

// --- overlays ---

func (r *Root) topOverlay() string {
	switch {
	case r.errorOpen:
		return "error"
	case r.confirmOpen:
		return "confirm"
	case r.renameOpen:
		return "rename"
	case r.formOpen:
		return "form"
	}
	return ""
}

func (r *Root) overlayActive() bool {
	return r.topOverlay() != ""
}

func (r *Root) handleOverlayKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch r.topOverlay() {
	case "error":
		if msg.Code == tea.KeyEsc || msg.Code == tea.KeyEnter || (msg.Mod == 0 && msg.Code == 'q') {
			r.errorOpen = false
			r.errorTitle = ""
			r.errorText = ""
		}
		return r, nil
	case "confirm":
		switch msg.Code {
		case tea.KeyEsc:
			r.confirmOpen = false
		case tea.KeyLeft, tea.KeyUp:
			r.confirmIndex = 0
		case tea.KeyRight, tea.KeyDown, tea.KeyTab:
			r.confirmIndex = 1
		case tea.KeyEnter:
			r.confirmOpen = false
			if r.confirmIndex == 1 {
				id := r.confirmID
				r.dispatchController(func(c Controller) { c.OnDeleteSet(id) })
			}
		}
		return r, nil
	case "rename":
		switch msg.Code {
		case tea.KeyEsc:
			r.renameOpen = false
			return r, nil
		case tea.KeyEnter:
			r.renameOpen = false
			id, title := r.renameID, r.renameInput.Value()
			r.dispatchController(func(c Controller) { c.OnRenameSet(id, title) })
			return r, nil
		}
		var cmd tea.Cmd
		r.renameInput, cmd = r.renameInput.Update(msg)
		return r, cmd
	case "form":
		return r.handleFormKey(msg)
	}
	return r, nil
}

func (r *Root) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	inputs := r.formInputs()
	switch msg.Code {
	case tea.KeyEsc:
		r.formOpen = false
		return r, nil
	case tea.KeyTab, tea.KeyDown:
		r.formFocus = wrapIndex(r.formFocus+1, len(inputs))
		return r, r.formFocusCmd()
	case tea.KeyUp:
		r.formFocus = wrapIndex(r.formFocus-1, len(inputs))
		return r, r.formFocusCmd()
	case tea.KeyEnter:
		if r.formFocus == len(inputs)-1 {
			r.submitSetForm()
			return r, nil
		}
		r.formFocus = wrapIndex(r.formFocus+1, len(inputs))
		return r, r.formFocusCmd()
	}
	if msg.Mod&tea.ModCtrl != 0 {
		switch msg.Code {
		case 'n', 'N':
			r.formCards = append(r.formCards, newInput("Front"), newInput("Back"))
			r.formFocus = len(r.formInputs()) - 2
			return r, r.formFocusCmd()
		case 's', 'S':
			r.submitSetForm()
			return r, nil
		}
	}
	focused := inputs[wrapIndex(r.formFocus, len(inputs))]
	var cmd tea.Cmd
	*focused, cmd = focused.Update(msg)
	return r, cmd
}

type overlaySpec struct {
	title string
	lines []string
	width int
}

func (r *Root) renderOverlay() string {
	spec, ok := r.overlaySpec(r.topOverlay())
	if !ok {
		return ""
	}
	height := min(len(spec.lines)+2, max(8, r.rows-4))
	return r.drawPanel(spec.title, spec.lines, spec.width, height)
}

func (r *Root) overlaySpec(top string) (overlaySpec, bool) {
	if top == "" {
		return overlaySpec{}, false
	}
	w := min(max(56, r.cols-20), r.cols)

	var title string
	var lines []string
	switch top {
	case "error":
		title = firstNonEmptyStr(r.errorTitle, "Error")
		lines = strings.Split(strings.TrimSpace(r.errorText), "\n")
		lines = append(lines, "", "Esc: Close")
	case "confirm":
		title = "Delete Set"
		lines = []string{fmt.Sprintf("Delete %q and all of its cards?", r.confirmTitle), ""}
		labels := []string{"Cancel", "Delete"}
		for i, label := range labels {
			prefix := "  "
			if i == r.confirmIndex {
				prefix = "> "
			}
			lines = append(lines, prefix+label)
		}
	case "rename":
		title = "Rename Set"
		lines = []string{
			"New title:",
			"  " + r.renameInput.View(),
			"",
			"Enter: Save    Esc: Cancel",
		}
	case "form":
		title = "New Study Set"
		if r.formID != "" {
			title = "Edit Study Set"
		}
		focus := func(i int) string {
			if i == wrapIndex(r.formFocus, len(r.formInputs())) {
				return "> "
			}
			return "  "
		}
		lines = append(lines,
			focus(0)+"Title:       "+r.formTitle.View(),
			focus(1)+"Description: "+r.formDesc.View(),
			"")
		for i := 0; i+1 < len(r.formCards); i += 2 {
			lines = append(lines,
				fmt.Sprintf("%sCard %d front: %s", focus(2+i), i/2+1, r.formCards[i].View()),
				fmt.Sprintf("%sCard %d back:  %s", focus(3+i), i/2+1, r.formCards[i+1].View()))
		}
		lines = append(lines, "")
		if r.formNotice != "" {
			lines = append(lines, r.formNotice, "")
		}
		lines = append(lines, "Ctrl+N: Add card    Ctrl+S: Save    Esc: Cancel")
	default:
		return overlaySpec{}, false
	}
	if len(lines) == 0 {
		lines = []string{"(empty)"}
	}
	return overlaySpec{title: title, lines: lines, width: w}, true
}

// --- rendering ---

func (r *Root) headerText(sub string) string {
	parts := []string{"Cardaroo"}
	if sub != "" {
		parts = append(parts, sub)
	}
	txt := strings.Join(parts, " | ")
	if r.debug {
		txt = fmt.Sprintf("%s | %dx%d", txt, r.cols, r.rows)
	}
	return r.theme.Header.Width(max(1, r.cols)).Render(trimForWidth(txt, max(1, r.cols-1)))
}

func (r *Root) statusText(extra string) string {
	keys := r.help.View(r.keymap)
	if extra != "" {
		keys = extra
	}
	if r.statusFlash != "" {
		keys += " | " + r.statusFlash
	}
	keys = trimForWidth(keys, max(1, r.cols-1))
	return r.theme.Status.Width(max(1, r.cols)).Render(keys)
}

func (r *Root) renderHome() string {
	w, h := r.cols, r.rows
	header := r.headerText("Master any subject")
	bodyH := max(8, h-2)

	visible := r.filteredSets()
	listLines := []string{"Search: " + r.searchInput.View(), ""}
	if len(visible) == 0 {
		if len(r.home.Sets) == 0 {
			listLines = append(listLines, "No study sets yet.", "", "Press n to create one or g for AI cards.")
		} else {
			listLines = append(listLines, "No sets match your search.")
		}
	}
	for i, s := range visible {
		prefix := "  "
		if i == wrapIndex(r.homeIndex, len(visible)) {
			prefix = "> "
		}
		listLines = append(listLines, fmt.Sprintf("%s%s (%d cards)", prefix, s.Title, s.CardCount))
	}
	leftW := min(48, max(30, w/2))
	left := r.drawPanel("Study Sets", listLines, leftW, bodyH)

	var b strings.Builder
	fmt.Fprintf(&b, "Sets: %d   Cards: %d\n", len(r.home.Sets), r.home.TotalCards)
	fmt.Fprintf(&b, "Avg Progress: %d%%\n", r.home.AvgProgress)
	if r.home.HasNewAchievements {
		b.WriteString("\n" + r.badge("New achievement unlocked! Press a.") + "\n")
	}
	if set, ok := r.selectedHomeSet(); ok {
		b.WriteString("\n" + set.Title + "\n")
		if strings.TrimSpace(set.Description) != "" {
			b.WriteString(set.Description + "\n")
		}
		fmt.Fprintf(&b, "Cards: %d\n", set.CardCount)
		if set.Progress > 0 {
			fmt.Fprintf(&b, "Progress: %d%%\n", set.Progress)
		}
		if set.CreatedAt != "" {
			fmt.Fprintf(&b, "Created: %s\n", set.CreatedAt)
		}
	}
	b.WriteString("\nEnter: Study  n: New  e: Edit  r: Rename  d: Delete\ng: AI cards  p: Practice test  a: Progress")
	right := r.drawPanel("Overview", strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n"), max(24, w-leftW), bodyH)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return header + "\n" + body + "\n" + r.statusText("")
}

func (r *Root) badge(text string) string {
	if r.ascii {
		return "* " + text
	}
	return "★ " + text
}

func (r *Root) renderStudy() string {
	w, h := r.cols, r.rows
	header := r.headerText("Studying: " + r.study.Title)
	bodyH := max(8, h-2)

	side := "Front"
	text := r.study.Front
	if r.flipPos >= 0.5 {
		side = "Back"
		text = r.study.Back
		if r.markdown != nil {
			if rendered, err := r.markdown.Render(text); err == nil {
				text = strings.TrimSpace(rendered)
			}
		}
	}

	cardW := min(70, max(40, w-10))
	var card []string
	card = append(card, "", r.theme.CardFace.Render(fmt.Sprintf("Card %d of %d", r.study.Index+1, r.study.Total)), "")
	for _, line := range strings.Split(text, "\n") {
		card = append(card, "  "+line)
	}
	card = append(card, "", r.theme.Muted.Render("Space: Flip"))
	cardPanel := r.drawPanel(side, card, cardW, max(8, bodyH-7))

	var stats strings.Builder
	bar := r.studyBar
	bar.SetWidth(min(30, cardW-10))
	stats.WriteString("Progress: " + bar.ViewAs(r.study.ProgressPercent/100) + "\n")
	fmt.Fprintf(&stats, "Studied %d of %d   Accuracy %.0f%%\n", r.study.StudiedCount, r.study.Total, r.study.AccuracyPercent)
	if r.study.Complete {
		stats.WriteString(r.theme.Correct.Render("Session complete!") + "  Press R to restart.\n")
	}
	stats.WriteString("\n<-/->: Navigate  k: I knew it  x: Still learning  R: Reset  Esc: Back")
	statsPanel := r.drawPanel("Session", strings.Split(strings.TrimSuffix(stats.String(), "\n"), "\n"), cardW, 7)

	body := lipgloss.Place(w, bodyH, lipgloss.Center, lipgloss.Top, cardPanel+"\n"+statsPanel)
	return header + "\n" + body + "\n" + r.statusText("Space: Flip  k/x: Mark  Esc: Back")
}

func (r *Root) renderGenerator() string {
	w, h := r.cols, r.rows
	header := r.headerText("AI Card Generator")
	bodyH := max(8, h-2)

	focus := func(i int) string {
		if i == wrapIndex(r.genFocus, 3) {
			return "> "
		}
		return "  "
	}
	brief := []string{
		focus(0) + "Topic: " + r.topicInput.View(),
		focus(1) + "Notes: " + r.notesInput.View(),
		focus(2) + "File:  " + r.fileInput.View(),
		"",
		"Enter: Generate    Esc: Back",
	}
	leftW := min(60, max(36, w/2))
	left := r.drawPanel("Brief", brief, leftW, bodyH)

	var lines []string
	switch {
	case r.generator.Generating:
		lines = []string{strings.TrimSpace(r.waitSpin.View()) + " Generating flashcards...", "", "Esc cancels."}
	case len(r.generator.Drafts) == 0:
		lines = []string{"Nothing generated yet.", "", "Describe a topic on the left and press Enter."}
	default:
		for i, d := range r.generator.Drafts {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, d.Front), "   "+r.theme.Muted.Render(d.Back))
		}
		lines = append(lines, "", "Ctrl+S: Save as a set    Ctrl+D: Discard")
	}
	right := r.drawPanel("Generated Cards", lines, max(24, w-leftW), bodyH)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return header + "\n" + body + "\n" + r.statusText("Tab: Next field  Enter: Generate  Esc: Back")
}

func (r *Root) renderPractice() string {
	w, h := r.cols, r.rows
	header := r.headerText("Practice Test")
	bodyH := max(8, h-2)

	var body string
	switch r.practice.Phase {
	case "generating":
		panel := r.drawPanel("Practice Test", []string{
			"",
			strings.TrimSpace(r.waitSpin.View()) + " Generating your test...",
			"",
			"Esc cancels.",
		}, min(56, w), 8)
		body = lipgloss.Place(w, bodyH, lipgloss.Center, lipgloss.Center, panel)
	case "taking":
		body = lipgloss.Place(w, bodyH, lipgloss.Center, lipgloss.Top, r.renderQuestion())
	case "results":
		body = lipgloss.Place(w, bodyH, lipgloss.Center, lipgloss.Top, r.renderResults())
	default:
		body = r.renderTestSetup(bodyH)
	}
	return header + "\n" + body + "\n" + r.statusText("")
}

func (r *Root) renderTestSetup(bodyH int) string {
	w := r.cols
	var listLines []string
	if len(r.practice.Sets) == 0 {
		listLines = []string{"No study sets available.", "", "Create a set first."}
	}
	for _, s := range r.practice.Sets {
		prefix := "  "
		if s.ID == r.practice.SelectedID {
			prefix = "> "
		}
		listLines = append(listLines, fmt.Sprintf("%s%s (%d cards)", prefix, s.Title, s.CardCount))
	}
	leftW := min(48, max(30, w/2))
	left := r.drawPanel("1. Select a Set", listLines, leftW, bodyH)

	setup := []string{
		fmt.Sprintf("Questions: < %d >", r.practice.QuestionCount),
		fmt.Sprintf("Type:      %s (t to change)", r.practice.TestType),
		"",
		"Up/Down: Choose set",
		"Left/Right: Question count",
		"Enter: Generate test",
		"Esc: Back",
	}
	right := r.drawPanel("2. Configure", setup, max(24, w-leftW), bodyH)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (r *Root) renderQuestion() string {
	q := r.practice.Question
	width := min(76, max(44, r.cols-8))

	var lines []string
	lines = append(lines, r.theme.Muted.Render(fmt.Sprintf("Question %d of %d", r.practice.Index+1, r.practice.Total)), "")
	lines = append(lines, q.Text, "")

	switch r.practice.TestType {
	case "fill-in-the-blank":
		lines = append(lines, "Answer: "+r.answerInput.View(), "")
	case "true-false":
		for i, label := range []string{"True", "False"} {
			prefix := "  "
			if !q.Answered && i == wrapIndex(r.optionIndex, 2) {
				prefix = "> "
			}
			lines = append(lines, prefix+label)
		}
		lines = append(lines, "")
	default:
		for i, opt := range q.Options {
			prefix := "  "
			if !q.Answered && i == wrapIndex(r.optionIndex, max(1, len(q.Options))) {
				prefix = "> "
			}
			lines = append(lines, prefix+opt)
		}
		lines = append(lines, "")
	}

	if q.Answered {
		if q.Correct {
			lines = append(lines, r.theme.Correct.Render("Correct!"))
		} else {
			lines = append(lines,
				r.theme.Incorrect.Render("Incorrect."),
				"Correct answer: "+q.CorrectAnswer)
		}
	} else {
		lines = append(lines, r.theme.Muted.Render("Enter: Submit answer"))
	}
	return r.drawPanel("Practice Test", lines, width, len(lines)+2)
}

func (r *Root) renderResults() string {
	width := min(76, max(44, r.cols-8))
	var lines []string
	lines = append(lines, r.theme.Accent.Render(fmt.Sprintf("Score: %d / %d", r.practice.Score, r.practice.Total)), "")
	for i, row := range r.practice.Review {
		mark := "x"
		style := r.theme.Incorrect
		if row.Correct {
			mark = "v"
			style = r.theme.Correct
		}
		if !r.ascii {
			if row.Correct {
				mark = "✓"
			} else {
				mark = "✗"
			}
		}
		lines = append(lines, fmt.Sprintf("%s %d. %s", style.Render(mark), i+1, row.Question))
		lines = append(lines, "   Your answer: "+row.UserAnswer)
		if !row.Correct {
			lines = append(lines, "   Correct answer: "+row.CorrectAnswer)
		}
	}
	lines = append(lines, "", "r: Take another test    Esc: Back")
	return r.drawPanel("Results", lines, width, len(lines)+2)
}

func (r *Root) renderAchievements() string {
	w, h := r.cols, r.rows
	header := r.headerText("Your Progress")
	bodyH := max(8, h-2)

	streak := []string{
		"",
		fmt.Sprintf("   Study Streak: %d day(s)", r.achievements.Streak),
		"",
		"Finish a practice test today to keep it alive.",
	}
	leftW := min(44, max(30, w/3))
	left := r.drawPanel("Streak", streak, leftW, bodyH)

	lines := []string{
		fmt.Sprintf("Unlocked %d of %d", r.achievements.Unlocked, len(r.achievements.Items)),
		"",
	}
	for _, item := range r.achievements.Items {
		mark := "[ ]"
		name := item.Name
		if item.Unlocked {
			if r.ascii {
				mark = "[v]"
			} else {
				mark = "[✓]"
			}
			name = r.theme.Correct.Render(name)
		} else {
			name = r.theme.Muted.Render(name)
		}
		lines = append(lines, fmt.Sprintf("%s %s", mark, name))
		lines = append(lines, "    "+r.theme.Muted.Render(item.Description))
	}
	right := r.drawPanel("Achievements", lines, max(24, w-leftW), bodyH)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return header + "\n" + body + "\n" + r.statusText("Esc: Back")
}

func (r *Root) drawPanel(title string, lines []string, width, height int) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h := "─"
	v := "│"
	tl := "┌"
	tr := "┐"
	bl := "└"
	br := "┘"
	if r.ascii {
		h = "-"
		v = "|"
		tl, tr, bl, br = "+", "+", "+", "+"
	}

	top := tl + strings.Repeat(h, innerW) + tr
	if title != "" && innerW > 2 {
		t := " " + title + " "
		runes := []rune(top)
		start := 1
		for i, ch := range []rune(t) {
			pos := start + i
			if pos >= len(runes)-1 {
				break
			}
			runes[pos] = ch
		}
		top = string(runes)
	}

	out := make([]string, 0, height)
	out = append(out, r.theme.PanelBorder.Render(top))
	for row := 0; row < innerH; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		line = padRune(line, innerW)
		out = append(out, r.theme.PanelBorder.Render(v)+r.theme.PanelBody.Render(line)+r.theme.PanelBorder.Render(v))
	}
	out = append(out, r.theme.PanelBorder.Render(bl+strings.Repeat(h, innerW)+br))
	return strings.Join(out, "\n")
}

func (r *Root) animateIfNeeded() tea.Cmd {
	target := 0.0
	if r.study.Flipped {
		target = 1.0
	}
	if r.shouldAnimate(target) {
		return animateTickCmd()
	}
	return nil
}

func (r *Root) shouldAnimate(target float64) bool {
	if r.motionLevel == "off" {
		return false
	}
	if target > 0 {
		return r.flipPos < 0.999 || abs(r.flipVel) > 0.001
	}
	return r.flipPos > 0.001 || abs(r.flipVel) > 0.001
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func spinnerTickCmd(model spinner.Model) tea.Cmd {
	return func() tea.Msg {
		return model.Tick()
	}
}

func firstNonEmptyStr(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		i = n - 1
	}
	if i >= n {
		i = 0
	}
	return i
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func padRune(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(s, "\t", "    "))
	if len(r) > width {
		r = r[:width]
	}
	if len(r) < width {
		r = append(r, []rune(strings.Repeat(" ", width-len(r)))...)
	}
	return string(r)
}

func composeOverlay(base, overlay string, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	base = ansi.Strip(base)
	overlay = ansi.Strip(overlay)
	baseLines := strings.Split(base, "\n")
	if len(baseLines) < rows {
		pad := make([]string, rows-len(baseLines))
		baseLines = append(baseLines, pad...)
	}
	for i := 0; i < rows; i++ {
		baseLines[i] = padRune(baseLines[i], cols)
	}

	overlayLines := strings.Split(strings.TrimRight(overlay, "\n"), "\n")
	if len(overlayLines) == 0 {
		return strings.Join(baseLines[:rows], "\n")
	}
	ow := 1
	for _, line := range overlayLines {
		lw := len([]rune(line))
		if lw > ow {
			ow = lw
		}
	}
	if ow > cols {
		ow = cols
	}
	oh := len(overlayLines)
	if oh > rows {
		oh = rows
	}
	startRow := (rows - oh) / 2
	startCol := (cols - ow) / 2
	if startCol < 0 {
		startCol = 0
	}

	for i := 0; i < oh; i++ {
		row := startRow + i
		if row < 0 || row >= rows {
			continue
		}
		dst := []rune(baseLines[row])
		src := []rune(overlayLines[i])
		if len(src) > ow {
			src = src[:ow]
		}
		for j := 0; j < ow && startCol+j < len(dst); j++ {
			dst[startCol+j] = ' '
		}
		for j := 0; j < len(src) && startCol+j < len(dst); j++ {
			dst[startCol+j] = src[j]
		}
		baseLines[row] = string(dst)
	}
	return strings.Join(baseLines[:rows], "\n")
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(ansi.Strip(s), "\n", " "))
	if len(r) <= width {
		return string(r)
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func normalizeStyleVariant(v string) string {
	switch strings.TrimSpace(v) {
	case "cozy_clean", "retro_terminal", "modern_arcade":
		return strings.TrimSpace(v)
	default:
		return "modern_arcade"
	}
}

func normalizeMotionLevel(v string) string {
	switch strings.TrimSpace(v) {
	case "off", "reduced", "full":
		return strings.TrimSpace(v)
	default:
		return "full"
	}
}

func (r *Root) recordInputEvent(event string) {
	r.lastInputEvent = trimForWidth(strings.TrimSpace(event), 160)
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	if r.statusFlash == "" {
		r.statusFlash = "Recovered UI panic"
	}

	message := fmt.Sprintf("%v", recovered)
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("recovered UI panic",
		"where", where,
		"panic", message,
		"messageType", msgType,
		"screen", int(r.screen),
		"size", fmt.Sprintf("%dx%d", r.cols, r.rows),
		"overlay", r.topOverlay(),
		"lastInput", r.lastInputEvent,
		"stack", string(debug.Stack()),
	)
}

var _ tea.Model = (*Root)(nil)
var _ View = (*Root)(nil)

package ui

import (
	"context"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/droidlog/internal/highlight"
	"github.com/five82/droidlog/internal/logcat"
	"github.com/five82/droidlog/internal/prefs"
	"github.com/five82/droidlog/internal/state"
)

const (
	defaultRefresh = 100 * time.Millisecond
	renderLimit    = 2000
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Registry  *highlight.Registry
	Cache     *highlight.Cache
	Dirty     *atomic.Bool // set by the highlight cache when results land
	Prefs     prefs.Prefs
	PrefsPath string
	Refresh   time.Duration
	Logger    *zap.Logger
}

// logState holds all log-pane state.
type logState struct {
	follow   bool
	minLevel logcat.Level
	lines    []logcat.Record // filtered records currently shown

	// Search
	searchActive   bool
	searchQuery    string
	searchRegex    *regexp.Regexp
	searchInput    textinput.Model
	searchMatches  []int // Line indices that match
	searchMatchIdx int   // Current match index

	// Content caching - skip re-render when unchanged
	storeVersion uint64
	contentDirty bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	registry  *highlight.Registry
	cache     *highlight.Cache
	dirty     *atomic.Bool
	prefsPath string
	refresh   time.Duration
	logger    *zap.Logger

	// UI state
	theme    Theme
	lines    *LineRenderer
	keys     keyMap
	help     help.Model
	showHelp bool
	width    int
	height   int
	ready    bool

	// Data state
	snapshot state.Snapshot

	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	dirty := opts.Dirty
	if dirty == nil {
		dirty = &atomic.Bool{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Placeholder = "Search messages..."
	ti.CharLimit = 200
	ti.Prompt = "/"

	theme := GetTheme(opts.Prefs.Theme)
	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		registry:  opts.Registry,
		cache:     opts.Cache,
		dirty:     dirty,
		prefsPath: prefsPath,
		refresh:   refresh,
		logger:    logger,
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		logState:  logState{
			follow:       opts.Prefs.Follow,
			minLevel:     opts.Prefs.Level(),
			searchInput:  ti,
			contentDirty: true,
		},
	}
	m.lines = NewLineRenderer(nil, theme, opts.Registry).WithBackground(theme.FocusBg)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.refresh), waitDoneCmd(m.ctx))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(m.paneWidth(), m.paneHeight())
		}
		m.ready = true
		m.logState.contentDirty = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case doneMsg:
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderLogs())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.logState.searchActive {
		return m.handleSearchInput(msg)
	}
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.lines = NewLineRenderer(nil, m.theme, m.registry).WithBackground(m.theme.FocusBg)
		m.logState.contentDirty = true
		m.savePrefs()
		m.updateLogViewport()
		return m, nil
	}

	return m.handleLogsKey(msg)
}

// handleTick refreshes the log pane when the store or highlight results
// changed, then schedules the next tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.store != nil {
		if v := m.store.Version(); v != m.logState.storeVersion {
			m.snapshot = m.store.Snapshot()
			m.logState.storeVersion = v
			m.logState.contentDirty = true
		}
	}
	if m.dirty.Swap(false) {
		m.logState.contentDirty = true
	}
	if m.ready {
		m.updateLogViewport()
	}
	return m, tickCmd(m.refresh)
}

func (m Model) savePrefs() {
	p := prefs.Prefs{
		Theme:    m.theme.Name,
		MinLevel: m.logState.minLevel.String(),
		Follow:   m.logState.follow,
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save preferences failed", zap.Error(err))
	}
}

func (m Model) paneWidth() int {
	return max(m.width, 1)
}

// paneHeight leaves room for the header and footer rows.
func (m Model) paneHeight() int {
	return max(m.height-2, 1)
}

// Messages

type tickMsg time.Time

type doneMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitDoneCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return doneMsg{}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		return nil
	}
	return err
}

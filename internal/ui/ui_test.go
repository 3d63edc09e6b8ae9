package ui

import (
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/droidlog/internal/events"
	"github.com/five82/droidlog/internal/highlight"
	"github.com/five82/droidlog/internal/logcat"
	"github.com/five82/droidlog/internal/prefs"
	"github.com/five82/droidlog/internal/state"
)

func plainRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}

func TestLineRenderer_PlainTextIsPreserved(t *testing.T) {
	reg := highlight.Default()
	lr := NewLineRenderer(plainRenderer(), GetTheme("Dracula"), reg)
	rec := logcat.Record{Level: logcat.LevelWarning, Tag: "Net", PID: "42", Message: "GET http://x.test took 12 ms"}

	got := lr.Record(rec, reg.Search(rec.Message))
	assert.Equal(t, "W/Net(   42): GET http://x.test took 12 ms", got)
}

func TestLineRenderer_OverlappingMatches(t *testing.T) {
	lr := NewLineRenderer(plainRenderer(), GetTheme("Slate"), nil)
	matches := []highlight.Match{
		{Name: "low", Priority: 0, Begin: 0, End: 6},
		{Name: "high", Priority: 5, Begin: 3, End: 9},
		{Name: "past-end", Priority: 9, Begin: 8, End: 40},
	}
	assert.Equal(t, "abcdéfghij", lr.Message("abcdéfghij", matches))
	assert.Equal(t, "", lr.Message("", matches))
}

func TestNextLevelCycle(t *testing.T) {
	var seen []string
	lvl := logcat.LevelVerbose
	for range 7 {
		seen = append(seen, lvl.String())
		lvl = nextLevel(lvl)
	}
	assert.Equal(t, []string{"V", "D", "I", "W", "E", "F", "V"}, seen)
	assert.Equal(t, logcat.LevelVerbose, nextLevel(logcat.Level('?')))
}

func TestFilterRecords(t *testing.T) {
	records := []logcat.Record{
		{Level: logcat.LevelDebug, Message: "d"},
		{Level: logcat.LevelError, Message: "e1"},
		{Level: logcat.LevelInfo, Message: "i"},
		{Level: logcat.LevelError, Message: "e2"},
		{Level: logcat.Level('?'), Message: "unknown"},
	}
	got := filterRecords(records, logcat.LevelWarning, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].Message)
	assert.Equal(t, "e2", got[1].Message)

	got = filterRecords(records, logcat.LevelVerbose, 2)
	assert.Equal(t, []string{"e2", "unknown"}, []string{got[0].Message, got[1].Message})
}

func TestThemes(t *testing.T) {
	assert.Equal(t, []string{"Dracula", "Slate"}, ThemeNames())
	assert.Equal(t, "Slate", NextTheme("Dracula"))
	assert.Equal(t, "Dracula", NextTheme("Slate"))
	assert.Equal(t, "Dracula", NextTheme("missing"))
	assert.Equal(t, "Dracula", GetTheme("missing").Name)

	th := GetTheme("Dracula")
	assert.Equal(t, th.LevelColors[logcat.LevelError], th.LevelColor(logcat.LevelError))
	assert.Equal(t, th.Muted, th.LevelColor(logcat.Level('?')))
	assert.Equal(t, th.Highlight[0], th.HighlightColor(len(th.Highlight)))
	assert.Equal(t, th.Accent, Theme{Accent: "#fff"}.HighlightColor(3))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abcd", 3))
	assert.Equal(t, "…", truncate("abcd", 1))
}

func newTestModel(t *testing.T) (Model, *state.Store) {
	t.Helper()
	store := state.NewStore("s", "com.example.app", 100)
	m := New(Options{
		Store:     store,
		Registry:  highlight.Default(),
		Dirty:     &atomic.Bool{},
		Prefs:     prefs.Defaults(),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return updated.(Model), store
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestModel_TickPicksUpStoreChanges(t *testing.T) {
	m, store := newTestModel(t)
	store.Apply(events.AppStarted{Package: "com.example.app"})
	store.Apply(events.ProcessStarted{PID: "7", Package: "com.example.app"})
	store.Apply(events.LineRead{Record: logcat.Record{Level: logcat.LevelInfo, Tag: "A", PID: "7", Message: "hello"}})

	updated, cmd := m.Update(tickMsg{})
	m = updated.(Model)
	assert.NotNil(t, cmd)
	require.Len(t, m.logState.lines, 1)
	assert.True(t, m.snapshot.AppRunning)
	assert.Contains(t, m.View(), "com.example.app")
	assert.Contains(t, m.View(), "hello")
}

func TestModel_FollowAndLevelKeysSavePrefs(t *testing.T) {
	m, _ := newTestModel(t)
	require.True(t, m.logState.follow)

	m = press(t, m, "f", "l", "l")
	assert.False(t, m.logState.follow)
	assert.Equal(t, logcat.LevelInfo, m.logState.minLevel)

	saved, err := prefs.Load(m.prefsPath)
	require.NoError(t, err)
	assert.False(t, saved.Follow)
	assert.Equal(t, "I", saved.MinLevel)
}

func TestModel_ThemeCycleSavesPrefs(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "T")
	assert.Equal(t, "Slate", m.theme.Name)

	saved, err := prefs.Load(m.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "Slate", saved.Theme)
}

func TestModel_SearchFindsMatches(t *testing.T) {
	m, store := newTestModel(t)
	for _, msg := range []string{"alpha", "beta", "Alphabet"} {
		store.Apply(events.LineRead{Record: logcat.Record{Level: logcat.LevelInfo, Tag: "A", PID: "1", Message: msg}})
	}
	updated, _ := m.Update(tickMsg{})
	m = updated.(Model)

	m = press(t, m, "/")
	require.True(t, m.logState.searchActive)
	m = press(t, m, "a", "l", "p", "h", "a", "enter")
	assert.False(t, m.logState.searchActive)
	assert.Equal(t, []int{0, 2}, m.logState.searchMatches)
	assert.False(t, m.logState.follow)

	m = press(t, m, "n")
	assert.Equal(t, 1, m.logState.searchMatchIdx)
	m = press(t, m, "N", "N")
	assert.Equal(t, 1, m.logState.searchMatchIdx)

	m = press(t, m, "esc")
	assert.Nil(t, m.logState.searchRegex)
	assert.Empty(t, m.logState.searchMatches)
}

func TestModel_InvalidSearchIsLiteral(t *testing.T) {
	m, store := newTestModel(t)
	store.Apply(events.LineRead{Record: logcat.Record{Level: logcat.LevelInfo, Tag: "A", PID: "1", Message: "a(b"}})
	updated, _ := m.Update(tickMsg{})
	m = updated.(Model)

	m = press(t, m, "/", "(", "enter")
	require.NotNil(t, m.logState.searchRegex)
	assert.Equal(t, regexp.QuoteMeta("("), strings.TrimPrefix(m.logState.searchRegex.String(), "(?i)"))
	assert.Equal(t, []int{0}, m.logState.searchMatches)
}

func TestModel_ClearDropsHistory(t *testing.T) {
	m, store := newTestModel(t)
	store.Apply(events.LineRead{Record: logcat.Record{Level: logcat.LevelInfo, Tag: "A", PID: "1", Message: "x"}})
	updated, _ := m.Update(tickMsg{})
	m = updated.(Model)
	require.Len(t, m.logState.lines, 1)

	m = press(t, m, "c")
	assert.Empty(t, m.logState.lines)
	assert.Empty(t, store.Snapshot().Records)
}

func TestModel_FailureShownInHeader(t *testing.T) {
	m, store := newTestModel(t)
	store.Apply(events.Failed{Brief: "Device disconnected", Verbose: "eof"})
	updated, _ := m.Update(tickMsg{})
	m = updated.(Model)
	assert.Contains(t, m.View(), "Device disconnected")
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

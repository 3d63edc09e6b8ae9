package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/droidlog/internal/highlight"
	"github.com/five82/droidlog/internal/logcat"
)

// updateLogViewport rebuilds the pane content when it is stale.
func (m *Model) updateLogViewport() {
	m.logViewport.Width = m.paneWidth()
	m.logViewport.Height = m.paneHeight()
	m.logViewport.Style = m.theme.Styles().Pane

	if m.logState.contentDirty {
		m.logState.lines = filterRecords(m.snapshot.Records, m.logState.minLevel, renderLimit)
		m.findSearchMatches()
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.contentDirty = false
	}

	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// filterRecords keeps records at or above minLevel, at most limit of the
// newest.
func filterRecords(records []logcat.Record, minLevel logcat.Level, limit int) []logcat.Record {
	minRank := max(minLevel.Rank(), 0)
	out := make([]logcat.Record, 0, min(len(records), limit))
	for _, rec := range records {
		// Unknown levels only show at the verbose threshold.
		if max(rec.Level.Rank(), 0) < minRank {
			continue
		}
		out = append(out, rec)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// renderLogContent renders the highlighted log lines.
func (m *Model) renderLogContent() string {
	styles := m.theme.Styles()
	pane := styles.Pane.Width(m.paneWidth())
	if len(m.logState.lines) == 0 {
		msg := "Waiting for log lines..."
		if m.snapshot.Failure != nil {
			msg = "Capture stopped"
		}
		return pane.Render(styles.MutedText.Background(pane.GetBackground()).Render(msg))
	}

	active := -1
	if len(m.logState.searchMatches) > 0 {
		active = m.logState.searchMatches[m.logState.searchMatchIdx]
	}

	var b strings.Builder
	for i, rec := range m.logState.lines {
		var line string
		if i == active {
			line = styles.Match.Render(rec.String())
		} else {
			line = m.lines.Record(rec, m.lookup(rec.Message))
		}
		b.WriteString(pane.Render(line))
		if i < len(m.logState.lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// lookup returns finished highlight matches for text, queueing the search
// the first time text is seen.
func (m *Model) lookup(text string) []highlight.Match {
	if m.cache != nil {
		matches, state := m.cache.Lookup(text)
		if state != highlight.StateDone {
			return nil
		}
		return matches
	}
	if m.registry != nil {
		return m.registry.Search(text)
	}
	return nil
}

// renderLogs renders the log pane.
func (m Model) renderLogs() string {
	if m.showHelp {
		return m.renderHelp()
	}
	return m.logViewport.View()
}

// renderHelp renders the full key reference in place of the log pane.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	h := m.help
	h.ShowAll = true
	h.Width = m.paneWidth()
	body := styles.Text.Bold(true).Render("Keyboard Shortcuts") + "\n\n" + h.View(m.keys)
	return styles.Pane.Width(m.paneWidth()).Height(m.paneHeight()).Render(body)
}

// renderFooter renders the search input, the search status or the short help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	footer := styles.Footer.Width(m.width)

	if m.logState.searchActive {
		return footer.Render(m.logState.searchInput.View())
	}
	if m.logState.searchRegex != nil {
		if len(m.logState.searchMatches) == 0 {
			return footer.Render(styles.DangerText.Render("Pattern not found: " + m.logState.searchQuery))
		}
		status := fmt.Sprintf("/%s  %d/%d  n next  N previous  esc clear",
			m.logState.searchQuery, m.logState.searchMatchIdx+1, len(m.logState.searchMatches))
		return footer.Render(styles.AccentText.Render(status))
	}
	return footer.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// handleLogsKey processes keyboard input for the log pane.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		m.savePrefs()
		m.updateLogViewport()

	case key.Matches(msg, m.keys.CycleLevel):
		m.logState.minLevel = nextLevel(m.logState.minLevel)
		m.logState.contentDirty = true
		m.savePrefs()
		m.updateLogViewport()

	case key.Matches(msg, m.keys.Clear):
		if m.store != nil {
			m.store.Clear()
		}
		m.snapshot.Records = nil
		m.logState.contentDirty = true
		m.updateLogViewport()

	case key.Matches(msg, m.keys.Search):
		m.logState.searchActive = true
		m.logState.searchInput.SetValue("")
		return m, m.logState.searchInput.Focus()

	case key.Matches(msg, m.keys.NextMatch):
		m.moveSearchMatch(1)

	case key.Matches(msg, m.keys.PrevMatch):
		m.moveSearchMatch(-1)

	case key.Matches(msg, m.keys.Escape):
		if m.logState.searchRegex != nil {
			m.clearLogSearch()
			m.updateLogViewport()
		}

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.logState.follow = false
	}

	return m, nil
}

// handleSearchInput handles keyboard input while the search prompt is open.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := m.logState.searchInput.Value()
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		if query == "" {
			return m, nil
		}
		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			// Invalid regex: treat the query literally
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
		}
		m.logState.searchRegex = re
		m.logState.searchQuery = query
		m.logState.searchMatchIdx = 0
		m.logState.contentDirty = true
		m.updateLogViewport()
		m.scrollToSearchMatch()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		m.logState.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.logState.searchInput, cmd = m.logState.searchInput.Update(msg)
	return m, cmd
}

// clearLogSearch clears the search state.
func (m *Model) clearLogSearch() {
	m.logState.searchRegex = nil
	m.logState.searchQuery = ""
	m.logState.searchMatches = nil
	m.logState.searchMatchIdx = 0
	m.logState.contentDirty = true
}

// findSearchMatches finds all shown lines matching the current search.
func (m *Model) findSearchMatches() {
	m.logState.searchMatches = nil
	if m.logState.searchRegex == nil {
		return
	}
	for i, rec := range m.logState.lines {
		if m.logState.searchRegex.MatchString(rec.String()) {
			m.logState.searchMatches = append(m.logState.searchMatches, i)
		}
	}
	if m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		m.logState.searchMatchIdx = max(len(m.logState.searchMatches)-1, 0)
	}
}

func (m *Model) moveSearchMatch(delta int) {
	n := len(m.logState.searchMatches)
	if n == 0 {
		return
	}
	m.logState.searchMatchIdx = (m.logState.searchMatchIdx + delta + n) % n
	m.logState.contentDirty = true
	m.logState.follow = false
	m.updateLogViewport()
	m.scrollToSearchMatch()
}

// scrollToSearchMatch centers the active match when possible.
func (m *Model) scrollToSearchMatch() {
	if len(m.logState.searchMatches) == 0 {
		return
	}
	target := m.logState.searchMatches[m.logState.searchMatchIdx]
	m.logState.follow = false
	m.logViewport.SetYOffset(max(target-m.logViewport.Height/2, 0))
}

// nextLevel cycles the minimum level V, D, I, W, E, F and back to V.
func nextLevel(current logcat.Level) logcat.Level {
	cycle := logcat.Levels[:len(logcat.Levels)-1] // Silent hides everything
	for i, lvl := range cycle {
		if lvl == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return logcat.LevelVerbose
}

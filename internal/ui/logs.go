package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/RachelRYuan/Blogen/internal/logtail"
)

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape, m.keys.ViewLogs):
		view := ViewPosts
		if !m.authenticated() {
			view = ViewLogin
		}
		m.switchView(view)
		if view == ViewLogin {
			return m, m.login.focus()
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.busy = "Reading log"
		return m, readLogsCmd(m.logPath)
	case key.Matches(msg, m.keys.Up):
		m.logView.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logView.LineDown(1)
	case key.Matches(msg, m.keys.Top):
		m.logView.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logView.GotoBottom()
	case key.Matches(msg, m.keys.PrevPage):
		m.logView.ViewUp()
	case key.Matches(msg, m.keys.NextPage):
		m.logView.ViewDown()
	}
	return m, nil
}

func (m *Model) updateLogView() {
	if m.logView.Width <= 0 {
		return
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, m.renderLogEntry(styles, e))
	}
	m.logView.SetContent(strings.Join(lines, "\n"))
}

func (m Model) renderLogEntry(styles Styles, e logtail.Entry) string {
	if e.Level == "" {
		return styles.FaintText.Render(truncate(e.Raw, m.logView.Width))
	}
	levelStyle := styles.InfoText
	switch e.Level {
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		levelStyle = styles.DangerText
	case "WARN":
		levelStyle = styles.WarningText
	case "DEBUG":
		levelStyle = styles.FaintText
	}

	parts := []string{
		styles.MutedText.Render(e.Time.Local().Format("15:04:05")),
		levelStyle.Render(padRight(e.Level, 5)),
	}
	if e.Component != "" {
		parts = append(parts, styles.AccentText.Render("["+e.Component+"]"))
	}
	parts = append(parts, styles.Text.Render(e.Message))
	return strings.Join(parts, " ")
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := styles.Logo.Render("Client log")
	if m.logPath == "" {
		return lipgloss.JoinVertical(lipgloss.Left, title, styles.MutedText.Render("Logging is disabled (log_file is empty)"))
	}
	content := m.logView.View()
	if len(m.logEntries) == 0 {
		content = styles.MutedText.Render("No log entries yet")
	}
	hint := styles.FaintText.Render(m.logPath + "  ·  r reload · j/k scroll · esc back")
	return lipgloss.JoinVertical(lipgloss.Left, title, styles.Panel.Width(m.width-2).Render(content), hint)
}

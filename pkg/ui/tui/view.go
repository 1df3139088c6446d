package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	width := m.width - 2
	sections := []string{
		m.renderHeader(),
		m.renderBatchPanel(width),
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderMediaPanel(width/2),
			m.renderLogsPanel(width-width/2),
		),
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("q stop after this batch • ? help"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	status := m.spinner.View() + " running"
	switch {
	case m.done && m.runErr != nil:
		status = errorStyle.Render("failed")
	case m.done:
		status = successStyle.Render("done")
	case m.stopping:
		status = warningStyle.Render(m.spinner.View() + " finishing current batch")
	}
	return headerStyle.Render(m.title) + "  " + status
}

func (m *Model) renderBatchPanel(width int) string {
	title := titleStyle.Render(" BATCHES ")

	m.bar.Width = max(width-12, 10)

	lines := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Tweets:"),
			statsValueStyle.Render(fmt.Sprintf("%d-%d of %d", m.batchStart, m.batchEnd, m.total))),
		m.bar.ViewAs(m.Percent()),
		fmt.Sprintf("%s %s   %s %s",
			statsLabelStyle.Render("Batches:"), statsValueStyle.Render(fmt.Sprint(m.batches)),
			statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(time.Since(m.sessionStartTime)))),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")),
	)
}

func (m *Model) renderMediaPanel(width int) string {
	title := titleStyle.Render(" IMAGES ")

	lines := []string{
		fmt.Sprintf("%s %s  %s %s",
			statsLabelStyle.Render("Downloaded:"), successStyle.Render(fmt.Sprint(m.downloaded)),
			statsLabelStyle.Render("Stored:"), statsValueStyle.Render(fmt.Sprint(m.existing))),
		fmt.Sprintf("%s %s  %s %s",
			statsLabelStyle.Render("Repeated:"), statsValueStyle.Render(fmt.Sprint(m.duplicates)),
			statsLabelStyle.Render("Failed:"), errorStyle.Render(fmt.Sprint(m.failed))),
		"",
	}

	nameWidth := max(width-8, 10)
	if m.active != "" {
		lines = append(lines, m.spinner.View()+" "+truncate(m.active, nameWidth))
	}
	for i := len(m.recent) - 1; i >= 0; i-- {
		item := m.recent[i]
		style, marker := resultStyle(item.Result)
		lines = append(lines, style.Render(marker+" "+truncate(item.Name, nameWidth)))
	}
	if m.active == "" && len(m.recent) == 0 {
		lines = append(lines, dimStyle.Render("No images yet"))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")),
	)
}

func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" LOGS ")

	rows := max(m.height-16, 5)
	start := max(len(m.logMessages)-rows, 0)

	var logs []string
	for _, entry := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(entry.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(entry.Color).Bold(true).Render(fmt.Sprintf("%-5s", entry.Level))
		message := dimStyle.Render(truncate(entry.Message, max(width-20, 10)))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = dimStyle.Render("No logs yet...")
	}

	return panelStyle.Width(width).Height(rows + 1).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m *Model) renderHelp() string {
	help := `  q/ctrl+c  stop after the current batch, press again to close
  ctrl+l    clear logs
  ?         toggle this help

  ` + successStyle.Render("✓") + ` downloaded  ` + dimStyle.Render("=") + ` already stored  ` + errorStyle.Render("✗") + ` failed`

	return panelStyle.Width(m.width - 2).Render(help)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

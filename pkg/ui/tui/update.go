package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"tweetscraper/pkg/media"
)

// BatchMsg is sent when the pipeline starts a batch
type BatchMsg struct {
	Start int
	End   int
	Total int
}

// DownloadStartMsg is sent when an image fetch begins
type DownloadStartMsg struct {
	Name string
}

// MediaMsg is sent when an image reference is resolved
type MediaMsg struct {
	Name   string
	Result media.Result
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// DoneMsg is sent when the run has returned
type DoneMsg struct {
	Err error
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m, tickCmd()

	case BatchMsg:
		m.StartBatch(msg.Start, msg.End, msg.Total)
		return m, nil

	case DownloadStartMsg:
		m.StartDownload(msg.Name)
		return m, nil

	case MediaMsg:
		m.ResolveMedia(msg.Name, msg.Result)
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil

	case DoneMsg:
		m.done = true
		m.runErr = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress handles keyboard input. The first q stops the run after
// its current batch; a second one closes the interface.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if m.stopping {
			return m, tea.Quit
		}
		m.requestStop()
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = nil
		return m, nil
	}

	return m, nil
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

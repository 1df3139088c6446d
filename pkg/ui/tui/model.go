package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"tweetscraper/pkg/media"
)

const (
	maxLogMessages = 50
	maxRecentMedia = 8
)

// MediaItem is one resolved image reference
type MediaItem struct {
	Name   string
	Result media.Result
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model represents the TUI model
type Model struct {
	spinner spinner.Model
	bar     progress.Model
	title   string
	stop    func()

	// Batch state
	batchStart int
	batchEnd   int
	total      int
	batches    int

	// Media state
	active     string
	downloaded int
	existing   int
	duplicates int
	failed     int
	recent     []MediaItem

	sessionStartTime time.Time
	logMessages      []LogMessage

	// UI state
	width    int
	height   int
	showHelp bool
	stopping bool
	done     bool
	runErr   error
}

// NewModel creates a new TUI model
func NewModel(title string, stop func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	return Model{
		spinner:          s,
		bar:              progress.New(progress.WithDefaultGradient()),
		title:            title,
		stop:             stop,
		sessionStartTime: time.Now(),
	}
}

// Init starts the spinner and the refresh tick
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// StartBatch records the range of the batch being fetched
func (m *Model) StartBatch(start, end, total int) {
	m.batchStart = start
	m.batchEnd = end
	m.total = total
	m.batches++
}

// Percent is how far through the input the current batch starts
func (m *Model) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.batchStart) / float64(m.total)
}

// StartDownload marks name as the image being fetched
func (m *Model) StartDownload(name string) {
	m.active = name
}

// ResolveMedia counts a resolved reference and keeps it in the recent list
func (m *Model) ResolveMedia(name string, result media.Result) {
	if m.active == name {
		m.active = ""
	}

	switch result {
	case media.Downloaded:
		m.downloaded++
	case media.Existing:
		m.existing++
	case media.Duplicate:
		m.duplicates++
		return
	case media.Failed:
		m.failed++
	}

	m.recent = append(m.recent, MediaItem{Name: name, Result: result})
	if len(m.recent) > maxRecentMedia {
		m.recent = m.recent[len(m.recent)-maxRecentMedia:]
	}
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	color := dimWhite
	switch level {
	case "ERROR", "FATAL", "PANIC":
		color = errorRed
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-maxLogMessages:]
	}
}

// requestStop asks the run to end after its current batch
func (m *Model) requestStop() {
	if m.stopping {
		return
	}
	m.stopping = true
	if m.stop != nil {
		m.stop()
	}
	m.AddLogMessage("WARN", "Stopping after the current batch")
}

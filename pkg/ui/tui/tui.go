// Package tui is the full-screen progress view of a scrape or retweet run.
//
// A TUI receives pipeline batch events, per-image download events and log
// entries from other goroutines and forwards them to the bubbletea program
// as messages. Pressing q asks the run to stop after the batch in flight.
package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"tweetscraper/pkg/media"
)

const queueSize = 1024

// TUI represents the terminal user interface
type TUI struct {
	program *tea.Program
	send    func(tea.Msg)
}

// New creates a TUI titled title. stop is called when the user asks the run
// to end.
func New(title string, stop func()) *TUI {
	model := NewModel(title, stop)
	program := tea.NewProgram(&model, tea.WithAltScreen())

	// program.Send blocks until Run starts; the queue keeps early events
	// in order without holding up their senders
	queue := make(chan tea.Msg, queueSize)
	go func() {
		for msg := range queue {
			program.Send(msg)
		}
	}()

	return &TUI{
		program: program,
		send:    func(msg tea.Msg) { queue <- msg },
	}
}

// Run shows the interface until Finish is called or the user quits twice
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

// Finish tells the interface the run has ended
func (t *TUI) Finish(err error) {
	t.send(DoneMsg{Err: err})
}

// BatchStarted reports a new batch of tweets
func (t *TUI) BatchStarted(start, end, total int) {
	t.send(BatchMsg{Start: start, End: end, Total: total})
}

// DownloadStarted reports an image fetch
func (t *TUI) DownloadStarted(name string) {
	t.send(DownloadStartMsg{Name: name})
}

// MediaResolved reports how an image reference ended
func (t *TUI) MediaResolved(name string, result media.Result) {
	t.send(MediaMsg{Name: name, Result: result})
}

// Write accepts zerolog JSON entries and shows them in the log panel
func (t *TUI) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		t.send(parseLogLine(line))
	}
	return len(p), nil
}

// fields left out of the log panel
var hiddenFields = map[string]bool{"level": true, "message": true, "time": true, "app": true}

func parseLogLine(line []byte) LogMsg {
	var entry map[string]interface{}
	if err := json.Unmarshal(line, &entry); err != nil {
		return LogMsg{Level: "INFO", Message: strings.TrimSpace(string(line))}
	}

	level, _ := entry["level"].(string)
	message, _ := entry["message"].(string)

	var keys []string
	for k := range entry {
		if !hiddenFields[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := []string{message}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, entry[k]))
	}

	return LogMsg{
		Level:   strings.ToUpper(level),
		Message: strings.Join(parts, " "),
	}
}

package tui

import (
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tweetscraper/pkg/config"
	"tweetscraper/pkg/logger"
	"tweetscraper/pkg/media"
	"tweetscraper/pkg/pipeline"
)

var (
	_ pipeline.Progress = (*TUI)(nil)
	_ media.Observer    = (*TUI)(nil)
)

type recorder struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recorder) send(msg tea.Msg) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func newRecordingTUI() (*TUI, *recorder) {
	r := &recorder{}
	return &TUI{send: r.send}, r
}

func TestTUIForwardsRunEvents(t *testing.T) {
	ui, r := newRecordingTUI()

	ui.BatchStarted(0, 20, 45)
	ui.DownloadStarted("a.jpg")
	ui.MediaResolved("a.jpg", media.Downloaded)
	ui.Finish(errors.New("interrupted"))

	assert.Equal(t, []tea.Msg{
		BatchMsg{Start: 0, End: 20, Total: 45},
		DownloadStartMsg{Name: "a.jpg"},
		MediaMsg{Name: "a.jpg", Result: media.Downloaded},
		DoneMsg{Err: errors.New("interrupted")},
	}, r.msgs)
}

func TestTUIWriteParsesLogEntries(t *testing.T) {
	ui, r := newRecordingTUI()

	n, err := ui.Write([]byte(`{"level":"warn","app":"tweetscraper","time":"2024-01-01T00:00:00Z","status":404,"link":"https://twitter.com/a/status/1","message":"page failed"}` + "\n"))
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	_, err = ui.Write([]byte("not json\n\n"))
	require.NoError(t, err)

	assert.Equal(t, []tea.Msg{
		LogMsg{Level: "WARN", Message: "page failed link=https://twitter.com/a/status/1 status=404"},
		LogMsg{Level: "INFO", Message: "not json"},
	}, r.msgs)
}

func TestTUIReceivesLoggerOutput(t *testing.T) {
	ui, r := newRecordingTUI()

	log, err := logger.NewWithOutput(&config.LoggingConfig{Level: "info"}, ui)
	require.NoError(t, err)

	log.WithField("component", "pipeline").Info("Batch started")

	require.Len(t, r.msgs, 1)
	assert.Equal(t, LogMsg{Level: "INFO", Message: "Batch started component=pipeline"}, r.msgs[0])
}

func TestTUIDrivesModel(t *testing.T) {
	ui, r := newRecordingTUI()
	model := NewModel("Tweet Scraper", nil)

	ui.BatchStarted(10, 20, 40)
	ui.MediaResolved("a.jpg", media.Existing)
	for _, msg := range r.msgs {
		model.Update(msg)
	}

	assert.Equal(t, 10, model.batchStart)
	assert.Equal(t, 1, model.existing)
}

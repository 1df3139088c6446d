package tui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tweetscraper/pkg/media"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelBatchProgress(t *testing.T) {
	model := NewModel("Tweet Scraper", nil)

	model.Update(BatchMsg{Start: 20, End: 40, Total: 80})
	model.Update(BatchMsg{Start: 40, End: 60, Total: 80})

	assert.Equal(t, 2, model.batches)
	assert.Equal(t, 40, model.batchStart)
	assert.Equal(t, 60, model.batchEnd)
	assert.InDelta(t, 0.5, model.Percent(), 0.001)

	empty := NewModel("", nil)
	assert.Zero(t, empty.Percent())
}

func TestModelMediaCounters(t *testing.T) {
	model := NewModel("Tweet Scraper", nil)

	model.Update(DownloadStartMsg{Name: "a.jpg"})
	assert.Equal(t, "a.jpg", model.active)

	model.Update(MediaMsg{Name: "a.jpg", Result: media.Downloaded})
	model.Update(MediaMsg{Name: "b.jpg", Result: media.Existing})
	model.Update(MediaMsg{Name: "a.jpg", Result: media.Duplicate})
	model.Update(MediaMsg{Name: "c.jpg", Result: media.Failed})

	assert.Empty(t, model.active)
	assert.Equal(t, 1, model.downloaded)
	assert.Equal(t, 1, model.existing)
	assert.Equal(t, 1, model.duplicates)
	assert.Equal(t, 1, model.failed)
	assert.Len(t, model.recent, 3, "repeated references are not listed")

	for i := 0; i < 2*maxRecentMedia; i++ {
		model.ResolveMedia(fmt.Sprintf("%d.jpg", i), media.Downloaded)
	}
	assert.Len(t, model.recent, maxRecentMedia)
	assert.Equal(t, fmt.Sprintf("%d.jpg", 2*maxRecentMedia-1), model.recent[maxRecentMedia-1].Name)
}

func TestModelLogsAreCapped(t *testing.T) {
	model := NewModel("Tweet Scraper", nil)
	for i := 0; i < maxLogMessages+5; i++ {
		model.Update(LogMsg{Level: "INFO", Message: fmt.Sprint(i)})
	}

	require.Len(t, model.logMessages, maxLogMessages)
	assert.Equal(t, "5", model.logMessages[0].Message)
	assert.Equal(t, neonCyan, model.logMessages[0].Color)

	model.AddLogMessage("ERROR", "boom")
	assert.Equal(t, errorRed, model.logMessages[len(model.logMessages)-1].Color)

	model.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, model.logMessages)
}

func TestModelQuitStopsRunOnce(t *testing.T) {
	stops := 0
	model := NewModel("Tweet Scraper", func() { stops++ })

	_, cmd := model.Update(key("q"))
	assert.Nil(t, cmd, "the interface stays up while the batch finishes")
	assert.True(t, model.stopping)
	assert.Equal(t, 1, stops)

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 1, stops)
}

func TestModelDoneQuits(t *testing.T) {
	model := NewModel("Tweet Scraper", nil)

	_, cmd := model.Update(DoneMsg{Err: errors.New("store failed")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, model.done)
	assert.EqualError(t, model.runErr, "store failed")
}

func TestModelView(t *testing.T) {
	model := NewModel("Tweet Scraper", nil)
	assert.Equal(t, "Initializing...", model.View())

	model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model.Update(BatchMsg{Start: 0, End: 20, Total: 100})
	model.Update(MediaMsg{Name: "https___pbs.twimg.com_media_A.jpg", Result: media.Downloaded})
	model.Update(LogMsg{Level: "WARN", Message: "page failed"})

	view := model.View()
	assert.Contains(t, view, "Tweet Scraper")
	assert.Contains(t, view, "0-20 of 100")
	assert.Contains(t, view, "https___pbs.twimg.com_media_A.jpg")
	assert.Contains(t, view, "page failed")
	assert.Contains(t, view, "? help")

	model.Update(key("?"))
	assert.Contains(t, model.View(), "clear logs")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "01:05", formatDuration(65*time.Second))
	assert.Equal(t, "02:00:03", formatDuration(2*time.Hour+3*time.Second))
	assert.Equal(t, "00:00", formatDuration(-time.Second))
}

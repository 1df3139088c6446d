package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tweetscraper/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info level", cfg: &config.LoggingConfig{Level: "info"}},
		{name: "debug level", cfg: &config.LoggingConfig{Level: "debug"}},
		{name: "invalid level", cfg: &config.LoggingConfig{Level: "invalid"}, wantErr: true},
		{name: "file output", cfg: &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNewWithOutputWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(&config.LoggingConfig{Level: "info"}, &buf)
	require.NoError(t, err)

	log.WithField("batch", 3).Info("Batch started")
	log.Debug("hidden")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Batch started", entry["message"])
	assert.EqualValues(t, 3, entry["batch"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestTestLoggerCapturesFields(t *testing.T) {
	log := NewTestLogger()

	log.WithField("batch", 2).WithFields(map[string]interface{}{"size": 20}).Info("Batch fetched")
	log.WithError(errors.New("boom")).ErrorWithFields("Download failed", map[string]interface{}{"name": "a.jpg"})

	messages := log.GetMessages()
	require.Len(t, messages, 2)

	assert.Equal(t, "INFO", messages[0].Level)
	assert.Equal(t, 2, messages[0].Fields["batch"])
	assert.Equal(t, 20, messages[0].Fields["size"])

	assert.Equal(t, "ERROR", messages[1].Level)
	assert.EqualError(t, messages[1].Error, "boom")
	assert.Equal(t, "a.jpg", messages[1].Fields["name"])

	assert.True(t, log.HasMessage("Batch fetched"))
	assert.True(t, log.HasError())

	log.Clear()
	assert.Empty(t, log.GetMessages())
}

func TestLogBatchProgress(t *testing.T) {
	log := NewTestLogger()
	LogBatchProgress(log, 25, 50, 100)

	messages := log.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "25.00%", messages[0].Fields["percentage"])
	assert.Equal(t, 100, messages[0].Fields["total"])
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "error"}))
	assert.NotNil(t, GetLogger())
	WithField("k", "v").Debug("suppressed")
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.WithField("a", 1).WithError(errors.New("x")).Error("ignored")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Input.File = "tweets.csv"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Batch.Size != 20 {
		t.Errorf("Expected default batch size to be 20, got %d", config.Batch.Size)
	}

	if config.Batch.FlushInterval != 10 {
		t.Errorf("Expected default flush interval to be 10, got %d", config.Batch.FlushInterval)
	}

	if config.Media.Directory != "./dumps" {
		t.Errorf("Expected default media directory to be ./dumps, got %s", config.Media.Directory)
	}

	assert.Equal(t, 100*time.Millisecond, config.Media.Backoff)
	assert.Equal(t, "output.csv", config.Output.File)
	assert.Equal(t, "csv", config.Output.Driver)
	assert.Equal(t, SuspendedURL, config.Fetch.SuspendedURL)
	assert.Equal(t, 1, config.Fetch.RetryAttempts)
	assert.Equal(t, []string{"original"}, config.Input.PostTypes)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TWEETSCRAPER_INPUT", "/data/tweets.csv")
	t.Setenv("TWEETSCRAPER_OUTPUT", "/data/out.csv")
	t.Setenv("TWEETSCRAPER_BATCH_SIZE", "50")
	t.Setenv("TWEETSCRAPER_FLUSH_INTERVAL", "4")
	t.Setenv("TWEETSCRAPER_MEDIA_DIR", "/data/dumps")
	t.Setenv("TWEETSCRAPER_BACKOFF", "250ms")
	t.Setenv("TWEETSCRAPER_AUTH_TOKEN", "token")
	t.Setenv("TWEETSCRAPER_CT0", "ct0")
	t.Setenv("TWEETSCRAPER_LOG_LEVEL", "debug")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "/data/tweets.csv", config.Input.File)
	assert.Equal(t, "/data/out.csv", config.Output.File)
	assert.Equal(t, 50, config.Batch.Size)
	assert.Equal(t, 4, config.Batch.FlushInterval)
	assert.Equal(t, "/data/dumps", config.Media.Directory)
	assert.Equal(t, 250*time.Millisecond, config.Media.Backoff)
	assert.Equal(t, "token", config.Twitter.AuthToken)
	assert.Equal(t, "ct0", config.Twitter.CT0)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromEnvInvalidBackoff(t *testing.T) {
	t.Setenv("TWEETSCRAPER_BACKOFF", "soon")

	config := DefaultConfig()
	assert.Error(t, config.LoadFromEnv())
}

func TestLoadFromEnvInvalidIntegers(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "batch size", key: "TWEETSCRAPER_BATCH_SIZE", value: "twenty"},
		{name: "flush interval", key: "TWEETSCRAPER_FLUSH_INTERVAL", value: "10x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			config := DefaultConfig()
			err := config.LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, wantError: false},
		{name: "missing input", mutate: func(c *Config) { c.Input.File = "" }, wantError: true},
		{name: "no post types", mutate: func(c *Config) { c.Input.PostTypes = nil }, wantError: true},
		{name: "zero batch size", mutate: func(c *Config) { c.Batch.Size = 0 }, wantError: true},
		{name: "zero flush interval", mutate: func(c *Config) { c.Batch.FlushInterval = 0 }, wantError: true},
		{name: "negative backoff", mutate: func(c *Config) { c.Media.Backoff = -time.Second }, wantError: true},
		{name: "zero backoff", mutate: func(c *Config) { c.Media.Backoff = 0 }, wantError: false},
		{name: "zero timeout", mutate: func(c *Config) { c.Fetch.Timeout = 0 }, wantError: true},
		{name: "zero max redirects", mutate: func(c *Config) { c.Fetch.MaxRedirects = 0 }, wantError: true},
		{name: "one max redirect", mutate: func(c *Config) { c.Fetch.MaxRedirects = 1 }, wantError: false},
		{name: "zero retry attempts", mutate: func(c *Config) { c.Fetch.RetryAttempts = 0 }, wantError: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Output.Driver = "sqlite" }, wantError: true},
		{name: "mongo without uri", mutate: func(c *Config) { c.Output.Driver = "mongo" }, wantError: true},
		{
			name: "mongo with uri",
			mutate: func(c *Config) {
				c.Output.Driver = "mongo"
				c.Output.MongoURI = "mongodb://localhost:27017"
			},
			wantError: false,
		},
		{name: "invalid log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"input":          "flag.csv",
		"output":         "flag-out.csv",
		"batch-size":     7,
		"flush-interval": 3,
		"media-dir":      "/flag/dumps",
		"backoff":        2 * time.Second,
		"post-types":     []string{"original", "reply"},
		"log-level":      "error",
	}

	config.MergeCommandLineFlags(flags)

	assert.Equal(t, "flag.csv", config.Input.File)
	assert.Equal(t, "flag-out.csv", config.Output.File)
	assert.Equal(t, 7, config.Batch.Size)
	assert.Equal(t, 3, config.Batch.FlushInterval)
	assert.Equal(t, "/flag/dumps", config.Media.Directory)
	assert.Equal(t, 2*time.Second, config.Media.Backoff)
	assert.Equal(t, []string{"original", "reply"}, config.Input.PostTypes)
	assert.Equal(t, "error", config.Logging.Level)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	config := validConfig()
	config.Batch.Size = 8
	config.Media.Directory = "/srv/dumps"

	require.NoError(t, config.Save(configPath))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(configPath))

	assert.Equal(t, "tweets.csv", loaded.Input.File)
	assert.Equal(t, 8, loaded.Batch.Size)
	assert.Equal(t, "/srv/dumps", loaded.Media.Directory)
	assert.Equal(t, config.Media.Backoff, loaded.Media.Backoff)
}

func TestLoadFromFileDurations(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "durations.yaml")
	content := `
input:
  file: in.csv
media:
  backoff: 1s
fetch:
  timeout: 5s
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(configPath))

	assert.Equal(t, "in.csv", config.Input.File)
	assert.Equal(t, time.Second, config.Media.Backoff)
	assert.Equal(t, 5*time.Second, config.Fetch.Timeout)
	// untouched sections keep their defaults
	assert.Equal(t, 20, config.Batch.Size)
}

func TestLoadPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
input:
  file: from-file.csv
batch:
  size: 5
  flush_interval: 2
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	t.Setenv("TWEETSCRAPER_BATCH_SIZE", "9")

	config, err := Load(configPath, map[string]interface{}{
		"flush-interval": 6,
	})
	require.NoError(t, err)

	assert.Equal(t, "from-file.csv", config.Input.File)
	assert.Equal(t, 9, config.Batch.Size)
	assert.Equal(t, 6, config.Batch.FlushInterval)
}

func TestLoadInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("batch:\n  size: 3\n"), 0644))

	_, err := Load(configPath, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "input file is required")
}

func TestResolveSkipsValidation(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("batch:\n  size: 3\n"), 0644))

	config, err := Resolve(configPath, map[string]interface{}{"media-dir": "imgs"})
	require.NoError(t, err)

	assert.Equal(t, 3, config.Batch.Size)
	assert.Equal(t, "imgs", config.Media.Directory)
	assert.Error(t, config.Validate())
}

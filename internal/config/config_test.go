package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "triggers.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "vader", cfg.Sentiment.Engine)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, 20, cfg.Fetch.ItemsPerFeed)
	assert.Equal(t, 500, cfg.Fetch.MaxContentLen)

	assert.True(t, cfg.Monitors.News.Enabled)
	assert.Equal(t, 4, cfg.Monitors.News.IntervalHours)
	assert.InDelta(t, 0.7, cfg.Monitors.News.Reliability, 0.001)
	assert.InDelta(t, 0.85, cfg.Monitors.Regulatory.Reliability, 0.001)
	assert.True(t, cfg.Monitors.Regulatory.FlipAdverseSentiment)
	assert.InDelta(t, 0.8, cfg.Monitors.Tender.Reliability, 0.001)
	assert.InDelta(t, 0.6, cfg.Monitors.Financial.Reliability, 0.001)

	assert.NotEmpty(t, cfg.Feeds.News)
	assert.NotEmpty(t, cfg.Feeds.Regulatory)
	assert.NotEmpty(t, cfg.Feeds.Tender)
	assert.NotEmpty(t, cfg.Financial.ScreenerURLs)
	assert.Contains(t, cfg.Financial.JobsURL, "%s")
	assert.NotEmpty(t, cfg.Companies)
}

func TestLoadFromYAML(t *testing.T) {
	chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/triggers
log:
  level: debug
  format: console
server:
  port: 9090
monitors:
  news:
    enabled: false
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Monitors.News.Enabled)
	// Defaults still apply for unset values
	assert.True(t, cfg.Monitors.Tender.Enabled)
	assert.Equal(t, 20, cfg.Fetch.ItemsPerFeed)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("TRIGGER_STORE_DRIVER", "postgres")
	t.Setenv("TRIGGER_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestMonitorFor(t *testing.T) {
	m := MonitorsConfig{
		News:   MonitorConfig{Reliability: 0.7},
		Tender: MonitorConfig{Reliability: 0.8},
	}

	assert.InDelta(t, 0.7, m.MonitorFor("news").Reliability, 0.001)
	assert.InDelta(t, 0.8, m.MonitorFor("tender").Reliability, 0.001)
	// Unknown source types fall back to middling reliability.
	assert.InDelta(t, 0.5, m.MonitorFor("telegraph").Reliability, 0.001)
}

func TestLoadKeywordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	data := "expansion:\n  - capacity expansion\n  - new plant\nlicensing:\n  - licensing deal\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	keywords, err := LoadKeywordsFile(path)
	require.NoError(t, err)
	assert.Len(t, keywords, 2)
	assert.Equal(t, []string{"capacity expansion", "new plant"}, keywords["expansion"])
}

func TestLoadKeywordsFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := LoadKeywordsFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadKeywordsFileMissing(t *testing.T) {
	_, err := LoadKeywordsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

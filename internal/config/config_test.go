package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SCRAPE_API_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "https://api.apify.com", cfg.ScrapeBaseURL)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.MaxScrapeWait)
	assert.Equal(t, 50, cfg.ChunkThreshold)
	assert.Equal(t, 5*time.Minute, cfg.PlatformTimeout)
	assert.Equal(t, 6*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, 50, cfg.MaxPosts)
	assert.Equal(t, 20, cfg.MaxComments)
	assert.Equal(t, 7, cfg.TimeWindowDay)
	assert.Equal(t, 20, cfg.EnhanceBatch)
	assert.Equal(t, "campaign-runs", cfg.StorageContainer)
	assert.False(t, cfg.MockMode)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SCRAPE_API_TOKEN", "token")
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("MAX_POSTS", "100")
	t.Setenv("SCRAPE_POLL_INTERVAL", "250ms")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("STANDING_KEYWORDS", "acme, acme pro,widgets")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 100, cfg.MaxPosts)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 0.7, cfg.LLMTemperature)
	assert.Equal(t, []string{"acme", "acme pro", "widgets"}, cfg.StandingKeywords)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("SCRAPE_API_TOKEN", "token")
	t.Setenv("MAX_POSTS", "not-a-number")
	t.Setenv("DEBUG", "not-a-bool")
	t.Setenv("SCRAPE_MAX_WAIT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.MaxPosts)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 5*time.Minute, cfg.MaxScrapeWait)
}

func TestLoad_RequiresScrapeToken(t *testing.T) {
	t.Setenv("SCRAPE_API_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCRAPE_API_TOKEN")
}

func TestLoad_MockModeSkipsTokenRequirement(t *testing.T) {
	t.Setenv("SCRAPE_API_TOKEN", "")
	t.Setenv("MOCK_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MockMode)
}

func TestLoad_StandingScheduleRequiresKeywords(t *testing.T) {
	t.Setenv("SCRAPE_API_TOKEN", "token")
	t.Setenv("STANDING_SCHEDULE", "0 0 8 * * *")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STANDING_KEYWORDS")
}

func TestLoad_NotificationEmailRequiresSMTP(t *testing.T) {
	t.Setenv("SCRAPE_API_TOKEN", "token")
	t.Setenv("NOTIFICATION_EMAIL", "team@example.com")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP")
}

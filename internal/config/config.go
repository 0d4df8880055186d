package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application. It is constructed once
// at process start and passed by parameter into every component.
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Scraping provider configuration
	ScrapeBaseURL  string
	ScrapeToken    string
	PollInterval   time.Duration
	MaxScrapeWait  time.Duration // per-job polling budget
	ChunkThreshold int           // requested items above this are split into chunks
	ChunkDelay     time.Duration

	// Pipeline timeouts
	PlatformTimeout time.Duration
	RequestTimeout  time.Duration

	// Default campaign limits (overridable per campaign)
	MaxPosts      int
	MaxComments   int
	TimeWindowDay int

	// Language model configuration
	LLMAPIURL      string
	LLMAPIKey      string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	EnhanceTimeout time.Duration
	ReportTimeout  time.Duration
	EnhanceBatch   int

	// Campaign-launch forwarding
	LaunchWebhookURL string

	// Result archive (Azure Blob Storage); disabled when account is empty
	StorageAccount   string
	StorageContainer string

	// Notification configuration (used by scheduled runs)
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Standing campaign schedule; empty disables the scheduler
	StandingSchedule  string
	StandingName      string
	StandingKeywords  []string
	StandingPlatforms []string

	// Mock mode replaces all external calls with synthetic data
	MockMode bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		ScrapeBaseURL:  getEnv("SCRAPE_API_URL", "https://api.apify.com"),
		ScrapeToken:    getEnv("SCRAPE_API_TOKEN", ""),
		PollInterval:   getDurationEnv("SCRAPE_POLL_INTERVAL", 5*time.Second),
		MaxScrapeWait:  getDurationEnv("SCRAPE_MAX_WAIT", 5*time.Minute),
		ChunkThreshold: getIntEnv("SCRAPE_CHUNK_THRESHOLD", 50),
		ChunkDelay:     getDurationEnv("SCRAPE_CHUNK_DELAY", 10*time.Second),

		PlatformTimeout: getDurationEnv("PLATFORM_TIMEOUT", 5*time.Minute),
		RequestTimeout:  getDurationEnv("REQUEST_TIMEOUT", 6*time.Minute),

		MaxPosts:      getIntEnv("MAX_POSTS", 50),
		MaxComments:   getIntEnv("MAX_COMMENTS", 20),
		TimeWindowDay: getIntEnv("TIME_WINDOW_DAYS", 7),

		LLMAPIURL:      getEnv("LLM_API_URL", "https://openrouter.ai/api/v1/chat/completions"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "openai/gpt-4o-mini"),
		LLMMaxTokens:   getIntEnv("LLM_MAX_TOKENS", 2000),
		LLMTemperature: getFloatEnv("LLM_TEMPERATURE", 0.3),
		EnhanceTimeout: getDurationEnv("LLM_ENHANCE_TIMEOUT", 2*time.Minute),
		ReportTimeout:  getDurationEnv("LLM_REPORT_TIMEOUT", 60*time.Second),
		EnhanceBatch:   getIntEnv("LLM_ENHANCE_BATCH", 20),

		LaunchWebhookURL: getEnv("LAUNCH_WEBHOOK_URL", ""),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "campaign-runs"),

		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		StandingSchedule:  getEnv("STANDING_SCHEDULE", ""),
		StandingName:      getEnv("STANDING_CAMPAIGN_NAME", "standing-campaign"),
		StandingKeywords:  getSliceEnv("STANDING_KEYWORDS", nil),
		StandingPlatforms: getSliceEnv("STANDING_PLATFORMS", nil),

		MockMode: getBoolEnv("MOCK_MODE", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !c.MockMode && c.ScrapeToken == "" {
		return fmt.Errorf("SCRAPE_API_TOKEN is required unless MOCK_MODE is enabled")
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("SCRAPE_POLL_INTERVAL must be positive")
	}

	if c.StandingSchedule != "" && len(c.StandingKeywords) == 0 {
		return fmt.Errorf("STANDING_KEYWORDS is required when STANDING_SCHEDULE is set")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

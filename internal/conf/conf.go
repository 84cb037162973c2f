package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pulsecheck/engage/internal/biz/usecase"
	"github.com/pulsecheck/engage/internal/service"
)

// Config represents application configuration
type Config struct {
	// Engine database path
	DBPath string

	// OpenAI configuration
	OpenAI OpenAIConfig

	// Scheduler configuration
	Scheduler SchedulerConfig

	// Detector configuration
	Detector DetectorConfig

	// Ops API port
	APIPort int

	// Retained cycle records
	CycleHistory int

	// Debug mode
	Debug bool
}

// OpenAIConfig contains generation configuration
type OpenAIConfig struct {
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// SchedulerConfig contains scheduler configuration
type SchedulerConfig struct {
	CycleIntervalMinutes int
	LookbackHours        int
	TestingMode          bool
}

// DetectorConfig contains opportunity-detection configuration
type DetectorConfig struct {
	MinEntryLength int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	dbPath := os.Getenv("ENGINE_DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".pulsecheck", "engage.db")
	}

	return &Config{
		DBPath: dbPath,
		OpenAI: OpenAIConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			Model:          os.Getenv("OPENAI_MODEL"),
			TimeoutSeconds: envInt("GENERATION_TIMEOUT_SECONDS", 30),
		},
		Scheduler: SchedulerConfig{
			CycleIntervalMinutes: envInt("CYCLE_INTERVAL_MINUTES", 5),
			LookbackHours:        envInt("LOOKBACK_HOURS", 48),
			TestingMode:          os.Getenv("TESTING_MODE") == "true",
		},
		Detector: DetectorConfig{
			MinEntryLength: envInt("MIN_ENTRY_LENGTH", 25),
		},
		APIPort:      envInt("API_PORT", 8642),
		CycleHistory: envInt("CYCLE_HISTORY", 50),
		Debug:        os.Getenv("DEBUG") == "true",
	}
}

func envInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

// ToSchedulerConfig converts to the scheduler's configuration
func (c *Config) ToSchedulerConfig() service.SchedulerConfig {
	return service.SchedulerConfig{
		CycleInterval: time.Duration(c.Scheduler.CycleIntervalMinutes) * time.Minute,
		Lookback:      time.Duration(c.Scheduler.LookbackHours) * time.Hour,
		TestingMode:   c.Scheduler.TestingMode,
	}
}

// ToDetectorConfig converts to the detector's configuration
func (c *Config) ToDetectorConfig() usecase.DetectorConfig {
	return usecase.DetectorConfig{
		Lookback:       time.Duration(c.Scheduler.LookbackHours) * time.Hour,
		MinEntryLength: c.Detector.MinEntryLength,
	}
}

// GenerationTimeout returns the per-call generation timeout
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return &ConfigError{Field: "OPENAI_API_KEY", Message: "required"}
	}
	if c.Scheduler.CycleIntervalMinutes <= 0 {
		return &ConfigError{Field: "CYCLE_INTERVAL_MINUTES", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

const (
	DBSQLite    = "sqlite"
	DBPostgres  = "postgres"
	DBFirestore = "firestore"
	DBMemory    = "memory"

	AIMock   = "mock"
	AIOpenAI = "openai"
	AIGemini = "gemini"
)

// Config holds the configuration for the coach service.
// Environment variables are parsed from the COACH_ prefix.
type Config struct {
	// Build target selects high-level environment: local or cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override drivers
	DBDriver   string `envconfig:"DB_DRIVER" default:"auto"`
	AIProvider string `envconfig:"AI_PROVIDER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort               int `envconfig:"HTTP_PORT" default:"8080"`
	ShutdownTimeoutSeconds int `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"10"`

	// Document stores
	SQLitePath   string `envconfig:"SQLITE_PATH" default:"./data/coach.db"`
	PostgresDSN  string `envconfig:"POSTGRES_DSN" default:""`
	GCPProjectID string `envconfig:"GCP_PROJECT_ID" default:""`
	GCPLocation  string `envconfig:"GCP_LOCATION" default:"us-central1"`

	// Optimistic concurrency retry budget per mutation
	ConflictMaxAttempts int `envconfig:"CONFLICT_MAX_ATTEMPTS" default:"5"`

	// AI providers
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIBaseURL    string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIModel      string `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel      string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	AIMaxRetries     int    `envconfig:"AI_MAX_RETRIES" default:"0"`
	AITimeoutSeconds int    `envconfig:"AI_TIMEOUT_SECONDS" default:"60"`

	MaxTextLength int `envconfig:"MAX_TEXT_LENGTH" default:"10000"`

	// Health
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	HealthMaxWaitSeconds      int `envconfig:"HEALTH_MAX_WAIT_SECONDS" default:"60"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver and AIProvider when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB, defaultAI string

	switch c.BuildTarget {
	case "local":
		defaultDB, defaultAI = DBSQLite, AIMock
	case "cloud":
		defaultDB, defaultAI = DBFirestore, AIOpenAI
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}
	if c.AIProvider == "" || c.AIProvider == "auto" {
		c.AIProvider = defaultAI
	}

	switch c.DBDriver {
	case DBSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("COACH_SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	case DBPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("COACH_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	case DBFirestore:
		if c.GCPProjectID == "" {
			return fmt.Errorf("COACH_GCP_PROJECT_ID is required when DB_DRIVER=firestore")
		}
	case DBMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	switch c.AIProvider {
	case AIMock:
	case AIOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("COACH_OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	case AIGemini:
		if c.GeminiAPIKey == "" && c.GCPProjectID == "" {
			return fmt.Errorf("COACH_GEMINI_API_KEY or COACH_GCP_PROJECT_ID is required when AI_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unsupported AI_PROVIDER: %s", c.AIProvider)
	}

	if c.ConflictMaxAttempts < 1 {
		return fmt.Errorf("CONFLICT_MAX_ATTEMPTS must be at least 1")
	}
	if c.AIMaxRetries < 0 {
		return fmt.Errorf("AI_MAX_RETRIES must not be negative")
	}
	if c.MaxTextLength < 1 {
		return fmt.Errorf("MAX_TEXT_LENGTH must be positive")
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Example: COACH_BUILD_TARGET=cloud, COACH_HTTP_PORT=9000
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("COACH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("ai_provider", cfg.AIProvider).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Str("project", cfg.GCPProjectID).
		Int("ai_max_retries", cfg.AIMaxRetries).
		Int("conflict_max_attempts", cfg.ConflictMaxAttempts).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		BuildTarget:               "local",
		DBDriver:                  DBMemory,
		AIProvider:                AIMock,
		Environment:               EnvTesting,
		LogLevel:                  "debug",
		HTTPPort:                  8080,
		ShutdownTimeoutSeconds:    1,
		ConflictMaxAttempts:       5,
		OpenAIBaseURL:             "https://api.openai.com/v1",
		OpenAIModel:               "gpt-4o",
		GeminiModel:               "gemini-2.5-flash",
		AITimeoutSeconds:          5,
		MaxTextLength:             10000,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		HealthMaxWaitSeconds:      5,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSeconds) * time.Second
}

func (c *Config) HealthProbeTimeout() time.Duration {
	return time.Duration(c.HealthProbeTimeoutSeconds) * time.Second
}

func (c *Config) HealthMaxWait() time.Duration {
	return time.Duration(c.HealthMaxWaitSeconds) * time.Second
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Annany2002/sql-sketcher-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// Used when JWT_SECRET is absent outside production.
	DevJWTSecret = "!!replace_this_with_a_real_secret_key!!"
)

// Config holds application configuration values
type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	ServerPort string `env:"PORT" envDefault:"3000"`

	JWTSecret          string        `env:"JWT_SECRET"`
	JWTExpirationHours int           `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`
	JWTExpiration      time.Duration

	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`

	OpenAI  OpenAIConfig
	History HistoryConfig
	Archive ArchiveConfig

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// OpenAIConfig configures the OpenAI-compatible completion endpoint.
type OpenAIConfig struct {
	APIKey      string        `env:"OPENAI_API_KEY"`
	BaseURL     string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	Model       string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	MaxTokens   int           `env:"OPENAI_MAX_TOKENS" envDefault:"2000"`
	Temperature float64       `env:"OPENAI_TEMPERATURE" envDefault:"0.7"`
	Timeout     time.Duration `env:"OPENAI_TIMEOUT" envDefault:"60s"`
}

// HistoryConfig selects the database holding users and generated artifacts.
type HistoryConfig struct {
	Driver string `env:"HISTORY_DB_DRIVER" envDefault:"sqlite3"`
	DSN    string `env:"HISTORY_DB_DSN"`
	DbDir  string `env:"DATABASE_DIRECTORY" envDefault:"data"`
	DbFile string `env:"DATABASE_DIRECTORY_FILE" envDefault:"sql_sketcher.db"`
}

// ArchiveConfig configures the optional S3-compatible mirror of generated SQL.
type ArchiveConfig struct {
	Endpoint         string `env:"ARCHIVE_ENDPOINT"`
	Region           string `env:"ARCHIVE_REGION"`
	Bucket           string `env:"ARCHIVE_BUCKET"`
	AccessKeyID      string `env:"ARCHIVE_ACCESS_KEY_ID"`
	SecretAccessKey  string `env:"ARCHIVE_SECRET_ACCESS_KEY"`
	Prefix           string `env:"ARCHIVE_PREFIX" envDefault:"sql-sketcher"`
	UseSSL           bool   `env:"ARCHIVE_USE_SSL" envDefault:"true"`
	AutoCreateBucket bool   `env:"ARCHIVE_AUTO_CREATE_BUCKET" envDefault:"false"`
}

// Enabled reports whether an endpoint and bucket were configured.
func (a ArchiveConfig) Enabled() bool {
	return strings.TrimSpace(a.Endpoint) != "" && strings.TrimSpace(a.Bucket) != ""
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, EnvDevelopment)
}

// APIKeyConfigured reports whether any model API key was supplied.
func (c *Config) APIKeyConfigured() bool {
	return strings.TrimSpace(c.OpenAI.APIKey) != ""
}

// ModelEnabled reports whether the model-backed path should be attempted.
// Keys that do not look like OpenAI secret keys keep the service in test mode.
func (c *Config) ModelEnabled() bool {
	return strings.HasPrefix(strings.TrimSpace(c.OpenAI.APIKey), "sk-")
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != EnvProduction {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	return Parse(env.Options{})
}

// Parse reads the environment (or opts.Environment when set) into a validated Config.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	customLog.Printf("Configuration loaded successfully. Env: %s, Port: %s, JWT Exp: %v, History driver: %s",
		cfg.AppEnv, cfg.ServerPort, cfg.JWTExpiration, cfg.History.Driver)
	return cfg, nil
}

func validate(cfg *Config) error {
	cfg.ServerPort = strings.TrimPrefix(strings.TrimSpace(cfg.ServerPort), ":")
	if cfg.ServerPort == "" {
		cfg.ServerPort = "3000"
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return errors.New("JWT_SECRET environment variable must be set in production")
		}
		cfg.JWTSecret = DevJWTSecret
	}
	if cfg.JWTSecret == DevJWTSecret {
		customLog.Warnln("WARNING: JWT_SECRET is set to the default placeholder!")
	}

	if cfg.JWTExpirationHours <= 0 {
		customLog.Warnf("Invalid JWT_EXPIRATION_HOURS '%d'. Using default 24h.", cfg.JWTExpirationHours)
		cfg.JWTExpirationHours = 24
	}
	cfg.JWTExpiration = time.Hour * time.Duration(cfg.JWTExpirationHours)

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		// allowlisted origins receive credentials; wildcards are not allowed
		if strings.Contains(trimmed, "*") {
			return fmt.Errorf("ALLOWED_ORIGINS must list explicit origins, got %q", trimmed)
		}
		origins = append(origins, trimmed)
	}
	cfg.AllowedOrigins = origins

	if cfg.RateLimitMax <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", cfg.RateLimitWindow)
	}

	if cfg.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be positive, got %d", cfg.OpenAI.MaxTokens)
	}
	if cfg.OpenAI.Temperature < 0 || cfg.OpenAI.Temperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be within [0, 2], got %v", cfg.OpenAI.Temperature)
	}

	switch cfg.History.Driver {
	case "sqlite3":
	case "pgx", "mysql":
		if strings.TrimSpace(cfg.History.DSN) == "" {
			return fmt.Errorf("HISTORY_DB_DSN is required for driver %q", cfg.History.Driver)
		}
	default:
		return fmt.Errorf("unsupported HISTORY_DB_DRIVER %q (want sqlite3, pgx or mysql)", cfg.History.Driver)
	}

	return nil
}

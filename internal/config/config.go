// Package config loads settings from the environment and an optional .env
// file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"

	applog "fintrack/internal/log"
)

// DefaultAPIURL is the hosted mock API the client ships against.
const DefaultAPIURL = "https://financialproyect.free.beeceptor.com"

type Config struct {
	// Remote API
	APIURL     string        `env:"FINTRACK_API_URL" envDefault:"https://financialproyect.free.beeceptor.com"`
	APITimeout time.Duration `env:"FINTRACK_API_TIMEOUT" envDefault:"10s"`

	// Local store
	DBPath string `env:"FINTRACK_DB_PATH"`

	// Logging
	LogLevel  string `env:"FINTRACK_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"FINTRACK_LOG_FORMAT" envDefault:"text"`

	// AMQP sync-failure reporting, disabled when the URL is empty
	AMQPURL      string `env:"FINTRACK_AMQP_URL"`
	AMQPExchange string `env:"FINTRACK_AMQP_EXCHANGE" envDefault:"fintrack"`
	AMQPQueue    string `env:"FINTRACK_AMQP_QUEUE" envDefault:"sync_failures"`

	// Query cache
	QueryCacheSize int           `env:"FINTRACK_QUERY_CACHE_SIZE" envDefault:"100"`
	QueryCacheTTL  time.Duration `env:"FINTRACK_QUERY_CACHE_TTL" envDefault:"5m"`

	// Mock API server
	MockAPIPort string `env:"MOCK_API_PORT" envDefault:"8081"`
}

// Load reads .env when present and parses the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, nil
}

// DefaultDBPath is ~/.fintrack/fintrack.db, or ./data/fintrack.db when the
// home directory is unknown.
func DefaultDBPath() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".fintrack", "fintrack.db")
	}
	return filepath.Join(".", "data", "fintrack.db")
}

// AMQPEnabled reports whether sync failures should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// LoggerConfig maps the logging settings onto the logger.
func (c *Config) LoggerConfig() applog.Config {
	cfg := applog.DefaultConfig()
	if level, err := applog.ParseLevel(c.LogLevel); err == nil {
		cfg.Level = level
	}
	cfg.Format = c.LogFormat
	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if u, err := url.Parse(c.APIURL); err != nil || c.APIURL == "" {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s'", c.APIURL))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.APITimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be positive", c.APITimeout))
	} else if c.APITimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be at most 5 minutes", c.APITimeout))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.QueryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid query cache size %d: must be at least 1", c.QueryCacheSize))
	}
	if c.QueryCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid query cache TTL %v: must not be negative", c.QueryCacheTTL))
	}

	if port, err := strconv.Atoi(c.MockAPIPort); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.MockAPIPort))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

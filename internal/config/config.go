// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"ledger/internal/log"
)

type Config struct {
	// Front end
	Port               string
	BackendURL         string
	BackendTimeout     time.Duration
	SessionTTL         time.Duration
	MaxSessions        int
	MutationsPerMinute int
	SeedDir            string

	// Companion REST backend
	APIPort      string
	SQLiteDBPath string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		BackendURL:         getEnv("BACKEND_URL", "http://localhost:8000"),
		BackendTimeout:     getEnvDuration("BACKEND_TIMEOUT", 0),
		SessionTTL:         getEnvDuration("SESSION_TTL", 12*time.Hour),
		MaxSessions:        getEnvInt("MAX_SESSIONS", 500),
		MutationsPerMinute: getEnvInt("MUTATIONS_PER_MINUTE", 60),
		SeedDir:            getEnv("SEED_DIR", "data"),

		APIPort:      getEnv("API_PORT", "8000"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_events"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// AMQPEnabled reports whether record events should be published and consumed.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	for _, p := range []struct{ name, value string }{{"port", c.Port}, {"API port", c.APIPort}} {
		if port, err := strconv.Atoi(p.value); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be a number", p.name, p.value))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", p.name, port))
		}
	}

	if u, err := url.Parse(c.BackendURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errors = append(errors, fmt.Sprintf("invalid backend URL '%s': must be an absolute http(s) URL", c.BackendURL))
	}
	if c.BackendTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid backend timeout %v: must not be negative", c.BackendTimeout))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.MaxSessions < 1 {
		errors = append(errors, fmt.Sprintf("invalid max sessions %d: must be at least 1", c.MaxSessions))
	}
	if c.MutationsPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid mutations per minute %d: must be at least 1", c.MutationsPerMinute))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
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

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

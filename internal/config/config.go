package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection: "local" or "remote", fixed for the process lifetime
	DataBackend string

	// Local backend
	SQLiteDBPath string
	SlotName     string

	// Remote backend
	RemoteBaseURL string
	RemoteTimeout time.Duration

	// AMQP mutation events (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Insights
	CategoryCap int
	CacheTTL    time.Duration

	// CORS
	CORSAllowOrigins string

	// Worker
	ExportDir string

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend: getEnv("DATA_BACKEND", "local"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budget.db"),
		SlotName:     getEnv("SLOT_NAME", "expenses"),

		RemoteBaseURL: getEnv("REMOTE_BASE_URL", ""),
		RemoteTimeout: getEnvDuration("REMOTE_TIMEOUT", 10*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budget"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		CategoryCap: getEnvInt("CATEGORY_CAP", 9),
		CacheTTL:    getEnvDuration("INSIGHTS_CACHE_TTL", 30*time.Second),

		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173"),

		ExportDir: getEnv("EXPORT_DIR", "./data/exports"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "local":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using local backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
		if c.SlotName == "" {
			errs = append(errs, "slot name cannot be empty when using local backend")
		}
	case "remote":
		if c.RemoteBaseURL == "" {
			errs = append(errs, "remote base URL is required when using remote backend")
		} else if parsed, err := url.Parse(c.RemoteBaseURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid remote base URL '%s': %v", c.RemoteBaseURL, err))
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid remote base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [local remote]", c.DataBackend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RemoteTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid remote timeout %v: must be at least 1 second", c.RemoteTimeout))
	} else if c.RemoteTimeout > time.Minute {
		errs = append(errs, fmt.Sprintf("invalid remote timeout %v: must be at most 1 minute", c.RemoteTimeout))
	}

	if c.CacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid insights cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > time.Hour {
		errs = append(errs, fmt.Sprintf("invalid insights cache TTL %v: must be at most 1 hour", c.CacheTTL))
	}

	if c.CategoryCap < 1 {
		errs = append(errs, fmt.Sprintf("invalid category cap %d: must be at least 1", c.CategoryCap))
	} else if c.CategoryCap > 100 {
		errs = append(errs, fmt.Sprintf("invalid category cap %d: must be at most 100", c.CategoryCap))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
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

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

	// Session mode selection
	SessionMode string

	// Remote API
	APIBaseURL string
	APIToken   string

	// Guest store
	GuestDBPath string

	// Change events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	ExportDir      string
	ExportDebounce time.Duration

	// How the derivation engine handles unrecognized transaction types
	UnknownTypeTreatment string
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8081"),
		SessionMode: getEnv("SESSION_MODE", "guest"),

		APIBaseURL: getEnv("API_BASE_URL", ""),
		APIToken:   getEnv("API_TOKEN", ""),

		GuestDBPath: getEnv("GUEST_DB_PATH", "./data/buckaroo.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "buckaroo"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_changes"),

		ExportDir:      getEnv("EXPORT_DIR", "./data/exports"),
		ExportDebounce: getEnvDuration("EXPORT_DEBOUNCE", 5*time.Second),

		UnknownTypeTreatment: getEnv("UNKNOWN_TYPE_TREATMENT", "treat_as_expense"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate session mode
	validModes := []string{"remote", "guest", "memory"}
	isValidMode := false
	for _, mode := range validModes {
		if c.SessionMode == mode {
			isValidMode = true
			break
		}
	}
	if !isValidMode {
		errors = append(errors, fmt.Sprintf("invalid session mode '%s': must be one of %v", c.SessionMode, validModes))
	}

	// Validate remote configuration if mode is remote
	if c.SessionMode == "remote" {
		if c.APIBaseURL == "" {
			errors = append(errors, "API base URL cannot be empty when using remote mode")
		} else if parsedURL, err := url.Parse(c.APIBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
		if c.APIToken == "" {
			errors = append(errors, "API token cannot be empty when using remote mode")
		}
	}

	// Validate guest store configuration if mode is guest
	if c.SessionMode == "guest" {
		if c.GuestDBPath == "" {
			errors = append(errors, "guest database path cannot be empty when using guest mode")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.GuestDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create guest database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
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

	// Validate worker configuration
	if c.ExportDebounce < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export debounce %v: must be at least 1 second", c.ExportDebounce))
	} else if c.ExportDebounce > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid export debounce %v: must be at most 1 hour", c.ExportDebounce))
	}

	// Validate unknown-type treatment
	if c.UnknownTypeTreatment != "treat_as_expense" && c.UnknownTypeTreatment != "ignore" {
		errors = append(errors, fmt.Sprintf("invalid unknown type treatment '%s': must be 'treat_as_expense' or 'ignore'", c.UnknownTypeTreatment))
	}

	// Return combined errors
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

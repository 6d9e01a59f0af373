// Package config provides environment configuration parsing and
// validation for the relay Lambdas.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultTimeoutSeconds is the per-attempt webhook POST timeout.
	DefaultTimeoutSeconds = 10
	// DefaultMaxAttempts is the total number of delivery attempts.
	DefaultMaxAttempts = 3
	// DefaultBackoffBaseMS is the initial delivery backoff in milliseconds.
	DefaultBackoffBaseMS = 1000
)

// ForwarderConfig holds configuration for the per-account forwarder.
type ForwarderConfig struct {
	CentralTopicARN string
}

// LoadForwarder reads forwarder configuration from the environment.
func LoadForwarder() *ForwarderConfig {
	return &ForwarderConfig{
		CentralTopicARN: os.Getenv("CENTRAL_TOPIC_ARN"),
	}
}

// Validate checks that all required configuration fields are set.
func (c *ForwarderConfig) Validate() error {
	if c.CentralTopicARN == "" {
		return fmt.Errorf("CENTRAL_TOPIC_ARN cannot be empty")
	}
	return nil
}

// ProcessorConfig holds configuration for the central processor.
type ProcessorConfig struct {
	WebhookSecretName string
	Region            string
	Timeout           time.Duration
	MaxAttempts       int
	BackoffBase       time.Duration
	// BodyLimit truncates the card body when positive. 0 disables.
	BodyLimit int
}

// LoadProcessor reads processor configuration from the environment.
// Invalid numeric values fall back to defaults with a warning rather
// than failing startup.
func LoadProcessor() *ProcessorConfig {
	return &ProcessorConfig{
		WebhookSecretName: os.Getenv("WEBHOOK_URL_SECRET_NAME"),
		Region:            os.Getenv("AWS_REGION"),
		Timeout:           time.Duration(intEnvOrDefault("TIMEOUT_SECONDS", DefaultTimeoutSeconds, 1)) * time.Second,
		MaxAttempts:       intEnvOrDefault("MAX_ATTEMPTS", DefaultMaxAttempts, 1),
		BackoffBase:       time.Duration(intEnvOrDefault("BACKOFF_BASE_MS", DefaultBackoffBaseMS, 1)) * time.Millisecond,
		BodyLimit:         intEnvOrDefault("BODY_LIMIT", 0, 0),
	}
}

// Validate checks that all required configuration fields are set and
// have valid values.
func (c *ProcessorConfig) Validate() error {
	if c.WebhookSecretName == "" {
		return fmt.Errorf("WEBHOOK_URL_SECRET_NAME cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("TIMEOUT_SECONDS must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be at least 1")
	}
	if c.BackoffBase <= 0 {
		return fmt.Errorf("BACKOFF_BASE_MS must be positive")
	}
	if c.BodyLimit < 0 {
		return fmt.Errorf("BODY_LIMIT cannot be negative")
	}
	return nil
}

// GetEnvOrDefault returns the environment variable value or a default
// if not set.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// LogLevel returns the slog level selected by LOG_LEVEL. Only DEBUG is
// recognised; everything else means Info.
func LogLevel() slog.Level {
	if os.Getenv("LOG_LEVEL") == "DEBUG" || os.Getenv("LOG_LEVEL") == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// intEnvOrDefault parses an integer environment variable, falling back
// to def when the variable is unset, unparsable, or below min.
func intEnvOrDefault(key string, def, min int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < min {
		slog.Warn("Invalid integer environment value, falling back to default",
			"key", key,
			"raw_value", raw,
			"default", def,
		)
		return def
	}

	return value
}

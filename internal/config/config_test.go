package config

import (
	"testing"
	"time"
)

func TestForwarderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ForwarderConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			config: ForwarderConfig{CentralTopicARN: "arn:aws:sns:eu-west-2:123456789012:alarms-central"},
		},
		{
			name:    "empty topic arn",
			config:  ForwarderConfig{},
			wantErr: true,
			errMsg:  "CENTRAL_TOPIC_ARN cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err.Error() != tt.errMsg {
				t.Errorf("Validate() error = %v, want %v", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestProcessorConfig_Validate(t *testing.T) {
	valid := ProcessorConfig{
		WebhookSecretName: "teams/webhook-url",
		Region:            "eu-west-2",
		Timeout:           10 * time.Second,
		MaxAttempts:       3,
		BackoffBase:       time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(*ProcessorConfig)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *ProcessorConfig) {},
		},
		{
			name:    "empty secret name",
			mutate:  func(c *ProcessorConfig) { c.WebhookSecretName = "" },
			wantErr: true,
			errMsg:  "WEBHOOK_URL_SECRET_NAME cannot be empty",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *ProcessorConfig) { c.Timeout = 0 },
			wantErr: true,
			errMsg:  "TIMEOUT_SECONDS must be positive",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *ProcessorConfig) { c.MaxAttempts = 0 },
			wantErr: true,
			errMsg:  "MAX_ATTEMPTS must be at least 1",
		},
		{
			name:    "zero backoff",
			mutate:  func(c *ProcessorConfig) { c.BackoffBase = 0 },
			wantErr: true,
			errMsg:  "BACKOFF_BASE_MS must be positive",
		},
		{
			name:    "negative body limit",
			mutate:  func(c *ProcessorConfig) { c.BodyLimit = -1 },
			wantErr: true,
			errMsg:  "BODY_LIMIT cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err.Error() != tt.errMsg {
				t.Errorf("Validate() error = %v, want %v", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestLoadProcessor_Defaults(t *testing.T) {
	t.Setenv("WEBHOOK_URL_SECRET_NAME", "teams/webhook-url")
	t.Setenv("TIMEOUT_SECONDS", "")
	t.Setenv("MAX_ATTEMPTS", "")
	t.Setenv("BACKOFF_BASE_MS", "")
	t.Setenv("BODY_LIMIT", "")

	cfg := LoadProcessor()

	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.BackoffBase != time.Second {
		t.Errorf("BackoffBase = %v, want 1s", cfg.BackoffBase)
	}
	if cfg.BodyLimit != 0 {
		t.Errorf("BodyLimit = %d, want 0", cfg.BodyLimit)
	}
}

func TestLoadProcessor_FallbackOnInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric timeout", key: "TIMEOUT_SECONDS", value: "ten"},
		{name: "zero timeout", key: "TIMEOUT_SECONDS", value: "0"},
		{name: "negative timeout", key: "TIMEOUT_SECONDS", value: "-5"},
		{name: "non-numeric attempts", key: "MAX_ATTEMPTS", value: "lots"},
		{name: "zero attempts", key: "MAX_ATTEMPTS", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WEBHOOK_URL_SECRET_NAME", "teams/webhook-url")
			t.Setenv(tt.key, tt.value)

			cfg := LoadProcessor()

			if cfg.Timeout != 10*time.Second {
				t.Errorf("Timeout = %v, want default 10s", cfg.Timeout)
			}
			if cfg.MaxAttempts != 3 {
				t.Errorf("MaxAttempts = %d, want default 3", cfg.MaxAttempts)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() after fallback error = %v, want nil", err)
			}
		})
	}
}

func TestLoadProcessor_Overrides(t *testing.T) {
	t.Setenv("WEBHOOK_URL_SECRET_NAME", "teams/webhook-url")
	t.Setenv("TIMEOUT_SECONDS", "30")
	t.Setenv("MAX_ATTEMPTS", "5")
	t.Setenv("BACKOFF_BASE_MS", "250")
	t.Setenv("BODY_LIMIT", "2000")

	cfg := LoadProcessor()

	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.MaxAttempts)
	}
	if cfg.BackoffBase != 250*time.Millisecond {
		t.Errorf("BackoffBase = %v, want 250ms", cfg.BackoffBase)
	}
	if cfg.BodyLimit != 2000 {
		t.Errorf("BodyLimit = %d, want 2000", cfg.BodyLimit)
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("RELAY_TEST_KEY", "set")
	if got := GetEnvOrDefault("RELAY_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("GetEnvOrDefault() = %q, want set", got)
	}
	if got := GetEnvOrDefault("RELAY_TEST_MISSING_KEY", "fallback"); got != "fallback" {
		t.Errorf("GetEnvOrDefault() = %q, want fallback", got)
	}
}

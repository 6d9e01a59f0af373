package delivery

import (
	"math"
	"math/rand"
	"time"
)

// Config defines delivery retry behavior.
type Config struct {
	MaxAttempts    int           // Total attempts including the first (minimum 1)
	InitialBackoff time.Duration // Backoff before the second attempt
	MaxBackoff     time.Duration // Cap on any single backoff
	BackoffFactor  float64       // Multiplier for exponential backoff
}

// DefaultConfig returns the default retry configuration: three
// attempts, one second base, doubling with jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}
}

// backoffFor calculates the backoff duration after the given completed
// attempt (0-based), with ±25% jitter to avoid synchronized retries.
func backoffFor(cfg Config, attempt int) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffFactor, float64(attempt))

	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}

	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoff += jitter

	return time.Duration(backoff)
}

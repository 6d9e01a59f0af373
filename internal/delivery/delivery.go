// Package delivery posts rendered cards to the Teams webhook with
// bounded retry and outcome classification.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/card"
)

var (
	// ErrRejected indicates the webhook refused the card with a
	// non-retryable 4xx. Likely a rotated or revoked webhook; retrying
	// the same request cannot succeed.
	ErrRejected = errors.New("webhook rejected delivery")

	// ErrFailed indicates every attempt failed transiently and the
	// retry budget is exhausted. Safe for upstream redelivery.
	ErrFailed = errors.New("webhook delivery failed")
)

// Doer issues HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Attempt records one POST for retry bookkeeping and logging. Not
// persisted.
type Attempt struct {
	Index      int
	StatusCode int // 0 on transport error
	Err        error
	Elapsed    time.Duration
}

// Outcome summarises one delivery.
type Outcome struct {
	Delivered bool
	Attempts  []Attempt
}

// SleepFunc waits for the given duration or until the context is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client posts cards to the webhook.
type Client struct {
	httpClient Doer
	cfg        Config
	sleep      SleepFunc
}

// NewClient creates a delivery client with the given retry
// configuration and per-attempt HTTP timeout.
func NewClient(cfg Config, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		sleep:      sleepContext,
	}
}

// NewClientWithDoer creates a delivery client with a custom HTTP doer
// and sleep function. Used by tests to run without network or waiting.
func NewClientWithDoer(cfg Config, doer Doer, sleep SleepFunc) *Client {
	if sleep == nil {
		sleep = sleepContext
	}
	return &Client{
		httpClient: doer,
		cfg:        cfg,
		sleep:      sleep,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Deliver posts the card to the webhook. Transport errors, 5xx, and
// 429 responses are retried with exponential backoff up to the
// configured attempt budget; any other non-2xx response is rejected
// immediately.
func (c *Client) Deliver(ctx context.Context, msg *card.Message, webhookURL string) (*Outcome, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("%w: webhook URL is required", ErrRejected)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal card: %w", err)
	}

	outcome := &Outcome{}
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		start := time.Now()
		status, postErr := c.post(ctx, webhookURL, body)
		outcome.Attempts = append(outcome.Attempts, Attempt{
			Index:      attempt,
			StatusCode: status,
			Err:        postErr,
			Elapsed:    time.Since(start),
		})

		if postErr == nil && status >= 200 && status < 300 {
			outcome.Delivered = true
			slog.Info("Delivered card to webhook",
				"status_code", status,
				"attempt", attempt,
			)
			return outcome, nil
		}

		if !retryable(status, postErr) {
			slog.Error("Webhook rejected card",
				"status_code", status,
				"webhook_url", maskURL(webhookURL),
			)
			return outcome, fmt.Errorf("%w: status %d", ErrRejected, status)
		}

		if attempt == c.cfg.MaxAttempts {
			break
		}

		backoff := backoffFor(c.cfg, attempt-1)
		slog.Warn("Delivery attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", c.cfg.MaxAttempts,
			"status_code", status,
			"backoff", backoff,
			"error", postErr,
		)
		if sleepErr := c.sleep(ctx, backoff); sleepErr != nil {
			return outcome, sleepErr
		}
	}

	last := outcome.Attempts[len(outcome.Attempts)-1]
	slog.Error("Delivery retries exhausted",
		"attempts", len(outcome.Attempts),
		"last_status_code", last.StatusCode,
		"last_error", last.Err,
		"webhook_url", maskURL(webhookURL),
	)
	return outcome, fmt.Errorf("%w after %d attempts", ErrFailed, len(outcome.Attempts))
}

// post issues one POST. Returns the status code, or 0 with an error on
// transport failure.
func (c *Client) post(ctx context.Context, webhookURL string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused across attempts.
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// retryable reports whether a response warrants another attempt:
// transport errors, 429, and 5xx.
func retryable(status int, err error) bool {
	if err != nil {
		return true
	}
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500
}

// maskURL masks the path of a webhook URL for logging; the path is the
// secret.
func maskURL(url string) string {
	if len(url) > 50 {
		return url[:30] + "..." + url[len(url)-10:]
	}
	return "***"
}

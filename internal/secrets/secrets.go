// Package secrets resolves the webhook credential from AWS Secrets
// Manager and caches it for the lifetime of the execution environment.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ErrSecretUnavailable indicates the webhook credential could not be
// retrieved or is unusable. Fatal for the current invocation; the
// upstream transport's redelivery policy may retry it.
var ErrSecretUnavailable = errors.New("webhook secret unavailable")

// Source fetches a secret value by name.
type Source interface {
	GetSecretValue(ctx context.Context, name string) (string, error)
}

// SecretsManagerAPI is the subset of the Secrets Manager client used
// by ManagerSource.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ManagerSource reads secrets from AWS Secrets Manager.
type ManagerSource struct {
	client SecretsManagerAPI
}

// NewManagerSource creates a new Secrets Manager source.
func NewManagerSource(client SecretsManagerAPI) *ManagerSource {
	return &ManagerSource{client: client}
}

// GetSecretValue fetches the secret string for the given name.
func (s *ManagerSource) GetSecretValue(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret value for %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", name)
	}
	return *out.SecretString, nil
}

// Resolver caches the webhook URL after the first successful fetch.
// The cache has no TTL and no invalidation: if the secret rotates,
// delivery fails until the execution environment is recycled. The
// Lambda runtime serializes invocations within one environment, so the
// mutex only guards against future concurrent use.
type Resolver struct {
	source Source
	name   string

	mu     sync.Mutex
	cached string
}

// NewResolver creates a resolver for the named secret. One resolver is
// constructed per execution environment and shared across invocations.
func NewResolver(source Source, name string) *Resolver {
	return &Resolver{
		source: source,
		name:   name,
	}
}

// Resolve returns the webhook URL, fetching from the secret store on
// first use and from the in-memory cache afterwards.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != "" {
		return r.cached, nil
	}
	return r.refresh(ctx)
}

// ForceRefresh discards the cached value and fetches again. An
// operational hook for when the secret is known to have rotated; the
// pipeline itself never calls it.
func (r *Resolver) ForceRefresh(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cached = ""
	return r.refresh(ctx)
}

func (r *Resolver) refresh(ctx context.Context) (string, error) {
	raw, err := r.source.GetSecretValue(ctx, r.name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSecretUnavailable, err)
	}

	webhookURL, err := extractWebhookURL(raw)
	if err != nil {
		return "", err
	}

	r.cached = webhookURL
	return webhookURL, nil
}

// extractWebhookURL handles both plain-string secrets and JSON object
// secrets keyed webhook_url, url, or value.
func extractWebhookURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)

	if strings.HasPrefix(value, "{") {
		var fields map[string]string
		if err := json.Unmarshal([]byte(value), &fields); err == nil {
			value = ""
			for _, key := range []string{"webhook_url", "url", "value"} {
				if fields[key] != "" {
					value = strings.TrimSpace(fields[key])
					break
				}
			}
		}
	}

	if value == "" {
		return "", fmt.Errorf("%w: secret does not contain a webhook URL", ErrSecretUnavailable)
	}
	if !isValidWebhookURL(value) {
		return "", fmt.Errorf("%w: webhook URL must be https with a hostname", ErrSecretUnavailable)
	}
	return value, nil
}

// isValidWebhookURL ensures the retrieved URL looks sane before it is
// ever POSTed to.
func isValidWebhookURL(candidate string) bool {
	parsed, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return parsed.Scheme == "https" && parsed.Host != ""
}

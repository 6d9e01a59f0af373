package main

import (
	"context"
	"log/slog"
	"os"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/config"
	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/delivery"
	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/metrics"
	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/secrets"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.LogLevel(),
	})))

	cfg := config.LoadProcessor()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		slog.Error("Failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Constructed once per execution environment: the resolver's
	// secret cache survives across invocations.
	resolver := secrets.NewResolver(
		secrets.NewManagerSource(secretsmanager.NewFromConfig(awsCfg)),
		cfg.WebhookSecretName,
	)

	deliveryCfg := delivery.DefaultConfig()
	deliveryCfg.MaxAttempts = cfg.MaxAttempts
	deliveryCfg.InitialBackoff = cfg.BackoffBase
	client := delivery.NewClient(deliveryCfg, cfg.Timeout)

	recorder := metrics.NewLogRecorder()
	p := newProcessor(cfg, resolver, client, recorder)

	slog.Info("Starting alarm processor",
		"secret_name", cfg.WebhookSecretName,
		"max_attempts", cfg.MaxAttempts,
		"timeout", cfg.Timeout,
	)

	lambda.Start(func(ctx context.Context, event lambdaevents.SNSEvent) error {
		defer recorder.Flush()
		return p.Handle(ctx, event)
	})
}

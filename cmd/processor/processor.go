package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/card"
	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/config"
	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/delivery"
	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/events"
	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/metrics"
)

// secretResolver resolves the webhook URL, caching it across
// invocations.
type secretResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// cardDeliverer posts a rendered card to the webhook.
type cardDeliverer interface {
	Deliver(ctx context.Context, msg *card.Message, webhookURL string) (*delivery.Outcome, error)
}

// processor holds the per-environment dependencies shared across
// invocations.
type processor struct {
	cfg       *config.ProcessorConfig
	resolver  secretResolver
	deliverer cardDeliverer
	metrics   metrics.Recorder
}

func newProcessor(cfg *config.ProcessorConfig, resolver secretResolver, deliverer cardDeliverer, recorder metrics.Recorder) *processor {
	return &processor{
		cfg:       cfg,
		resolver:  resolver,
		deliverer: deliverer,
		metrics:   recorder,
	}
}

// Handle processes every record in the SNS event. Permanent failures
// (malformed payload, webhook rejection) are logged and dropped:
// returning them would make an at-least-once transport redeliver a
// poison message until its retry policy exhausts. Transient failures
// (secret unavailable, delivery retries exhausted) fail the invocation
// so upstream redelivery applies.
func (p *processor) Handle(ctx context.Context, event lambdaevents.SNSEvent) error {
	if len(event.Records) == 0 {
		slog.Warn("SNS event did not contain any records")
		return nil
	}

	var failures []error
	for _, record := range event.Records {
		p.metrics.RecordReceived()

		messageID := record.SNS.MessageID
		if messageID == "" {
			messageID = uuid.NewString()
		}

		err := p.processRecord(ctx, []byte(record.SNS.Message), messageID)
		switch {
		case err == nil:
		case errors.Is(err, events.ErrMalformedPayload) || errors.Is(err, delivery.ErrRejected):
			slog.Error("Dropping notification, permanent failure",
				"message_id", messageID,
				"error", err,
			)
			p.metrics.RecordDropped()
		default:
			slog.Error("Failed to process notification",
				"message_id", messageID,
				"error", err,
			)
			p.metrics.RecordError()
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d notifications failed: %w",
			len(failures), len(event.Records), errors.Join(failures...))
	}
	return nil
}

// processRecord runs one notification through the pipeline: parse,
// transform, resolve the webhook, deliver. Strictly sequential; the
// only I/O is the secret fetch and the webhook POST.
func (p *processor) processRecord(ctx context.Context, body []byte, messageID string) error {
	alarm, err := events.Parse(body)
	if err != nil {
		return err
	}

	slog.Info("Processing alarm notification",
		"alarm_name", alarm.AlarmName,
		"alarm_state", alarm.NewStateValue,
		"account_id", alarm.AWSAccountID,
		"message_id", messageID,
	)

	c, err := card.Build(alarm, card.Options{
		BodyLimit: p.cfg.BodyLimit,
		Region:    p.cfg.Region,
	})
	if err != nil {
		return err
	}
	if !c.StateKnown {
		slog.Warn("Unknown alarm state, default styling applied",
			"alarm_state", alarm.NewStateValue,
			"message_id", messageID,
		)
	}

	webhookURL, err := p.resolver.Resolve(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	outcome, err := p.deliverer.Deliver(ctx, c.Message(), webhookURL)
	if err != nil {
		return err
	}
	p.metrics.RecordDelivered(time.Since(start))

	slog.Info("Alarm notification delivered",
		"alarm_name", alarm.AlarmName,
		"alarm_state", alarm.NewStateValue,
		"attempts", len(outcome.Attempts),
		"message_id", messageID,
	)
	return nil
}

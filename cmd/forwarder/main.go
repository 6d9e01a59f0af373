package main

import (
	"context"
	"log/slog"
	"os"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/config"
	"github.com/ukhsa-collaboration/devops-phe-alarms-lambdas/internal/forwarder"
)

// handler holds the per-environment forwarder shared across
// invocations.
type handler struct {
	forwarder *forwarder.Forwarder
}

// Handle republishes every record's message body unchanged to the
// central topic. Any publish failure fails the invocation so the
// inbound transport's redelivery policy applies.
func (h *handler) Handle(ctx context.Context, event lambdaevents.SNSEvent) error {
	if len(event.Records) == 0 {
		slog.Warn("SNS event did not contain any records")
		return nil
	}

	for _, record := range event.Records {
		if err := h.forwarder.Forward(ctx, []byte(record.SNS.Message)); err != nil {
			slog.Error("Failed to forward notification",
				"message_id", record.SNS.MessageID,
				"error", err,
			)
			return err
		}
		slog.Info("Forwarded notification", "message_id", record.SNS.MessageID)
	}

	return nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.LogLevel(),
	})))

	cfg := config.LoadForwarder()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		slog.Error("Failed to load AWS config", "error", err)
		os.Exit(1)
	}

	publisher := forwarder.NewSNSPublisher(sns.NewFromConfig(awsCfg))
	h := &handler{forwarder: forwarder.New(publisher, cfg.CentralTopicARN)}

	slog.Info("Starting alarm forwarder", "central_topic_arn", cfg.CentralTopicARN)
	lambda.Start(h.Handle)
}

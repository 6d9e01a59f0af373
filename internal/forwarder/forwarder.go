// Package forwarder republishes locally delivered alarm notifications
// onto the centralized topic. It exists solely to cross the trust
// boundary: source accounts publish locally and the forwarder relays,
// so no source account needs cross-account publish permission.
package forwarder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Publisher publishes a raw message body to a topic.
type Publisher interface {
	Publish(ctx context.Context, topicARN string, body []byte) error
}

// SNSAPI is the subset of the SNS client used by SNSPublisher.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes through the AWS SNS API.
type SNSPublisher struct {
	client SNSAPI
}

// NewSNSPublisher creates a new SNS-backed publisher.
func NewSNSPublisher(client SNSAPI) *SNSPublisher {
	return &SNSPublisher{client: client}
}

// Publish sends the body to the given topic and returns once the
// publish call acknowledges.
func (p *SNSPublisher) Publish(ctx context.Context, topicARN string, body []byte) error {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topicARN, err)
	}
	return nil
}

// Forwarder republishes notification bodies unchanged to the central
// topic.
type Forwarder struct {
	publisher Publisher
	topicARN  string
}

// New creates a forwarder targeting the given central topic.
func New(publisher Publisher, topicARN string) *Forwarder {
	return &Forwarder{
		publisher: publisher,
		topicARN:  topicARN,
	}
}

// Forward republishes the body byte-for-byte. The content is never
// inspected, so malformed payloads cannot fail here; only a publish
// failure does, and the inbound transport's redelivery policy then
// governs retry.
func (f *Forwarder) Forward(ctx context.Context, body []byte) error {
	if err := f.publisher.Publish(ctx, f.topicARN, body); err != nil {
		return fmt.Errorf("failed to forward notification: %w", err)
	}

	slog.Debug("Forwarded notification",
		"topic_arn", f.topicARN,
		"bytes", len(body),
	)
	return nil
}

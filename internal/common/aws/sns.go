// internal/common/aws/sns.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSPublisher publishes operator alerts to the escalation topic.
type SNSPublisher struct {
	client   *sns.Client
	topicARN string
}

func NewSNSPublisher(ctx context.Context, region, topicARN string) (*SNSPublisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSPublisher{client: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

// PublishAlert sends a subject/message pair to the operator topic.
func (s *SNSPublisher) PublishAlert(ctx context.Context, subject, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &s.topicARN,
		Subject:  &subject,
		Message:  &message,
	})
	return err
}

package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSPublisher is a minimal interface for publishing messages to SNS.
type SNSPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte) error
}

// SMSSender delivers a text message to a single phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}

// SNSClient implements SNSPublisher and SMSSender.
type SNSClient struct {
	client   *sns.Client
	senderID string
}

func NewSNSClient(cfg sdkaws.Config, senderID string) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg), senderID: senderID}
}

// Publish publishes a raw message to the given SNS topic ARN.
func (s *SNSClient) Publish(ctx context.Context, topicArn string, message []byte) error {
	if topicArn == "" {
		return fmt.Errorf("empty topicArn")
	}
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: sdkaws.String(topicArn),
		Message:  sdkaws.String(string(message)),
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", topicArn, err)
	}
	return nil
}

// SendSMS publishes a transactional SMS directly to phone.
func (s *SNSClient) SendSMS(ctx context.Context, phone, message string) error {
	if phone == "" {
		return fmt.Errorf("empty phone number")
	}
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String(s.senderID),
		}
	}
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       sdkaws.String(phone),
		Message:           sdkaws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sns sms failed: %w", err)
	}
	return nil
}

package sms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Publisher is the subset of the SNS API used to deliver a single SMS.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS sends SMS through AWS SNS direct-to-phone publishing.
type SNS struct {
	publisher Publisher
}

// NewSNS wraps an existing publisher, usually an *sns.Client.
func NewSNS(publisher Publisher) *SNS {
	return &SNS{publisher: publisher}
}

// NewSNSFromRegion loads the default AWS credential chain for region and
// returns an SNS sender backed by a real client.
func NewSNSFromRegion(ctx context.Context, region string) (*SNS, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("sns: load aws config: %w", err)
	}

	return NewSNS(sns.NewFromConfig(cfg)), nil
}

// Send publishes body to the phone number.
func (s *SNS) Send(ctx context.Context, to, body string) (*SendResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	out, err := s.publisher.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(body),
	})
	if err != nil {
		return nil, fmt.Errorf("sns: publish: %w", err)
	}

	return &SendResult{MessageID: aws.ToString(out.MessageId), Status: "sent"}, nil
}

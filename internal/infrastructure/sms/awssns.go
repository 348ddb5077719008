package sms

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
)

// SNSSender delivers SMS through AWS SNS. Available only when a region is
// configured and the SNS client was constructed.
type SNSSender struct {
	client *sns.Client
	region string
}

// NewSNSSender builds an SNS-backed sender. When no region is configured the
// sender is constructed anyway but reports unavailable, so the router can
// still register it and fall through.
func NewSNSSender(cfg config.SMSSettings) (*SNSSender, error) {
	s := &SNSSender{region: cfg.SNSRegion}
	if cfg.SNSRegion == "" {
		return s, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	s.client = sns.NewFromConfig(awsCfg)
	return s, nil
}

func (s *SNSSender) Name() domain.SMSProvider { return domain.ProviderAwsSns }

func (s *SNSSender) Available() bool { return s.region != "" && s.client != nil }

func (s *SNSSender) SendOTP(ctx context.Context, to, body string) error {
	if !s.Available() {
		return domain.ErrUnavailable
	}
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &body,
	})
	return err
}

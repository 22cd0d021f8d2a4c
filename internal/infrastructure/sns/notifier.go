package sns

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/email-otp-api/internal/config"
)

// Publisher is the subset of *sns.Client the notifier uses.
type Publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier publishes OTP delivery failures to an SNS topic for operators.
type Notifier struct {
	client   Publisher
	topicARN string
}

func NewNotifier(ctx context.Context, cfg *config.Config) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return NewNotifierWithClient(sns.NewFromConfig(awsCfg), cfg.SNSAlertTopicARN), nil
}

func NewNotifierWithClient(client Publisher, topicARN string) *Notifier {
	return &Notifier{client: client, topicARN: topicARN}
}

// DeliveryFailed publishes an alert for a code that was stored but not delivered.
// The address is masked; the code itself is never included.
func (n *Notifier) DeliveryFailed(ctx context.Context, issuanceID, email string, cause error) error {
	msg := fmt.Sprintf("OTP delivery failed\nissuance: %s\nrecipient: %s\nreason: %v", issuanceID, MaskEmail(email), cause)
	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String("OTP delivery failure"),
		Message:  aws.String(msg),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

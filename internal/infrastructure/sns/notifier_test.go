package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*sns.PublishOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestNotifier_DeliveryFailed(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return *in.TopicArn == "arn:aws:sns:us-east-1:123:otp-alerts" &&
			assert.ObjectsAreEqual("OTP delivery failed\nissuance: 01J\nrecipient: a***@b.com\nreason: smtp down", *in.Message)
	})).Return(&sns.PublishOutput{}, nil)

	n := NewNotifierWithClient(pub, "arn:aws:sns:us-east-1:123:otp-alerts")
	require.NoError(t, n.DeliveryFailed(context.Background(), "01J", "alice@b.com", errors.New("smtp down")))
	pub.AssertExpectations(t)
}

func TestNotifier_PublishError(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))

	n := NewNotifierWithClient(pub, "arn")
	err := n.DeliveryFailed(context.Background(), "01J", "a@b.com", errors.New("x"))
	assert.ErrorContains(t, err, "sns publish: denied")
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***@b.com", MaskEmail("alice@b.com"))
	assert.Equal(t, "***", MaskEmail("@b.com"))
	assert.Equal(t, "***", MaskEmail("nope"))
}

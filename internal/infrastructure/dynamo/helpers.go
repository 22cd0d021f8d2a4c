package dynamo

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/email-otp-api/internal/domain"
)

const (
	attrEmail = "email"
	attrID    = "id"
	attrTTL   = "ttl"

	tableWaitTimeout = 2 * time.Minute
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// pendingCodeItem is the stored shape of a domain.PendingCode.
// ExpiresAt keeps millisecond precision; TTL is the coarser DynamoDB
// expiry (unix seconds) and sits one retention window later.
type pendingCodeItem struct {
	Email     string `dynamodbav:"email"`
	ID        string `dynamodbav:"id"`
	Code      string `dynamodbav:"code"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
	TTL       int64  `dynamodbav:"ttl"`
}

func toItem(p *domain.PendingCode, retention time.Duration) pendingCodeItem {
	return pendingCodeItem{
		Email:     p.Email,
		ID:        p.ID,
		Code:      p.Code,
		ExpiresAt: p.ExpiresAt.UnixMilli(),
		TTL:       p.ExpiresAt.Add(retention).Unix(),
	}
}

func (it pendingCodeItem) toDomain() *domain.PendingCode {
	return &domain.PendingCode{
		ID:        it.ID,
		Email:     it.Email,
		Code:      it.Code,
		ExpiresAt: time.UnixMilli(it.ExpiresAt),
	}
}

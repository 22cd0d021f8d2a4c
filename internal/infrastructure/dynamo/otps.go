package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/email-otp-api/internal/domain"
)

// API is the subset of *dynamodb.Client the store uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// OTPRepo stores pending codes keyed by email.
// PK: email. DynamoDB TTL on "ttl" reclaims rows after the retention window.
type OTPRepo struct {
	client    API
	tableName string
	retention time.Duration
}

// NewOTPRepo builds the repo. retention <= 0 defaults to domain.CodeTTL.
func NewOTPRepo(client API, tableName string, retention time.Duration) *OTPRepo {
	if retention <= 0 {
		retention = domain.CodeTTL
	}
	return &OTPRepo{client: client, tableName: tableName, retention: retention}
}

func (r *OTPRepo) Put(ctx context.Context, p *domain.PendingCode) error {
	item, err := attributevalue.MarshalMap(toItem(p, r.retention))
	if err != nil {
		return fmt.Errorf("marshal pending code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put pending code: %w", err)
	}
	return nil
}

func (r *OTPRepo) Get(ctx context.Context, email string) (*domain.PendingCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get pending code: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("pending code: %w", domain.ErrNotFound)
	}
	var it pendingCodeItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal pending code: %w", err)
	}
	return it.toDomain(), nil
}

func (r *OTPRepo) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrEmail, email),
	})
	if err != nil {
		return fmt.Errorf("delete pending code: %w", err)
	}
	return nil
}

// Consume deletes the row for email only while its id attribute equals id.
// A failed condition means another caller consumed or replaced the code.
func (r *OTPRepo) Consume(ctx context.Context, email, id string) (bool, error) {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(attrEmail, email),
		ConditionExpression:      aws.String("#id = :id"),
		ExpressionAttributeNames: map[string]string{"#id": attrID},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("consume pending code: %w", err)
	}
	return true, nil
}

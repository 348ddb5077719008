package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/marketplace-api/internal/domain"
)

// OTPRepo provides typed DynamoDB operations for the user_otps table.
// PK: otp_id. GSI phone-index: hash phone, range created_at (unix seconds).
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, o *domain.UserOTP) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// LatestUnverified returns the most recently created unverified passcode for
// (phone, purpose), or ErrNotFound.
func (r *OTPRepo) LatestUnverified(ctx context.Context, phone string, purpose domain.OTPPurpose) (*domain.UserOTP, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("phone-index"),
		KeyConditionExpression: aws.String("phone = :p"),
		FilterExpression:       aws.String("purpose = :purpose AND verified = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":       &types.AttributeValueMemberS{Value: phone},
			":purpose": &types.AttributeValueMemberS{Value: string(purpose)},
			":f":       &types.AttributeValueMemberBOOL{Value: false},
		},
		ScanIndexForward: aws.Bool(false), // newest first
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var o domain.UserOTP
	if err := attributevalue.UnmarshalMap(out.Items[0], &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CountCreatedSince counts passcodes created for phone after the given
// instant, regardless of purpose. Used for the per-phone rate limit.
func (r *OTPRepo) CountCreatedSince(ctx context.Context, phone string, since time.Time) (int, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("phone-index"),
		KeyConditionExpression: aws.String("phone = :p AND created_at > :since"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":     &types.AttributeValueMemberS{Value: phone},
			":since": &types.AttributeValueMemberN{Value: strconv.FormatInt(since.Unix(), 10)},
		},
		Select: types.SelectCount,
	})
	if err != nil {
		return 0, err
	}
	return int(out.Count), nil
}

// DeleteUnverified removes every unverified passcode for (phone, purpose).
// Called before inserting a fresh one so codes supersede instead of
// accumulating.
func (r *OTPRepo) DeleteUnverified(ctx context.Context, phone string, purpose domain.OTPPurpose) error {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("phone-index"),
		KeyConditionExpression: aws.String("phone = :p"),
		FilterExpression:       aws.String("purpose = :purpose AND verified = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":       &types.AttributeValueMemberS{Value: phone},
			":purpose": &types.AttributeValueMemberS{Value: string(purpose)},
			":f":       &types.AttributeValueMemberBOOL{Value: false},
		},
		ProjectionExpression: aws.String("otp_id"),
	})
	if err != nil {
		return err
	}
	var firstErr error
	for _, item := range out.Items {
		idAttr, ok := item["otp_id"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if err := r.delete(ctx, idAttr.Value); err != nil {
			slog.Warn("failed to delete superseded otp", "otp_id", idAttr.Value, "phone", phone, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// RecordProvider stamps which sender ultimately delivered the passcode.
func (r *OTPRepo) RecordProvider(ctx context.Context, otpID string, provider domain.SMSProvider) error {
	return r.update(ctx, otpID, map[string]interface{}{
		fieldProvider: string(provider),
	})
}

// RecordAttempt persists the consumed-attempt counter after a failed check.
func (r *OTPRepo) RecordAttempt(ctx context.Context, otpID string, count int) error {
	return r.update(ctx, otpID, map[string]interface{}{
		fieldAttemptCount: count,
	})
}

// MarkVerified finalizes a successfully checked passcode.
func (r *OTPRepo) MarkVerified(ctx context.Context, otpID string, count int, at time.Time) error {
	return r.update(ctx, otpID, map[string]interface{}{
		fieldAttemptCount: count,
		fieldVerified:     true,
		fieldVerifiedAt:   at.UTC().Format(time.RFC3339),
	})
}

func (r *OTPRepo) update(ctx context.Context, otpID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("otp_id", otpID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// DeleteExpiredUnverified hard-deletes every unverified passcode whose expiry
// is in the past and returns how many were removed. Runs from the cleanup
// sweeper, not from request handlers.
func (r *OTPRepo) DeleteExpiredUnverified(ctx context.Context, now time.Time) (int, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("expires_at < :now AND verified = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
		},
		ProjectionExpression: aws.String("otp_id"),
	})
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, item := range out.Items {
		idAttr, ok := item["otp_id"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if err := r.delete(ctx, idAttr.Value); err != nil {
			slog.Warn("failed to delete expired otp", "otp_id", idAttr.Value, "err", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

func (r *OTPRepo) delete(ctx context.Context, otpID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("otp_id", otpID),
	})
	return err
}

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

// RefreshTokenRepo provides typed DynamoDB operations for the refresh_tokens
// table. PK: token_id. GSI token-index on the opaque token value,
// GSI user_id-index for bulk revocation.
type RefreshTokenRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRefreshTokenRepo(client *dynamodb.Client, tableName string) *RefreshTokenRepo {
	return &RefreshTokenRepo{client: client, tableName: tableName}
}

func (r *RefreshTokenRepo) Put(ctx context.Context, t *domain.RefreshToken) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal refresh token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// GetByToken looks up a refresh token by its opaque value via the token-index
// GSI. Token values are unique, so at most one item matches.
func (r *RefreshTokenRepo) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("token-index"),
		KeyConditionExpression: aws.String("#t = :t"),
		ExpressionAttributeNames: map[string]string{
			"#t": "token",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: token},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("refresh token not found: %w", domain.ErrNotFound)
	}
	var t domain.RefreshToken
	if err := attributevalue.UnmarshalMap(out.Items[0], &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Revoke sets the revocation time on a token record.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, tokenID string, at time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldRevokedAt: at.UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("token_id", tokenID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// ListActiveByUser returns every non-revoked token owned by the user via the
// user_id-index GSI. Expired tokens are included; callers that care filter
// themselves.
func (r *RefreshTokenRepo) ListActiveByUser(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("attribute_not_exists(revoked_at) OR revoked_at = :null"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid":  &types.AttributeValueMemberS{Value: userID},
			":null": &types.AttributeValueMemberNULL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var tokens []domain.RefreshToken
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteExpired hard-deletes every token past its expiry and returns how many
// were removed. Runs from the cleanup sweeper.
func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("expires_at < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
		ProjectionExpression: aws.String("token_id"),
	})
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, item := range out.Items {
		idAttr, ok := item["token_id"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       strKey("token_id", idAttr.Value),
		}); err != nil {
			slog.Warn("failed to delete expired refresh token", "token_id", idAttr.Value, "err", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

package dynamo

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/marketplace-api/internal/domain"
)

// ListingRepo provides read-only DynamoDB access to the vendor_listings
// table. Listing writes belong to the catalog service, not this one.
type ListingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewListingRepo(client *dynamodb.Client, tableName string) *ListingRepo {
	return &ListingRepo{client: client, tableName: tableName}
}

func (r *ListingRepo) Get(ctx context.Context, listingID string) (*domain.VendorListing, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("listing_id", listingID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("listing not found: %w", domain.ErrNotFound)
	}
	var l domain.VendorListing
	if err := attributevalue.UnmarshalMap(out.Item, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// ScanPage returns a page of active listings.
// cursor is a base64-encoded listing_id used as ExclusiveStartKey.
// Returns the items, a next cursor (empty string when no more pages), and any error.
func (r *ListingRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.VendorListing, string, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("is_active = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
		Limit: aws.Int32(limit),
	}
	if cursor != "" {
		listingID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("listing_id", listingID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var listings []domain.VendorListing
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &listings); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["listing_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return listings, nextCursor, nil
}

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/marketplace-api/internal/domain"
)

// KycDocumentRepo provides typed DynamoDB operations for the kyc_documents
// table. PK: document_id. GSI user_id-index for per-user listing.
type KycDocumentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewKycDocumentRepo(client *dynamodb.Client, tableName string) *KycDocumentRepo {
	return &KycDocumentRepo{client: client, tableName: tableName}
}

func (r *KycDocumentRepo) Put(ctx context.Context, d *domain.KycDocument) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal kyc document: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *KycDocumentRepo) Get(ctx context.Context, documentID string) (*domain.KycDocument, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("document_id", documentID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("kyc document not found: %w", domain.ErrNotFound)
	}
	var d domain.KycDocument
	if err := attributevalue.UnmarshalMap(out.Item, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *KycDocumentRepo) ListByUser(ctx context.Context, userID string) ([]domain.KycDocument, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var docs []domain.KycDocument
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

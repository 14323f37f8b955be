// Package dynamo provides the durable, authoritative side of the history
// store on DynamoDB.
package dynamo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Phicks-debug/daisii/internal/domain/chat"
	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

const (
	attrUserID         = "user_id"
	attrConversationID = "conversation_id"
	attrMessages       = "messages"
	attrUpdatedAt      = "updated_at"
)

// HistoryRepository stores one item per (user, conversation) with the
// message sequence as a JSON document attribute. The whole sequence is
// rewritten on every put.
type HistoryRepository struct {
	client *dynamodb.Client
	table  string
}

var _ chat.HistoryRepository = (*HistoryRepository)(nil)

// NewClient builds a DynamoDB client for the given region using the
// default credential chain.
func NewClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// NewHistoryRepository constructs a repository over the given table.
func NewHistoryRepository(client *dynamodb.Client, table string) *HistoryRepository {
	return &HistoryRepository{client: client, table: table}
}

// GetHistory reads the stored history, returning (nil, nil) when no
// record exists for the key.
func (r *HistoryRepository) GetHistory(ctx context.Context, userID, conversationID string) (*chat.History, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			attrUserID:         &types.AttributeValueMemberS{Value: userID},
			attrConversationID: &types.AttributeValueMemberS{Value: conversationID},
		},
	})
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabase, "failed to read chat history", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	raw, ok := result.Item[attrMessages].(*types.AttributeValueMemberS)
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabase, "chat history item missing messages attribute", nil)
	}

	var messages []chat.Message
	if err := json.Unmarshal([]byte(raw.Value), &messages); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabase, "failed to decode stored chat history", err)
	}

	return &chat.History{
		ConversationID: conversationID,
		UserID:         userID,
		Messages:       messages,
	}, nil
}

// PutHistory rewrites the history item for its key.
func (r *HistoryRepository) PutHistory(ctx context.Context, history *chat.History) error {
	encoded, err := json.Marshal(history.Messages)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabase, "failed to encode chat history", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item: map[string]types.AttributeValue{
			attrUserID:         &types.AttributeValueMemberS{Value: history.UserID},
			attrConversationID: &types.AttributeValueMemberS{Value: history.ConversationID},
			attrMessages:       &types.AttributeValueMemberS{Value: string(encoded)},
			attrUpdatedAt:      &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabase, "failed to write chat history", err)
	}
	return nil
}

// EnsureTable idempotently creates the history table. An already
// existing table is reused without error.
func (r *HistoryRepository) EnsureTable(ctx context.Context) error {
	_, err := r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrUserID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrConversationID), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrUserID), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(attrConversationID), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabase, "failed to provision chat history table", err)
	}
	return nil
}

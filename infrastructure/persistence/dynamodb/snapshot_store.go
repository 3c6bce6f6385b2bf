// Package dynamodb stores saved maps in a single DynamoDB table keyed by
// owner.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	pkgerrors "mindmap-backend/pkg/errors"
	"mindmap-backend/pkg/utils"
)

const (
	entityTypeMap = "MAP"
	mapKeyPrefix  = "MAP#"
)

// Client is the part of the DynamoDB API the store uses
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// mapItem represents the DynamoDB item structure for a saved map
type mapItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	MapID      string `dynamodbav:"MapID"`
	OwnerID    string `dynamodbav:"OwnerID"`
	Title      string `dynamodbav:"Title"`
	Data       []byte `dynamodbav:"Data,omitempty"`
	Thumbnail  string `dynamodbav:"Thumbnail,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// SnapshotStore implements ports.SnapshotStore on DynamoDB
type SnapshotStore struct {
	client    Client
	tableName string
	logger    *zap.Logger
	now       func() time.Time
}

// NewSnapshotStore creates a store over tableName
func NewSnapshotStore(client Client, tableName string, logger *zap.Logger) *SnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
		now:       time.Now,
	}
}

func ownerKey(ownerID string) string { return fmt.Sprintf("USER#%s", ownerID) }
func mapKey(id string) string        { return mapKeyPrefix + id }

func (s *SnapshotStore) key(ownerID, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: ownerKey(ownerID)},
		"SK": &types.AttributeValueMemberS{Value: mapKey(id)},
	}
}

// Save creates or updates a record. An id with no stored item creates a
// new record with a fresh id.
func (s *SnapshotStore) Save(ctx context.Context, ownerID string, input ports.SaveMapInput) (*ports.MapRecord, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewUnauthorizedError("owner is required")
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	item := mapItem{
		PK:         ownerKey(ownerID),
		EntityType: entityTypeMap,
		OwnerID:    ownerID,
		Title:      input.Title,
		Data:       input.Data,
		Thumbnail:  input.Thumbnail,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var existing *mapItem
	if input.ID != "" {
		found, err := s.get(ctx, ownerID, input.ID)
		if err != nil && !pkgerrors.IsNotFound(err) {
			return nil, err
		}
		existing = found
	}

	if existing != nil {
		item.MapID = existing.MapID
		item.CreatedAt = existing.CreatedAt
		if item.Thumbnail == "" {
			item.Thumbnail = existing.Thumbnail
		}
	} else {
		item.MapID = uuid.New().String()
	}
	item.SK = mapKey(item.MapID)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("marshal map", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		s.logger.Error("Failed to save map",
			zap.String("owner_id", ownerID),
			zap.String("map_id", item.MapID),
			zap.Error(err),
		)
		return nil, pkgerrors.NewDatabaseError("save map", err)
	}

	s.logger.Debug("Map saved",
		zap.String("owner_id", ownerID),
		zap.String("map_id", item.MapID),
		zap.Bool("created", existing == nil),
		zap.Int("bytes", len(item.Data)),
	)
	return item.toRecord(), nil
}

// Load returns a record with its data verbatim
func (s *SnapshotStore) Load(ctx context.Context, ownerID, id string) (*ports.MapRecord, error) {
	item, err := s.get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return item.toRecord(), nil
}

func (s *SnapshotStore) get(ctx context.Context, ownerID, id string) (*mapItem, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(ownerID, id),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load map", err)
	}
	if len(result.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("map")
	}

	var item mapItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal map", err)
	}
	return &item, nil
}

// List returns the owner's maps, most recently updated first. Data is
// not projected.
func (s *SnapshotStore) List(ctx context.Context, ownerID string) ([]ports.MapSummary, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(ownerKey(ownerID))).
		And(expression.Key("SK").BeginsWith(mapKeyPrefix))
	projection := expression.NamesList(
		expression.Name("MapID"),
		expression.Name("Title"),
		expression.Name("Thumbnail"),
		expression.Name("CreatedAt"),
		expression.Name("UpdatedAt"),
	)
	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithProjection(projection).
		Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build list query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var summaries []ports.MapSummary
	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list maps", err)
		}

		var items []mapItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal maps", err)
		}
		for i := range items {
			record := items[i].toRecord()
			summaries = append(summaries, ports.MapSummary{
				ID:        record.ID,
				Title:     record.Title,
				Thumbnail: record.Thumbnail,
				CreatedAt: record.CreatedAt,
				UpdatedAt: record.UpdatedAt,
			})
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// Delete removes a record. Deleting a missing record is NOT_FOUND.
func (s *SnapshotStore) Delete(ctx context.Context, ownerID, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 s.key(ownerID, id),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewNotFoundError("map")
		}
		return pkgerrors.NewDatabaseError("delete map", err)
	}
	return nil
}

func (item *mapItem) toRecord() *ports.MapRecord {
	id := item.MapID
	if id == "" {
		id = strings.TrimPrefix(item.SK, mapKeyPrefix)
	}
	record := &ports.MapRecord{
		ID:        id,
		OwnerID:   item.OwnerID,
		Title:     item.Title,
		Data:      item.Data,
		Thumbnail: item.Thumbnail,
	}
	// Timestamps written by this store always parse
	record.CreatedAt, _ = utils.ParseRFC3339(item.CreatedAt)
	record.UpdatedAt, _ = utils.ParseRFC3339(item.UpdatedAt)
	return record
}

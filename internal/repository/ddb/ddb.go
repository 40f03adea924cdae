// Package ddb implements the repository interface using AWS DynamoDB.
// Items live in a single table keyed by PK "TODO#<id>" and SK "METADATA".
package ddb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"todosync/internal/domain/todo"
	appErrors "todosync/pkg/errors"
)

const (
	pkPrefix   = "TODO#"
	metadataSK = "METADATA"

	// DynamoDB caps BatchWriteItem at 25 requests.
	batchWriteLimit = 25
)

// ddbTodo represents the structure of a todo item in DynamoDB.
type ddbTodo struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	TodoID    string `dynamodbav:"TodoID"`
	Text      string `dynamodbav:"Text"`
	Completed bool   `dynamodbav:"Completed"`
	CreatedAt string `dynamodbav:"CreatedAt"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// Repository is the DynamoDB-backed item store.
type Repository struct {
	dbClient  *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewRepository creates a DynamoDB repository against the given table.
func NewRepository(dbClient *dynamodb.Client, tableName string, logger *zap.Logger) *Repository {
	return &Repository{
		dbClient:  dbClient,
		tableName: tableName,
		logger:    logger,
	}
}

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pkPrefix + id},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func toRecord(item todo.Item) ddbTodo {
	return ddbTodo{
		PK:        pkPrefix + item.ID,
		SK:        metadataSK,
		TodoID:    item.ID,
		Text:      item.Text,
		Completed: item.Completed,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromRecord(record ddbTodo) (todo.Item, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, record.CreatedAt)
	if err != nil {
		return todo.Item{}, appErrors.Wrap(err, "invalid CreatedAt on item "+record.TodoID)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, record.UpdatedAt)
	if err != nil {
		return todo.Item{}, appErrors.Wrap(err, "invalid UpdatedAt on item "+record.TodoID)
	}
	return todo.Item{
		ID:        record.TodoID,
		Text:      record.Text,
		Completed: record.Completed,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// FindAll scans the table for item metadata rows, oldest first.
func (r *Repository) FindAll(ctx context.Context) ([]todo.Item, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("SK").Equal(expression.Value(metadataSK))).
		Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build scan expression")
	}

	var items []todo.Item
	var startKey map[string]types.AttributeValue
	for {
		result, err := r.dbClient.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			r.logger.Error("scan failed",
				zap.String("table", r.tableName),
				zap.String("error_code", serviceErrorCode(err)),
				zap.Error(err))
			return nil, appErrors.Wrap(err, "failed to scan todos")
		}

		var records []ddbTodo
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &records); err != nil {
			return nil, appErrors.Wrap(err, "failed to unmarshal todo items")
		}
		for _, record := range records {
			item, err := fromRecord(record)
			if err != nil {
				r.logger.Warn("skipping malformed item",
					zap.String("todo_id", record.TodoID),
					zap.Error(err))
				continue
			}
			items = append(items, item)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	return items, nil
}

// FindByID retrieves a single item's metadata row.
func (r *Repository) FindByID(ctx context.Context, id string) (todo.Item, error) {
	result, err := r.dbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       itemKey(id),
	})
	if err != nil {
		return todo.Item{}, appErrors.Wrap(err, "failed to get todo "+id)
	}
	if result.Item == nil {
		return todo.Item{}, appErrors.NewNotFound("todo not found: " + id)
	}

	var record ddbTodo
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return todo.Item{}, appErrors.Wrap(err, "failed to unmarshal todo "+id)
	}
	return fromRecord(record)
}

// Save stores a new item, failing if the id already exists.
func (r *Repository) Save(ctx context.Context, item todo.Item) error {
	record, err := attributevalue.MarshalMap(toRecord(item))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal todo item")
	}

	_, err = r.dbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                record,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return appErrors.NewValidation("todo already exists: " + item.ID)
		}
		return appErrors.Wrap(err, "failed to save todo "+item.ID)
	}
	return nil
}

// Update replaces an existing item, failing if it does not exist.
func (r *Repository) Update(ctx context.Context, item todo.Item) error {
	record, err := attributevalue.MarshalMap(toRecord(item))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal todo item")
	}

	_, err = r.dbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                record,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return appErrors.NewNotFound("todo not found: " + item.ID)
		}
		return appErrors.Wrap(err, "failed to update todo "+item.ID)
	}
	return nil
}

// Delete removes the item with the given id, failing if it does not exist.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.dbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 itemKey(id),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return appErrors.NewNotFound("todo not found: " + id)
		}
		return appErrors.Wrap(err, "failed to delete todo "+id)
	}
	return nil
}

// DeleteCompleted scans for completed items and batch deletes them.
func (r *Repository) DeleteCompleted(ctx context.Context) (int, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("SK").Equal(expression.Value(metadataSK)).
			And(expression.Name("Completed").Equal(expression.Value(true)))).
		WithProjection(expression.NamesList(expression.Name("PK"), expression.Name("SK"))).
		Build()
	if err != nil {
		return 0, appErrors.Wrap(err, "failed to build scan expression")
	}

	var keys []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		result, err := r.dbClient.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return 0, appErrors.Wrap(err, "failed to scan completed todos")
		}
		keys = append(keys, result.Items...)

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	if len(keys) == 0 {
		return 0, nil
	}

	writeRequests := make([]types.WriteRequest, 0, len(keys))
	for _, key := range keys {
		writeRequests = append(writeRequests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: key},
		})
	}

	for i := 0; i < len(writeRequests); i += batchWriteLimit {
		end := i + batchWriteLimit
		if end > len(writeRequests) {
			end = len(writeRequests)
		}

		batch := writeRequests[i:end]
		// Throttling can leave unprocessed entries; retry until drained
		// so the reported count matches what was actually deleted.
		for attempt := 0; len(batch) > 0; attempt++ {
			if attempt >= 3 {
				return 0, appErrors.NewServer(fmt.Sprintf("gave up deleting %d completed todos", len(batch)))
			}
			result, err := r.dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{r.tableName: batch},
			})
			if err != nil {
				return 0, appErrors.Wrap(err, "failed to batch delete completed todos")
			}
			batch = result.UnprocessedItems[r.tableName]
		}
	}

	r.logger.Info("cleared completed todos", zap.Int("count", len(keys)))
	return len(keys), nil
}

// Ping verifies the table exists and is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	_, err := r.dbClient.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return appErrors.NewNetwork("dynamodb unreachable: "+serviceErrorCode(err), err)
	}
	return nil
}

// serviceErrorCode extracts the AWS error code for logging.
func serviceErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return "unknown"
}

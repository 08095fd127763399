package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"todo_api/internal/models"
)

// DynamoAPI 是 repository 實際用到的 DynamoDB 操作，*dynamodb.Client 滿足此介面
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type dynamoTodoRepository struct {
	client    DynamoAPI
	tableName string
}

func NewDynamoTodoRepository(client DynamoAPI, tableName string) TodoRepository {
	return &dynamoTodoRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *dynamoTodoRepository) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// Create 無條件寫入，相同 id 會直接覆蓋
func (r *dynamoTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	item, err := attributevalue.MarshalMap(todo)
	if err != nil {
		return fmt.Errorf("failed to marshal todo: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put todo: %w", err)
	}
	return nil
}

// FindAll 掃描整個資料表，依 LastEvaluatedKey 讀完所有分頁
func (r *dynamoTodoRepository) FindAll(ctx context.Context) ([]models.Todo, error) {
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})

	todos := []models.Todo{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todos: %w", err)
		}

		var batch []models.Todo
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal todos: %w", err)
		}
		todos = append(todos, batch...)
	}

	return todos, nil
}

// Update 只設定 patch 中有值的欄位，並以 attribute_exists(id) 避免自動建立新記錄
func (r *dynamoTodoRepository) Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	if patch.Empty() {
		return nil, errors.New("empty todo patch")
	}

	var update expression.UpdateBuilder
	if patch.TaskName != nil {
		update = update.Set(expression.Name("taskName"), expression.Value(*patch.TaskName))
	}
	if patch.Status != nil {
		update = update.Set(expression.Name("status"), expression.Value(*patch.Status))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update expression: %w", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	var todo models.Todo
	if err := attributevalue.UnmarshalMap(out.Attributes, &todo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal todo: %w", err)
	}
	return &todo, nil
}

// Delete 對不存在的 key 是 no-op
func (r *dynamoTodoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"todo_api/internal/models"
)

// 每筆 todo 存成一個 hash，另以 set 記錄所有 id
type redisTodoRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisTodoRepository(client *redis.Client, prefix string) TodoRepository {
	return &redisTodoRepository{client: client, prefix: prefix}
}

func (r *redisTodoRepository) todoKey(id string) string {
	return fmt.Sprintf("%s:todo:%s", r.prefix, id)
}

func (r *redisTodoRepository) indexKey() string {
	return fmt.Sprintf("%s:todos", r.prefix)
}

func (r *redisTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.todoKey(todo.ID),
			"id", todo.ID,
			"taskName", todo.TaskName,
			"status", todo.Status,
		)
		pipe.SAdd(ctx, r.indexKey(), todo.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store todo: %w", err)
	}
	return nil
}

func (r *redisTodoRepository) FindAll(ctx context.Context) ([]models.Todo, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list todo ids: %w", err)
	}

	todos := []models.Todo{}
	if len(ids) == 0 {
		return todos, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, pipe.HGetAll(ctx, r.todoKey(id)))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to fetch todos: %w", err)
	}

	for _, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			// 讀取期間被刪除
			continue
		}
		todos = append(todos, models.Todo{
			ID:       fields["id"],
			TaskName: fields["taskName"],
			Status:   fields["status"],
		})
	}
	return todos, nil
}

func (r *redisTodoRepository) Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	if patch.Empty() {
		return nil, errors.New("empty todo patch")
	}

	key := r.todoKey(id)
	var todo models.Todo
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			return ErrNotFound
		}

		todo = models.Todo{ID: fields["id"], TaskName: fields["taskName"], Status: fields["status"]}
		patch.Apply(&todo)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "taskName", todo.TaskName, "status", todo.Status)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return &todo, nil
}

func (r *redisTodoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.todoKey(id))
		pipe.SRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

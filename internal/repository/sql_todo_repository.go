package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"todo_api/internal/models"
	"todo_api/internal/storage"
)

type sqlTodoRepository struct {
	db *storage.SQLDB
}

func NewSQLTodoRepository(db *storage.SQLDB) TodoRepository {
	return &sqlTodoRepository{db: db}
}

// Create 以 upsert 寫入，與 DynamoDB PutItem 的覆蓋語意一致
func (r *sqlTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	return r.db.WithContext(ctx).Save(todo).Error
}

// FindAll 查詢所有 todo，不排序也不分頁
func (r *sqlTodoRepository) FindAll(ctx context.Context) ([]models.Todo, error) {
	todos := []models.Todo{}
	err := r.db.WithContext(ctx).Find(&todos).Error
	return todos, err
}

func (r *sqlTodoRepository) Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	if patch.Empty() {
		return nil, errors.New("empty todo patch")
	}

	updates := map[string]interface{}{}
	if patch.TaskName != nil {
		updates["task_name"] = *patch.TaskName
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}

	var todo models.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Todo{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&todo, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *sqlTodoRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Todo{}, "id = ?", id).Error
}

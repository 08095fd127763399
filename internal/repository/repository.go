package repository

import (
	"context"
	"errors"

	"todo_api/internal/models"
)

// ErrNotFound 表示指定的記錄不存在
var ErrNotFound = errors.New("record not found")

// TodoRepository 是 todo 記錄的儲存介面，各後端行為一致：
// Create 不檢查是否已存在、Update 只在記錄存在時套用、Delete 對不存在的 id 不報錯。
type TodoRepository interface {
	Create(ctx context.Context, todo *models.Todo) error
	FindAll(ctx context.Context) ([]models.Todo, error)
	Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, id string) error
}

type Repositories struct {
	Todo TodoRepository
	User UserRepository // 只有本地身分提供者會用到，可能為 nil
}

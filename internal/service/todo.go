package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"todo_api/internal/models"
	"todo_api/internal/repository"
)

type TodoService struct {
	todoRepo repository.TodoRepository
	events   *EventHub
	newID    func() string
}

func NewTodoService(todoRepo repository.TodoRepository, events *EventHub) *TodoService {
	return &TodoService{
		todoRepo: todoRepo,
		events:   events,
		newID:    uuid.NewString,
	}
}

// CreateTodo 產生新的 id 並無條件寫入
func (s *TodoService) CreateTodo(ctx context.Context, taskName, status string) (*models.Todo, error) {
	const op = "create todo"
	if taskName == "" || status == "" {
		return nil, newError(KindInvalidInput, op, nil)
	}

	todo := &models.Todo{
		ID:       s.newID(),
		TaskName: taskName,
		Status:   status,
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, newError(KindStoreFailure, op, err)
	}

	s.publish(EventCreated, *todo)
	return todo, nil
}

func (s *TodoService) ListTodos(ctx context.Context) ([]models.Todo, error) {
	todos, err := s.todoRepo.FindAll(ctx)
	if err != nil {
		return nil, newError(KindStoreFailure, "list todos", err)
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	return todos, nil
}

// UpdateTodo 只更新 patch 內有值的欄位，記錄不存在時回傳 KindNotFound
func (s *TodoService) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	const op = "update todo"
	if patch.Empty() {
		return nil, newError(KindInvalidInput, op, nil)
	}

	todo, err := s.todoRepo.Update(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(KindNotFound, op, err)
	}
	if err != nil {
		return nil, newError(KindStoreFailure, op, err)
	}

	s.publish(EventUpdated, *todo)
	return todo, nil
}

// DeleteTodo 對不存在的 id 也視為成功
func (s *TodoService) DeleteTodo(ctx context.Context, id string) error {
	if err := s.todoRepo.Delete(ctx, id); err != nil {
		return newError(KindStoreFailure, "delete todo", err)
	}

	s.publish(EventDeleted, models.Todo{ID: id})
	return nil
}

func (s *TodoService) publish(eventType EventType, todo models.Todo) {
	if s.events == nil {
		return
	}
	s.events.Publish(&TodoEvent{Type: eventType, Todo: todo})
}

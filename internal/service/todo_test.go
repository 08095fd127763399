package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"todo_api/internal/models"
	"todo_api/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestCreateTodoMintsID(t *testing.T) {
	repo := testutil.NewMemoryTodoRepository()
	svc := NewTodoService(repo, nil)

	todo, err := svc.CreateTodo(context.Background(), "Buy milk", "pending")
	require.NoError(t, err)
	assert.NotEmpty(t, todo.ID)
	assert.Equal(t, "Buy milk", todo.TaskName)
	assert.Equal(t, "pending", todo.Status)

	stored, ok := repo.Get(todo.ID)
	require.True(t, ok)
	assert.Equal(t, *todo, stored)

	other, err := svc.CreateTodo(context.Background(), "Buy milk", "pending")
	require.NoError(t, err)
	assert.NotEqual(t, todo.ID, other.ID)
}

func TestCreateTodoValidation(t *testing.T) {
	repo := testutil.NewMemoryTodoRepository()
	svc := NewTodoService(repo, nil)

	for _, tc := range []struct{ taskName, status string }{
		{"", "pending"},
		{"Buy milk", ""},
		{"", ""},
	} {
		_, err := svc.CreateTodo(context.Background(), tc.taskName, tc.status)
		assert.Equal(t, KindInvalidInput, KindOf(err))
	}
	assert.Equal(t, 0, repo.Calls())
}

func TestCreateTodoStoreFailure(t *testing.T) {
	repo := testutil.NewMemoryTodoRepository()
	repo.CreateErr = errors.New("boom")
	svc := NewTodoService(repo, nil)

	_, err := svc.CreateTodo(context.Background(), "a", "b")
	assert.Equal(t, KindStoreFailure, KindOf(err))
	assert.ErrorIs(t, err, repo.CreateErr)
}

func TestUpdateTodoPartial(t *testing.T) {
	repo := testutil.NewMemoryTodoRepository()
	svc := NewTodoService(repo, nil)
	ctx := context.Background()

	todo, err := svc.CreateTodo(ctx, "Buy milk", "pending")
	require.NoError(t, err)

	updated, err := svc.UpdateTodo(ctx, todo.ID, models.TodoPatch{Status: strPtr("done")})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", updated.TaskName)
	assert.Equal(t, "done", updated.Status)

	updated, err = svc.UpdateTodo(ctx, todo.ID, models.TodoPatch{TaskName: strPtr("Buy oat milk")})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", updated.TaskName)
	assert.Equal(t, "done", updated.Status)
}

func TestUpdateTodoErrors(t *testing.T) {
	repo := testutil.NewMemoryTodoRepository()
	svc := NewTodoService(repo, nil)
	ctx := context.Background()

	_, err := svc.UpdateTodo(ctx, "x", models.TodoPatch{})
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.Equal(t, 0, repo.Calls())

	_, err = svc.UpdateTodo(ctx, "missing", models.TodoPatch{Status: strPtr("done")})
	assert.Equal(t, KindNotFound, KindOf(err))

	repo.UpdateErr = errors.New("boom")
	_, err = svc.UpdateTodo(ctx, "missing", models.TodoPatch{Status: strPtr("done")})
	assert.Equal(t, KindStoreFailure, KindOf(err))
}

func TestDeleteAndList(t *testing.T) {
	repo := testutil.NewMemoryTodoRepository()
	svc := NewTodoService(repo, nil)
	ctx := context.Background()

	a, err := svc.CreateTodo(ctx, "a", "pending")
	require.NoError(t, err)
	b, err := svc.CreateTodo(ctx, "b", "pending")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTodo(ctx, a.ID))
	require.NoError(t, svc.DeleteTodo(ctx, "never-existed"))

	todos, err := svc.ListTodos(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Todo{*b}, todos)

	repo.FindAllErr = errors.New("boom")
	_, err = svc.ListTodos(ctx)
	assert.Equal(t, KindStoreFailure, KindOf(err))
}

func TestTodoServicePublishesEvents(t *testing.T) {
	hub := NewEventHub(zap.NewNop())
	client := &Client{SendChan: make(chan *TodoEvent, 8)}
	hub.addClient(client)

	svc := NewTodoService(testutil.NewMemoryTodoRepository(), hub)
	ctx := context.Background()

	todo, err := svc.CreateTodo(ctx, "a", "pending")
	require.NoError(t, err)
	_, err = svc.UpdateTodo(ctx, todo.ID, models.TodoPatch{Status: strPtr("done")})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTodo(ctx, todo.ID))

	// 失敗的操作不會廣播
	_, err = svc.UpdateTodo(ctx, "missing", models.TodoPatch{Status: strPtr("done")})
	require.Error(t, err)

	require.Len(t, client.SendChan, 3)
	assert.Equal(t, &TodoEvent{Type: EventCreated, Todo: *todo}, <-client.SendChan)
	assert.Equal(t, EventUpdated, (<-client.SendChan).Type)
	assert.Equal(t, &TodoEvent{Type: EventDeleted, Todo: models.Todo{ID: todo.ID}}, <-client.SendChan)
}

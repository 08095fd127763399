package service

import (
	"go.uber.org/zap"

	"todo_api/internal/identity"
	"todo_api/internal/repository"
)

type Services struct {
	Todo   *TodoService
	Auth   *AuthService
	Events *EventHub
}

func NewServices(repos *repository.Repositories, provider identity.Provider, logger *zap.Logger) *Services {
	events := NewEventHub(logger.Named("events"))

	return &Services{
		Todo:   NewTodoService(repos.Todo, events),
		Auth:   NewAuthService(provider),
		Events: events,
	}
}

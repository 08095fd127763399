// Package testutil provides in-memory collaborators for tests.
package testutil

import (
	"context"
	"sync"

	"todo_api/internal/identity"
	"todo_api/internal/models"
	"todo_api/internal/repository"
)

// MemoryTodoRepository is an in-memory repository.TodoRepository.
// It follows the DynamoDB contract: Create overwrites, Update requires an
// existing record, Delete ignores unknown ids.
type MemoryTodoRepository struct {
	mu    sync.Mutex
	todos map[string]models.Todo
	calls int

	// Error injection for testing
	CreateErr  error
	FindAllErr error
	UpdateErr  error
	DeleteErr  error
}

func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{todos: make(map[string]models.Todo)}
}

// Calls returns how many repository operations were attempted.
func (r *MemoryTodoRepository) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Get returns a stored record directly, bypassing call counting.
func (r *MemoryTodoRepository) Get(id string) (models.Todo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	todo, ok := r.todos[id]
	return todo, ok
}

func (r *MemoryTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.todos[todo.ID] = *todo
	return nil
}

func (r *MemoryTodoRepository) FindAll(ctx context.Context) ([]models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.FindAllErr != nil {
		return nil, r.FindAllErr
	}
	todos := make([]models.Todo, 0, len(r.todos))
	for _, todo := range r.todos {
		todos = append(todos, todo)
	}
	return todos, nil
}

func (r *MemoryTodoRepository) Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.UpdateErr != nil {
		return nil, r.UpdateErr
	}
	todo, ok := r.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&todo)
	r.todos[id] = todo
	return &todo, nil
}

func (r *MemoryTodoRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	delete(r.todos, id)
	return nil
}

// FakeProvider is a scripted identity.Provider.
type FakeProvider struct {
	mu sync.Mutex

	// Passwords maps username to the accepted password.
	Passwords map[string]string
	// Challenged users receive NEW_PASSWORD_REQUIRED until they respond.
	Challenged map[string]bool
	// Err, when set, is returned from every call.
	Err error

	InitiateCalls int
	RespondCalls  int
	NewPasswords  []string
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		Passwords:  make(map[string]string),
		Challenged: make(map[string]bool),
	}
}

func (p *FakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.InitiateCalls + p.RespondCalls
}

func (p *FakeProvider) InitiateAuth(ctx context.Context, username, password string) (*identity.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.InitiateCalls++
	if p.Err != nil {
		return nil, p.Err
	}
	if want, ok := p.Passwords[username]; !ok || want != password {
		return nil, identity.ErrInvalidCredentials
	}
	if p.Challenged[username] {
		return &identity.AuthResult{
			ChallengeName: identity.ChallengeNewPasswordRequired,
			Session:       "session-" + username,
		}, nil
	}
	return &identity.AuthResult{IDToken: "token-" + username}, nil
}

func (p *FakeProvider) RespondNewPassword(ctx context.Context, username, newPassword, session string) (*identity.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.RespondCalls++
	if p.Err != nil {
		return nil, p.Err
	}
	if session != "session-"+username {
		return nil, identity.ErrInvalidCredentials
	}
	p.NewPasswords = append(p.NewPasswords, newPassword)
	p.Passwords[username] = newPassword
	delete(p.Challenged, username)
	return &identity.AuthResult{IDToken: "token-" + username}, nil
}

func (p *FakeProvider) VerifyToken(ctx context.Context, token string) (*identity.Claims, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for username := range p.Passwords {
		if token == "token-"+username {
			return &identity.Claims{Subject: username, Username: username}, nil
		}
	}
	return nil, identity.ErrInvalidCredentials
}

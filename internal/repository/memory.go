package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GunarsK-portfolio/todo-service/internal/models"
)

// Memory stores keep everything in process. Data is lost on restart; they
// back tests and the zero-dependency "memory" storage driver.

type memoryUserRepository struct {
	mu    sync.RWMutex
	users []models.User
}

// NewMemoryUserRepository creates an in-process UserRepository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{}
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if strings.EqualFold(r.users[i].Username, username) {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, fmt.Errorf("failed to find user by username %s: %w", username, ErrNotFound)
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if r.users[i].UserID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, fmt.Errorf("failed to find user by id %s: %w", id, ErrNotFound)
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if strings.EqualFold(r.users[i].Username, user.Username) {
			return fmt.Errorf("failed to create user %s: %w", user.Username, ErrUsernameTaken)
		}
	}
	stampCreated(&user.CreatedAt, &user.UpdatedAt)
	r.users = append(r.users, *user)
	return nil
}

func (r *memoryUserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, len(r.users))
	copy(users, r.users)
	return users, nil
}

type memoryTodoRepository struct {
	mu    sync.RWMutex
	todos []models.Todo
}

// NewMemoryTodoRepository creates an in-process TodoRepository. Listing keeps
// insertion order.
func NewMemoryTodoRepository() TodoRepository {
	return &memoryTodoRepository{}
}

func (r *memoryTodoRepository) Create(_ context.Context, todo *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stampCreated(&todo.CreatedAt, &todo.UpdatedAt)
	r.todos = append(r.todos, *todo)
	return nil
}

func (r *memoryTodoRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := make([]models.Todo, 0)
	for i := range r.todos {
		if r.todos[i].OwnedBy(ownerID) {
			todos = append(todos, r.todos[i])
		}
	}
	return todos, nil
}

func (r *memoryTodoRepository) FindByID(_ context.Context, id, ownerID string) (*models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return nil, fmt.Errorf("failed to find todo %s: %w", id, ErrNotFound)
	}
	todo := r.todos[i]
	return &todo, nil
}

func (r *memoryTodoRepository) Update(_ context.Context, id, ownerID string, patch models.TodoPatch) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return nil, fmt.Errorf("failed to update todo %s: %w", id, ErrNotFound)
	}
	if !patch.Empty() {
		patch.Apply(&r.todos[i])
		r.todos[i].UpdatedAt = time.Now().UTC()
	}
	todo := r.todos[i]
	return &todo, nil
}

func (r *memoryTodoRepository) Delete(_ context.Context, id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return false, nil
	}
	r.todos = append(r.todos[:i], r.todos[i+1:]...)
	return true, nil
}

// indexOf returns the position of the owned todo, or -1. Callers hold mu.
func (r *memoryTodoRepository) indexOf(id, ownerID string) int {
	for i := range r.todos {
		if r.todos[i].ID == id {
			if !r.todos[i].OwnedBy(ownerID) {
				return -1
			}
			return i
		}
	}
	return -1
}

func stampCreated(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}

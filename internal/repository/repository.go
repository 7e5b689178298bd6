// Package repository provides data access layer for the todo service.
//
// Every store comes in three flavors selected at startup: in-memory, gorm
// (PostgreSQL) and Redis. All of them report expected absences through the
// sentinel errors below and wrap anything else.
package repository

import (
	"context"
	"errors"

	"github.com/GunarsK-portfolio/todo-service/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is not
	// visible to the requesting owner.
	ErrNotFound = errors.New("record not found")
	// ErrUsernameTaken is returned when a username collides case-insensitively.
	ErrUsernameTaken = errors.New("username already exists")
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// FindByUsername matches usernames case-insensitively.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
}

// TodoRepository defines owner-scoped todo operations. Every method takes the
// requesting owner explicitly; records of other owners behave as absent.
type TodoRepository interface {
	Create(ctx context.Context, todo *models.Todo) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error)
	FindByID(ctx context.Context, id, ownerID string) (*models.Todo, error)
	Update(ctx context.Context, id, ownerID string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

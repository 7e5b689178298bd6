package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/GunarsK-portfolio/todo-service/internal/models"
	"github.com/GunarsK-portfolio/todo-service/internal/repository"
	"github.com/google/uuid"
)

// MaxTitleLength is the longest accepted todo title, in characters.
const MaxTitleLength = 100

// ErrTodoNotFound covers both missing todos and todos of other users.
var ErrTodoNotFound = errors.New("todo not found")

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// TodoService implements owner-scoped todo operations.
type TodoService interface {
	Create(ctx context.Context, ownerID, title string) (*models.Todo, error)
	List(ctx context.Context, ownerID string) ([]models.Todo, error)
	Get(ctx context.Context, ownerID, id string) (*models.Todo, error)
	Update(ctx context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type todoService struct {
	repo repository.TodoRepository
	now  func() time.Time
}

// NewTodoService creates a new TodoService instance.
func NewTodoService(repo repository.TodoRepository) TodoService {
	return &todoService{repo: repo, now: time.Now}
}

func (s *todoService) Create(ctx context.Context, ownerID, title string) (*models.Todo, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	todo := &models.Todo{
		ID:        uuid.NewString(),
		Title:     title,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *todoService) List(ctx context.Context, ownerID string) ([]models.Todo, error) {
	todos, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	return todos, nil
}

func (s *todoService) Get(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, ErrTodoNotFound
	}
	todo, err := s.repo.FindByID(ctx, id, ownerID)
	return todo, notFound(err)
}

func (s *todoService) Update(ctx context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error) {
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	id, ok := canonicalID(id)
	if !ok {
		return nil, ErrTodoNotFound
	}
	todo, err := s.repo.Update(ctx, id, ownerID, patch)
	return todo, notFound(err)
}

// Delete returns ErrTodoNotFound when nothing owned by ownerID was removed.
func (s *todoService) Delete(ctx context.Context, ownerID, id string) error {
	id, ok := canonicalID(id)
	if !ok {
		return ErrTodoNotFound
	}
	deleted, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTodoNotFound
	}
	return nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	switch {
	case n == 0:
		return &ValidationError{Field: "title", Message: "must not be empty"}
	case n > MaxTitleLength:
		return &ValidationError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", MaxTitleLength)}
	}
	return nil
}

// canonicalID normalizes id to the stored uuid form. Anything that is not a
// uuid cannot name a todo.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTodoNotFound
	}
	return err
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/GunarsK-portfolio/todo-service/internal/models"
	"gorm.io/gorm"
)

type todoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a gorm-backed TodoRepository. Listing is most
// recently created first.
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

// ownedBy is the SQL form of models.Todo.OwnedBy.
func ownedBy(id, ownerID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND user_id = ?", id, ownerID)
	}
}

func (r *todoRepository) Create(ctx context.Context, todo *models.Todo) error {
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

func (r *todoRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error) {
	todos := make([]models.Todo, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list todos for user %s: %w", ownerID, err)
	}
	return todos, nil
}

func (r *todoRepository) FindByID(ctx context.Context, id, ownerID string) (*models.Todo, error) {
	var todo models.Todo
	if err := r.db.WithContext(ctx).Scopes(ownedBy(id, ownerID)).First(&todo).Error; err != nil {
		return nil, fmt.Errorf("failed to find todo %s: %w", id, translate(err))
	}
	return &todo, nil
}

// Update writes only the columns present in patch.
func (r *todoRepository) Update(ctx context.Context, id, ownerID string, patch models.TodoPatch) (*models.Todo, error) {
	if patch.Empty() {
		return r.FindByID(ctx, id, ownerID)
	}

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.IsCompleted != nil {
		updates["is_completed"] = *patch.IsCompleted
	}

	result := r.db.WithContext(ctx).Model(&models.Todo{}).Scopes(ownedBy(id, ownerID)).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update todo %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("failed to update todo %s: %w", id, ErrNotFound)
	}
	return r.FindByID(ctx, id, ownerID)
}

func (r *todoRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	result := r.db.WithContext(ctx).Scopes(ownedBy(id, ownerID)).Delete(&models.Todo{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete todo %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

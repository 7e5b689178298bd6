package models

import "time"

// Todo is a single item on a user's list.
type Todo struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string    `json:"title" gorm:"not null"`
	IsCompleted bool      `json:"isCompleted" gorm:"column:is_completed;not null"`
	UserID      string    `json:"userId" gorm:"column:user_id;type:uuid;not null;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName returns the database table name for the Todo model.
func (Todo) TableName() string {
	return "todos"
}

// OwnedBy is the single ownership check every accessor goes through.
// A todo owned by someone else is treated as absent, never as forbidden.
func (t *Todo) OwnedBy(userID string) bool {
	return t != nil && userID != "" && t.UserID == userID
}

// TodoPatch carries the fields of a partial update. Nil fields are left unchanged.
type TodoPatch struct {
	Title       *string
	IsCompleted *bool
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.IsCompleted == nil
}

// Apply merges the present fields into t.
func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
}

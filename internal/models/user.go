// Package models contains data models for the todo service.
package models

import "time"

// User represents a registered account.
type User struct {
	UserID       string    `json:"userId" gorm:"column:user_id;primaryKey;type:uuid"`
	Username     string    `json:"username" gorm:"not null"`
	PasswordHash string    `json:"-" gorm:"column:password;not null"`
	Role         Role      `json:"role" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName returns the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Identity returns the principal a token issued for this user carries.
func (u *User) Identity() Identity {
	return Identity{UserID: u.UserID, Username: u.Username, Role: u.Role}
}

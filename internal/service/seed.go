package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/GunarsK-portfolio/todo-service/internal/models"
	"github.com/GunarsK-portfolio/todo-service/internal/repository"
)

// DemoUser is an account created by SeedUsers.
type DemoUser struct {
	UserID   string
	Username string
	Password string
	Role     models.Role
}

// DemoUsers are the accounts available out of the box.
var DemoUsers = []DemoUser{
	{UserID: "550e8400-e29b-41d4-a716-446655440001", Username: "alice", Password: "admin123", Role: models.RoleAdmin},
	{UserID: "550e8400-e29b-41d4-a716-446655440002", Username: "bob", Password: "user123", Role: models.RoleUser},
}

// SeedUsers creates the given accounts, skipping usernames that already
// exist. It returns how many were created.
func SeedUsers(ctx context.Context, users repository.UserRepository, demo []DemoUser) (int, error) {
	store := &credentialStore{users: users, cost: BcryptCost}

	created := 0
	for _, u := range demo {
		_, err := store.create(ctx, u.UserID, u.Username, u.Password, u.Role)
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrUsernameTaken):
			// already seeded
		default:
			return created, fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
	}
	return created, nil
}

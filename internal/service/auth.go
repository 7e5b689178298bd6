// Package service contains the business logic of the todo service.
package service

import (
	"context"
	"fmt"

	"github.com/GunarsK-portfolio/todo-service/internal/models"
	"github.com/GunarsK-portfolio/todo-service/internal/repository"
)

// LoginResponse is returned by successful login and registration.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// AuthService handles login, registration and token validation.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Register(ctx context.Context, username, password string) (*LoginResponse, error)
	ValidateToken(token string) (*models.Identity, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type authService struct {
	credentials CredentialStore
	users       repository.UserRepository
	tokens      TokenService
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(credentials CredentialStore, users repository.UserRepository, tokens TokenService) AuthService {
	return &authService{
		credentials: credentials,
		users:       users,
		tokens:      tokens,
	}
}

// Login answers with the username as the caller typed it; the token carries
// the stored one.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.credentials.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user, username)
}

// Register creates the account and logs it in.
func (s *authService) Register(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.credentials.Register(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user, user.Username)
}

func (s *authService) ValidateToken(token string) (*models.Identity, error) {
	return s.tokens.Validate(token)
}

func (s *authService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *authService) issue(user *models.User, username string) (*LoginResponse, error) {
	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, Username: username}, nil
}

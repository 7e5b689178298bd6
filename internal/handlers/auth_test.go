package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GunarsK-portfolio/todo-service/internal/httputil"
	"github.com/GunarsK-portfolio/todo-service/internal/metrics"
	"github.com/GunarsK-portfolio/todo-service/internal/middleware"
	"github.com/GunarsK-portfolio/todo-service/internal/models"
	"github.com/GunarsK-portfolio/todo-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type mockAuthService struct {
	loginFunc         func(ctx context.Context, username, password string) (*service.LoginResponse, error)
	registerFunc      func(ctx context.Context, username, password string) (*service.LoginResponse, error)
	validateTokenFunc func(token string) (*models.Identity, error)
	listUsersFunc     func(ctx context.Context) ([]models.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*service.LoginResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, username, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Register(ctx context.Context, username, password string) (*service.LoginResponse, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, username, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) ValidateToken(token string) (*models.Identity, error) {
	if m.validateTokenFunc != nil {
		return m.validateTokenFunc(token)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	if m.listUsersFunc != nil {
		return m.listUsersFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

// =============================================================================
// Test Helpers
// =============================================================================

var testIdentity = &models.Identity{
	UserID:   "550e8400-e29b-41d4-a716-446655440001",
	Username: "alice",
	Role:     models.RoleAdmin,
}

func createTestContext(method, path string, body interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyBytes []byte
	switch b := body.(type) {
	case nil:
	case string:
		bodyBytes = []byte(b)
	default:
		bodyBytes, _ = json.Marshal(b)
	}

	c.Request = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

// authenticate attaches identity the way middleware.Auth does.
func authenticate(c *gin.Context, identity *models.Identity) {
	c.Request = c.Request.WithContext(middleware.WithIdentity(c.Request.Context(), identity))
	c.Set(middleware.IdentityKey, identity)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var body httputil.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	return body
}

// =============================================================================
// Login Handler Tests
// =============================================================================

func TestLogin_Success(t *testing.T) {
	m := metrics.New()
	handler := NewAuthHandler(&mockAuthService{
		loginFunc: func(_ context.Context, username, password string) (*service.LoginResponse, error) {
			if username != "alice" || password != "admin123" {
				t.Errorf("Login(%q, %q) called with unexpected credentials", username, password)
			}
			return &service.LoginResponse{Token: "token_123", Username: "alice"}, nil
		},
	}, m)

	w, c := createTestContext(http.MethodPost, "/login", CredentialsRequest{Username: "alice", Password: "admin123"})
	handler.Login(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response service.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Token != "token_123" || response.Username != "alice" {
		t.Errorf("unexpected response %+v", response)
	}
	if got := testutil.ToFloat64(m.LoginAttemptsTotal.WithLabelValues(metrics.OutcomeSuccess)); got != 1 {
		t.Errorf("login success counter = %v, want 1", got)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	m := metrics.New()
	handler := NewAuthHandler(&mockAuthService{
		loginFunc: func(_ context.Context, _, _ string) (*service.LoginResponse, error) {
			return nil, service.ErrInvalidCredentials
		},
	}, m)

	w, c := createTestContext(http.MethodPost, "/login", CredentialsRequest{Username: "alice", Password: "wrongpassword"})
	handler.Login(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if body := decodeError(t, w); body.Error != "invalid credentials" || body.StatusCode != http.StatusUnauthorized {
		t.Errorf("unexpected error body %+v", body)
	}
	if got := testutil.ToFloat64(m.LoginAttemptsTotal.WithLabelValues(metrics.OutcomeFailure)); got != 1 {
		t.Errorf("login failure counter = %v, want 1", got)
	}
}

func TestLogin_ServiceError(t *testing.T) {
	handler := NewAuthHandler(&mockAuthService{
		loginFunc: func(_ context.Context, _, _ string) (*service.LoginResponse, error) {
			return nil, errors.New("dial tcp 10.0.0.5:5432: connection refused")
		},
	}, nil)

	w, c := createTestContext(http.MethodPost, "/login", CredentialsRequest{Username: "alice", Password: "admin123"})
	handler.Login(c)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if body := decodeError(t, w); body.Error != "internal server error" {
		t.Errorf("internal error leaked: %q", body.Error)
	}
}

func TestLogin_Validation(t *testing.T) {
	tests := []struct {
		name      string
		body      interface{}
		wantField string
	}{
		{name: "missing username", body: map[string]string{"password": "password123"}, wantField: "username"},
		{name: "missing password", body: map[string]string{"username": "alice"}, wantField: "password"},
		{name: "short username", body: CredentialsRequest{Username: "al", Password: "password123"}, wantField: "username"},
		{name: "long username", body: CredentialsRequest{Username: "abcdefghijklmnopqrstuvwxyz01234", Password: "password123"}, wantField: "username"},
		{name: "short password", body: CredentialsRequest{Username: "alice", Password: "12345"}, wantField: "password"},
		{name: "invalid json", body: "invalid json"},
		{name: "wrong types", body: `{"username": 42, "password": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&mockAuthService{}, nil)
			w, c := createTestContext(http.MethodPost, "/login", tt.body)

			handler.Login(c)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
			body := decodeError(t, w)
			if tt.wantField != "" && body.Details[tt.wantField] == "" {
				t.Errorf("expected details for %q, got %+v", tt.wantField, body.Details)
			}
		})
	}
}

// =============================================================================
// Register Handler Tests
// =============================================================================

func TestRegister_Success(t *testing.T) {
	handler := NewAuthHandler(&mockAuthService{
		registerFunc: func(_ context.Context, username, _ string) (*service.LoginResponse, error) {
			return &service.LoginResponse{Token: "token_new", Username: username}, nil
		},
	}, nil)

	w, c := createTestContext(http.MethodPost, "/register", CredentialsRequest{Username: "carol", Password: "secret1"})
	handler.Register(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var response service.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Token != "token_new" || response.Username != "carol" {
		t.Errorf("unexpected response %+v", response)
	}
}

func TestRegister_Conflict(t *testing.T) {
	handler := NewAuthHandler(&mockAuthService{
		registerFunc: func(_ context.Context, _, _ string) (*service.LoginResponse, error) {
			return nil, service.ErrUsernameTaken
		},
	}, nil)

	w, c := createTestContext(http.MethodPost, "/register", CredentialsRequest{Username: "Alice", Password: "secret1"})
	handler.Register(c)

	if w.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

// =============================================================================
// Me / ListUsers Handler Tests
// =============================================================================

func TestMe(t *testing.T) {
	handler := NewAuthHandler(&mockAuthService{}, nil)
	w, c := createTestContext(http.MethodGet, "/me", nil)
	authenticate(c, testIdentity)

	handler.Me(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var got models.Identity
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got != *testIdentity {
		t.Errorf("Me() = %+v, want %+v", got, *testIdentity)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	handler := NewAuthHandler(&mockAuthService{}, nil)
	w, c := createTestContext(http.MethodGet, "/me", nil)

	handler.Me(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestListUsers_HidesPasswordHashes(t *testing.T) {
	handler := NewAuthHandler(&mockAuthService{
		listUsersFunc: func(_ context.Context) ([]models.User, error) {
			return []models.User{{UserID: testIdentity.UserID, Username: "alice", PasswordHash: "$2a$10$secret", Role: models.RoleAdmin}}, nil
		},
	}, nil)
	w, c := createTestContext(http.MethodGet, "/admin/users", nil)
	authenticate(c, testIdentity)

	handler.ListUsers(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("$2a$10$")) {
		t.Error("password hash leaked in response")
	}
}

// Package handlers contains HTTP request handlers for the todo service.
package handlers

import (
	"errors"
	"net/http"

	"github.com/GunarsK-portfolio/todo-service/internal/httputil"
	"github.com/GunarsK-portfolio/todo-service/internal/metrics"
	"github.com/GunarsK-portfolio/todo-service/internal/middleware"
	"github.com/GunarsK-portfolio/todo-service/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	authService service.AuthService
	metrics     *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler instance. m may be nil.
func NewAuthHandler(authService service.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     m,
	}
}

// CredentialsRequest is the body of login and register.
type CredentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30" example:"alice"`
	Password string `json:"password" binding:"required,min=6" example:"admin123"`
}

// Login godoc
// @Summary User login
// @Description Verify credentials and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Login credentials"
// @Success 200 {object} service.LoginResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 429 {object} httputil.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.ObserveLogin(outcome(err, service.ErrInvalidCredentials))
		respondServiceError(c, err)
		return
	}

	h.metrics.ObserveLogin(metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, response)
}

// Register godoc
// @Summary Register a user
// @Description Create an account with role user and return a bearer token for it
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "New account credentials"
// @Success 201 {object} service.LoginResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 409 {object} httputil.ErrorResponse
// @Failure 429 {object} httputil.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.ObserveRegistration(outcome(err, service.ErrUsernameTaken))
		respondServiceError(c, err)
		return
	}

	h.metrics.ObserveRegistration(metrics.OutcomeSuccess)
	c.JSON(http.StatusCreated, response)
}

// Me godoc
// @Summary Current user
// @Description Return the identity carried by the bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Identity
// @Failure 401 {object} httputil.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		httputil.RespondError(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	c.JSON(http.StatusOK, identity)
}

// ListUsers godoc
// @Summary List users
// @Description List every account. Admin only.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 403 {object} httputil.ErrorResponse
// @Router /admin/users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// outcome classifies a failed auth call for metrics.
func outcome(err, expected error) string {
	if errors.Is(err, expected) {
		return metrics.OutcomeFailure
	}
	return metrics.OutcomeError
}

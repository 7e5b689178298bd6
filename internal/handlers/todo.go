package handlers

import (
	"net/http"

	"github.com/GunarsK-portfolio/todo-service/internal/httputil"
	"github.com/GunarsK-portfolio/todo-service/internal/metrics"
	"github.com/GunarsK-portfolio/todo-service/internal/middleware"
	"github.com/GunarsK-portfolio/todo-service/internal/models"
	"github.com/GunarsK-portfolio/todo-service/internal/service"
	"github.com/gin-gonic/gin"
)

// TodoHandler handles todo HTTP requests. Every route requires Auth.
type TodoHandler struct {
	todoService service.TodoService
	metrics     *metrics.Metrics
}

// NewTodoHandler creates a new TodoHandler instance. m may be nil.
func NewTodoHandler(todoService service.TodoService, m *metrics.Metrics) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		metrics:     m,
	}
}

// CreateTodoRequest is the body of POST /todos.
type CreateTodoRequest struct {
	Title string `json:"title" binding:"required" example:"Buy milk"`
}

// UpdateTodoRequest is the body of PATCH /todos/:id. Omitted fields are
// left unchanged.
type UpdateTodoRequest struct {
	Title       *string `json:"title,omitempty" example:"Buy oat milk"`
	IsCompleted *bool   `json:"isCompleted,omitempty" example:"true"`
}

// owner returns the authenticated user id or answers 401.
func owner(c *gin.Context) (string, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		httputil.RespondError(c, http.StatusUnauthorized, "not authenticated")
		return "", false
	}
	return identity.UserID, true
}

// List godoc
// @Summary List todos
// @Description List the caller's todos
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Todo
// @Failure 401 {object} httputil.ErrorResponse
// @Router /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	todos, err := h.todoService.List(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// Create godoc
// @Summary Create todo
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTodoRequest true "Todo"
// @Success 201 {object} models.Todo
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Router /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	todo, err := h.todoService.Create(c.Request.Context(), ownerID, req.Title)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.metrics.ObserveTodo("create")
	c.JSON(http.StatusCreated, todo)
}

// Get godoc
// @Summary Get todo
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Todo ID"
// @Success 200 {object} models.Todo
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /todos/{id} [get]
func (h *TodoHandler) Get(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	todo, err := h.todoService.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// Update godoc
// @Summary Update todo
// @Description Partially update a todo; omitted fields keep their values
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Todo ID"
// @Param request body UpdateTodoRequest true "Fields to change"
// @Success 200 {object} models.Todo
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /todos/{id} [patch]
func (h *TodoHandler) Update(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	patch := models.TodoPatch{Title: req.Title, IsCompleted: req.IsCompleted}
	todo, err := h.todoService.Update(c.Request.Context(), ownerID, c.Param("id"), patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.metrics.ObserveTodo("update")
	c.JSON(http.StatusOK, todo)
}

// Delete godoc
// @Summary Delete todo
// @Tags todos
// @Security BearerAuth
// @Param id path string true "Todo ID"
// @Success 204
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	if err := h.todoService.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	h.metrics.ObserveTodo("delete")
	c.Status(http.StatusNoContent)
}

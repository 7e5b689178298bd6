package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/GunarsK-portfolio/todo-service/internal/httputil"
	"github.com/GunarsK-portfolio/todo-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// report binding failures under the JSON field names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// respondBindError answers 400 for a request body that failed to bind.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = describe(fe)
		}
		httputil.RespondValidationError(c, details)
		return
	}
	httputil.RespondError(c, http.StatusBadRequest, "invalid request body")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// respondServiceError maps service errors onto HTTP statuses. Anything
// unrecognized is logged and answered with a generic 500.
func respondServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.RespondValidationError(c, map[string]string{verr.Field: verr.Message})
	case errors.Is(err, service.ErrInvalidCredentials):
		httputil.RespondError(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrUsernameTaken):
		httputil.RespondError(c, http.StatusConflict, "username already exists")
	case errors.Is(err, service.ErrTodoNotFound):
		httputil.RespondError(c, http.StatusNotFound, "todo not found")
	default:
		httputil.LogAndRespondError(c, http.StatusInternalServerError, err, "internal server error")
	}
}

// Package routes defines HTTP routes for the todo service.
package routes

import (
	"fmt"

	"github.com/GunarsK-portfolio/todo-service/docs"
	"github.com/GunarsK-portfolio/todo-service/internal/config"
	"github.com/GunarsK-portfolio/todo-service/internal/handlers"
	"github.com/GunarsK-portfolio/todo-service/internal/httputil"
	"github.com/GunarsK-portfolio/todo-service/internal/metrics"
	"github.com/GunarsK-portfolio/todo-service/internal/middleware"
	"github.com/GunarsK-portfolio/todo-service/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps carries everything the router needs.
type Deps struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Metrics *metrics.Metrics

	Tokens    middleware.TokenValidator
	RateLimit gin.HandlerFunc // applied to /login and /register; may be nil

	Auth   *handlers.AuthHandler
	Todo   *handlers.TodoHandler
	Health *handlers.HealthHandler
}

// Setup configures all HTTP routes for the application. Forwarded client
// addresses are honoured only from Config.TrustedProxies.
func Setup(router *gin.Engine, deps Deps) error {
	if err := router.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}

	router.Use(
		middleware.RequestLogger(deps.Logger),
		httputil.Recovery(),
		middleware.CORS(middleware.CORSConfig{AllowedOrigins: deps.Config.AllowedOrigins}),
	)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.NoRoute(httputil.NotFound)

	router.GET("/health", deps.Health.Check)

	// Public auth routes
	public := router.Group("")
	if deps.RateLimit != nil {
		public.Use(deps.RateLimit)
	}
	{
		public.POST("/login", deps.Auth.Login)
		public.POST("/register", deps.Auth.Register)
	}

	// Authenticated routes
	protected := router.Group("", middleware.Auth(deps.Tokens))
	{
		protected.GET("/me", deps.Auth.Me)

		protected.GET("/todos", deps.Todo.List)
		protected.POST("/todos", deps.Todo.Create)
		protected.GET("/todos/:id", deps.Todo.Get)
		protected.PATCH("/todos/:id", deps.Todo.Update)
		protected.DELETE("/todos/:id", deps.Todo.Delete)
	}

	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", deps.Auth.ListUsers)
	}

	// Swagger documentation (only if SWAGGER_HOST is configured)
	if deps.Config.SwaggerHost != "" {
		docs.SwaggerInfo.Host = deps.Config.SwaggerHost
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return nil
}

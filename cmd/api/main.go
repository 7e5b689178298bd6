// Package main is the entry point for the todo service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/GunarsK-portfolio/todo-service/docs"
	"github.com/GunarsK-portfolio/todo-service/internal/config"
	"github.com/GunarsK-portfolio/todo-service/internal/database"
	"github.com/GunarsK-portfolio/todo-service/internal/handlers"
	"github.com/GunarsK-portfolio/todo-service/internal/metrics"
	"github.com/GunarsK-portfolio/todo-service/internal/middleware"
	"github.com/GunarsK-portfolio/todo-service/internal/repository"
	"github.com/GunarsK-portfolio/todo-service/internal/routes"
	"github.com/GunarsK-portfolio/todo-service/internal/service"
	"github.com/GunarsK-portfolio/todo-service/pkg/logger"
	"github.com/GunarsK-portfolio/todo-service/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// stores is the storage backend selected by STORAGE_DRIVER.
type stores struct {
	users  repository.UserRepository
	todos  repository.TodoRepository
	redis  *goredis.Client
	checks map[string]handlers.Checker
	close  func()
}

// @title Todo Service API
// @version 1.0
// @description Multi-tenant todo list API with bearer token authentication
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("todo service stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	if cfg.SeedDemoUsers {
		created, err := service.SeedUsers(ctx, st.users, service.DemoUsers)
		if err != nil {
			return err
		}
		log.WithField("created", created).Info("demo users seeded")
	}

	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return err
	}
	authService := service.NewAuthService(service.NewCredentialStore(st.users), st.users, tokens)
	todoService := service.NewTodoService(st.todos)

	rateLimit, err := middleware.RateLimit(middleware.RateLimitConfig{Rate: cfg.RateLimit, Redis: st.redis})
	if err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	m := metrics.New()
	router := gin.New()
	err = routes.Setup(router, routes.Deps{
		Config:    cfg,
		Logger:    log,
		Metrics:   m,
		Tokens:    authService,
		RateLimit: rateLimit,
		Auth:      handlers.NewAuthHandler(authService, m),
		Todo:      handlers.NewTodoHandler(todoService, m),
		Health:    handlers.NewHealthHandler(st.checks),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"storage": cfg.StorageDriver,
		}).Info("starting todo service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*stores, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := database.Connect(ctx, cfg.DSN(), logrus.NewEntry(log))
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return &stores{
			users:  repository.NewUserRepository(db),
			todos:  repository.NewTodoRepository(db),
			checks: map[string]handlers.Checker{"postgres": sqlDB.PingContext},
			close:  func() { _ = sqlDB.Close() },
		}, nil

	case config.DriverRedis:
		client, err := redis.NewClient(ctx, redis.Config{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			TLS:      cfg.IsProduction() && cfg.RedisPassword != "",
		})
		if err != nil {
			return nil, err
		}
		return &stores{
			users:  repository.NewRedisUserRepository(client),
			todos:  repository.NewRedisTodoRepository(client),
			redis:  client,
			checks: map[string]handlers.Checker{"redis": redis.Checker(client)},
			close:  func() { _ = client.Close() },
		}, nil

	default:
		log.Warn("using in-memory storage; data is lost on restart")
		return &stores{
			users: repository.NewMemoryUserRepository(),
			todos: repository.NewMemoryTodoRepository(),
			close: func() {},
		}, nil
	}
}

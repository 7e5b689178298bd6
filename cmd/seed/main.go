// Command seed creates the demo accounts in Postgres.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/GunarsK-portfolio/todo-service/internal/config"
	"github.com/GunarsK-portfolio/todo-service/internal/database"
	"github.com/GunarsK-portfolio/todo-service/internal/repository"
	"github.com/GunarsK-portfolio/todo-service/internal/service"
	"github.com/GunarsK-portfolio/todo-service/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()
	if os.Getenv("STORAGE_DRIVER") == "" {
		_ = os.Setenv("STORAGE_DRIVER", config.DriverPostgres)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DSN(), logrus.NewEntry(log))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get database handle")
	}
	defer sqlDB.Close()

	if err := database.Migrate(ctx, sqlDB); err != nil {
		log.WithError(err).Fatal("failed to apply migrations")
	}

	created, err := service.SeedUsers(ctx, repository.NewUserRepository(db), service.DemoUsers)
	if err != nil {
		log.WithError(err).Fatal("failed to seed users")
	}
	log.WithField("created", created).Info("seed complete")
}

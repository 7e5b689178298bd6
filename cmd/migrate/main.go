// Command migrate applies the Postgres schema migrations.
//
// Usage:
//
//	migrate [up|status]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/GunarsK-portfolio/todo-service/internal/config"
	"github.com/GunarsK-portfolio/todo-service/internal/database"
	"github.com/GunarsK-portfolio/todo-service/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	// migrations only make sense against postgres
	if os.Getenv("STORAGE_DRIVER") == "" {
		_ = os.Setenv("STORAGE_DRIVER", config.DriverPostgres)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if err := run(context.Background(), cfg, log, command); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger, command string) error {
	if cfg.StorageDriver != config.DriverPostgres {
		return fmt.Errorf("migrations require STORAGE_DRIVER=postgres, got %s", cfg.StorageDriver)
	}

	db, err := database.Connect(ctx, cfg.DSN(), logrus.NewEntry(log))
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	switch command {
	case "up":
		if err := database.Migrate(ctx, sqlDB); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	case "status":
		return database.Status(ctx, sqlDB)
	default:
		return fmt.Errorf("unknown command %q, want up or status", command)
	}
}

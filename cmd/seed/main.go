package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oksasatya/users-service/config"
	"github.com/oksasatya/users-service/internal/application"
	"github.com/oksasatya/users-service/internal/container"
	pginfra "github.com/oksasatya/users-service/internal/infrastructure/postgres"
	"github.com/oksasatya/users-service/internal/router"
	"github.com/oksasatya/users-service/pkg/helpers"
)

// seed creates a demo user through the same command pipeline as the API.
// Its event is left in the outbox for the API's relay to publish.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	container.SetLogger(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.AppName, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	bus := router.BuildBus(pginfra.NewStore(pool), nil, nil)
	cmd := application.CreateUserCommand{
		Username:    "demouser",
		Email:       "demo@example.com",
		FirstName:   "Demo",
		LastName:    "User",
		DateOfBirth: time.Date(1990, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
	res, err := application.Send[application.CreateUserCommand, uuid.UUID](ctx, bus, cmd)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	if !res.IsSuccess() {
		fmt.Printf("seed skipped: %s\n", res.Message())
		return
	}
	fmt.Printf("seeded user: id=%s username=%s email=%s\n", res.Value(), cmd.Username, cmd.Email)
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"coursehub/internal/config"
	"coursehub/internal/db"
	"coursehub/internal/repository"
	"coursehub/internal/service"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	userSvc := service.NewUserService(logger, repository.NewPgUserRepository(pool))

	console := newConsole(userSvc, os.Stdin, os.Stdout)
	if err := console.Run(ctx); err != nil {
		log.Fatalf("consola: %v", err)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"mcq-bot/internal/config"
	"mcq-bot/internal/logger"
	"mcq-bot/internal/service"

	"go.uber.org/zap"
)

// token prints a bearer token for the command layer.
func main() {
	owner := flag.String("owner", "", "owner id to issue the token for")
	flag.Parse()
	if *owner == "" {
		log.Fatal("-owner is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	tokens, err := service.NewTokenService(cfg.Auth, logger.Get())
	if err != nil {
		logger.Get().Fatal("Failed to create TokenService", zap.Error(err))
	}
	token, err := tokens.IssueToken(context.Background(), *owner)
	if err != nil {
		logger.Get().Fatal("Failed to issue token", zap.Error(err))
	}
	fmt.Println(token)
}

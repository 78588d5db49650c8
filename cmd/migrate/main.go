package main

import (
	"flag"
	"log"

	"mcq-bot/internal/config"
	"mcq-bot/internal/database"
	"mcq-bot/internal/logger"

	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "revert every migration instead of applying them")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXDB(cfg.DB)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB, cfg.DB.Driver, *down, l); err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err))
	}
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mcq-bot/internal/adapter/extract"
	"mcq-bot/internal/adapter/llm"
	"mcq-bot/internal/adapter/quizgen"
	"mcq-bot/internal/config"
	"mcq-bot/internal/database"
	"mcq-bot/internal/logger"
	"mcq-bot/internal/repository"
	"mcq-bot/internal/service"

	"go.uber.org/zap"
)

// ingest generates questions from local documents into an owner's bank.
//
//	ingest -owner alice notes.pdf chapter2.docx
func main() {
	owner := flag.String("owner", "", "owner id whose bank receives the questions")
	flag.Parse()
	if *owner == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: ingest -owner <id> <file>...")
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	db, err := database.NewSQLXDB(cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(db.DB, cfg.DB.Driver, false, log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	transport, err := llm.NewTransport(cfg.LLM)
	if err != nil {
		log.Fatal("Failed to create LLM transport", zap.Error(err))
	}

	txManager := repository.NewTransactionManagerAdapter(db)
	bank := service.NewBankService(
		repository.NewSQLXQuestionRepository(db),
		repository.NewSQLXKnowledgeRepository(db),
		repository.NewSQLXStatsRepository(db),
		txManager, nil, 0, log.Named("bank"))
	settings := service.NewSettingsService(repository.NewSQLXSettingsRepository(db), cfg, log.Named("settings"))
	ingestion := service.NewIngestionService(
		extract.NewExtractor(log.Named("extractor")),
		service.NewChunker(cfg.Chunker.WordsPerChunk),
		quizgen.NewGenerator(transport, cfg.LLM, log.Named("generator")),
		quizgen.NewParser(log.Named("parser")),
		bank, settings, cfg.LLM.MaxConcurrency, log.Named("ingestion"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := 0
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("Failed to read file", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}

		summary, err := ingestion.UploadDocument(ctx, *owner, path, data)
		if summary != nil {
			_ = encoder.Encode(summary)
		}
		if err != nil {
			log.Error("Ingestion failed", zap.String("path", path), zap.Error(err))
			failed++
		}
		if ctx.Err() != nil {
			break
		}
	}

	if failed > 0 {
		log.Warn("Ingestion finished with failures", zap.Int("failed", failed), zap.Int("files", flag.NArg()))
		os.Exit(1)
	}
	log.Info("Ingestion finished", zap.Int("files", flag.NArg()))
}

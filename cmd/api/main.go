package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	_ "time/tzdata"

	"mcq-bot/internal/adapter"
	"mcq-bot/internal/adapter/extract"
	"mcq-bot/internal/adapter/llm"
	"mcq-bot/internal/adapter/quizgen"
	"mcq-bot/internal/cache"
	"mcq-bot/internal/config"
	"mcq-bot/internal/database"
	"mcq-bot/internal/domain"
	"mcq-bot/internal/handler"
	"mcq-bot/internal/logger"
	"mcq-bot/internal/middleware"
	"mcq-bot/internal/repository"
	"mcq-bot/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXDB(cfg.DB)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(db.DB, cfg.DB.Driver, false, appLogger); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Initialize repositories
	questionRepository := repository.NewSQLXQuestionRepository(db)
	knowledgeRepository := repository.NewSQLXKnowledgeRepository(db)
	statsRepository := repository.NewSQLXStatsRepository(db)
	settingsRepository := repository.NewSQLXSettingsRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Redis is optional; without it bank summaries are computed on every read
	var summaryCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			summaryCache = adapter.NewRedisCacheAdapter(redisClient)
			appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
		}
	}

	// LLM transport and generation pipeline
	transport, err := llm.NewTransport(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM transport", zap.Error(err))
	}
	appLogger.Info("LLM transport initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model))
	generator := quizgen.NewGenerator(transport, cfg.LLM, appLogger.Named("generator"))
	parser := quizgen.NewParser(appLogger.Named("parser"))
	extractor := extract.NewExtractor(appLogger.Named("extractor"))

	// Initialize services
	bankService := service.NewBankService(questionRepository, knowledgeRepository, statsRepository,
		txManager, summaryCache, cfg.Redis.StatsTTL, appLogger.Named("bank"))
	statsTracker := service.NewStatsTracker(statsRepository, txManager, summaryCache, cfg.Redis.StatsTTL, appLogger.Named("stats"))
	settingsService := service.NewSettingsService(settingsRepository, cfg, appLogger.Named("settings"))
	sessionManager := service.NewSessionManager(bankService, statsTracker, settingsService, appLogger.Named("session"))
	ingestionService := service.NewIngestionService(extractor, service.NewChunker(cfg.Chunker.WordsPerChunk),
		generator, parser, bankService, settingsService, cfg.LLM.MaxConcurrency, appLogger.Named("ingestion"))

	tokenService, err := service.NewTokenService(cfg.Auth, appLogger.Named("auth"))
	if err != nil {
		appLogger.Fatal("Failed to create TokenService", zap.Error(err))
	}

	// Scheduler
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if cfg.Scheduler.Enabled {
		scheduler := service.NewScheduler(settingsRepository, sessionManager, nil,
			cfg.Scheduler.TickInterval, cfg.Scheduler.FireWindow, appLogger.Named("scheduler"))
		go scheduler.Run(ctx)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))

	handler.SetupRoutes(app, handler.Handlers{
		Quiz:     handler.NewQuizHandler(sessionManager),
		Upload:   handler.NewUploadHandler(ingestionService),
		Bank:     handler.NewBankHandler(bankService),
		Settings: handler.NewSettingsHandler(settingsService, statsTracker, bankService),
	}, tokenService)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}

package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/staffsense/staffsense-engine/pkg/config"
	"github.com/staffsense/staffsense-engine/pkg/database"
	"github.com/staffsense/staffsense-engine/pkg/handlers"
	"github.com/staffsense/staffsense-engine/pkg/llm"
	"github.com/staffsense/staffsense-engine/pkg/middleware"
	"github.com/staffsense/staffsense-engine/pkg/repositories"
	"github.com/staffsense/staffsense-engine/pkg/retrieval"
	"github.com/staffsense/staffsense-engine/pkg/schema"
	"github.com/staffsense/staffsense-engine/pkg/services"
	sqlsafe "github.com/staffsense/staffsense-engine/pkg/sql"
	syncpkg "github.com/staffsense/staffsense-engine/pkg/sync"
	"github.com/staffsense/staffsense-engine/pkg/vectorstore"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", cfg.Database.Host),
		zap.String("vector_store", cfg.VectorStore.Path),
		zap.String("llm_endpoint", cfg.LLM.Endpoint),
		zap.Bool("force_fallback", cfg.Router.ForceFallback),
		zap.Duration("sync_interval", cfg.Sync.Interval()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HR database (read-only from this service's perspective).
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Embedded similarity index.
	store, err := vectorstore.Open(cfg.VectorStore.Path, cfg.VectorStore.Dimensions)
	if err != nil {
		logger.Fatal("Failed to open vector store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	llmClient, err := llm.NewClient(&llm.Config{
		Endpoint:       cfg.LLM.Endpoint,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		APIKey:         cfg.LLM.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	catalog := schema.Default()
	repo := repositories.NewEmployeeRepository(db)

	// Checkpoint store: Redis when configured, local file otherwise.
	var checkpoints syncpkg.CheckpointStore
	redisClient, err := database.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		checkpoints = syncpkg.NewRedisCheckpointStore(redisClient, "")
		logger.Info("Using Redis checkpoint store")
	} else {
		checkpoints = syncpkg.NewFileCheckpointStore(cfg.Sync.CheckpointPath)
		logger.Info("Using file checkpoint store", zap.String("path", cfg.Sync.CheckpointPath))
	}

	detector := syncpkg.NewDetector(repo)
	engine := syncpkg.NewEngine(repo, detector, store, llmClient, checkpoints, logger)
	runner := syncpkg.NewRunner(engine, cfg.Sync.Interval(), logger)
	go runner.Run(ctx)

	generator := llm.NewGenerator(llmClient, catalog.Describe())
	validator := sqlsafe.NewValidator(catalog)
	retriever := retrieval.NewRetriever(store, llmClient, logger)
	summarizer := services.NewSummarizer(llmClient)
	queryService := services.NewQueryService(
		generator, validator, repo, retriever, summarizer,
		cfg.Router.ForceFallback, cfg.Router.FallbackTopK, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, store, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(queryService, logger).RegisterRoutes(mux)
	handlers.NewSyncHandler(engine, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Starting staffsense-engine",
		zap.String("addr", server.Addr),
		zap.String("version", cfg.Version))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

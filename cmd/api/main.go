package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"alfredoptarigan/job-companion/internal/config"
	"alfredoptarigan/job-companion/internal/handlers"
	"alfredoptarigan/job-companion/internal/logger"
	"alfredoptarigan/job-companion/internal/metrics"
	"alfredoptarigan/job-companion/internal/repositories"
	"alfredoptarigan/job-companion/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	zlog := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer zlog.Sync()
	zlog.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Load salary dataset
	loader, err := newDatasetLoader(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize dataset source", zap.Error(err))
	}
	dataset, err := loader.Load(ctx)
	if err != nil {
		zlog.Fatal("❌ Failed to load salary dataset", zap.Error(err))
	}
	metrics.DatasetRows.Set(float64(dataset.Len()))
	zlog.Info("✅ Salary dataset loaded",
		zap.String("source", cfg.Dataset.Source),
		zap.Int("rows", dataset.Len()),
	)

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize Gemini AI", zap.Error(err))
	}
	if cfg.Gemini.APIKey == "" {
		zlog.Info("ℹ️  No GEMINI_API_KEY set; users must supply their own key")
	}
	zlog.Info("✅ Gemini AI initialized successfully",
		zap.String("backend", cfg.Gemini.Backend),
		zap.String("model", cfg.Gemini.Model),
	)

	guidance := newGuidanceRetriever(ctx, cfg, zlog)

	analyzer := services.NewAnalyzerService(
		services.NewDocumentExtractor(),
		geminiService,
		guidance,
		cfg.Upload.MaxFileSize,
		zlog,
	)
	zlog.Info("✅ Analyzer service initialized")

	// Initialize Handlers
	validate := validator.New()
	app := handlers.NewApp(handlers.Handlers{
		Analyze: handlers.NewAnalyzeHandler(analyzer, validate, cfg.Upload.MaxFileSize),
		Trends:  handlers.NewTrendsHandler(dataset, validate),
		Page:    handlers.NewPageHandler(analyzer, dataset, validate, cfg.Upload.MaxFileSize, zlog),
	}, handlers.AppOptions{
		MaxFileSize:     cfg.Upload.MaxFileSize,
		UpstreamTimeout: cfg.Gemini.Timeout,
		AccessLog:       true,
	})
	zlog.Info("✅ Handlers initialized")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.Gemini.Timeout); err != nil {
			zlog.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("❌ Failed to start server", zap.Error(err))
	}
}

func newDatasetLoader(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (services.DatasetLoader, error) {
	switch cfg.Dataset.Source {
	case "s3":
		return services.NewS3DatasetLoader(ctx, cfg.Dataset.AWSRegion, cfg.Dataset.Path)
	case "postgres":
		db, err := config.InitDatabase(cfg, zlog)
		if err != nil {
			return nil, err
		}
		return services.NewRepositoryDatasetLoader(repositories.NewSalaryRepository(db)), nil
	default:
		return services.NewFileDatasetLoader(cfg.Dataset.Path), nil
	}
}

// newGuidanceRetriever falls back to no guidance when Qdrant is not
// configured or not reachable.
func newGuidanceRetriever(ctx context.Context, cfg *config.Config, zlog *zap.Logger) services.GuidanceRetriever {
	if !cfg.GuidanceEnabled() {
		return services.NewNoopGuidanceRetriever()
	}
	if cfg.Gemini.APIKey == "" {
		zlog.Warn("⚠️  Guidance disabled: embeddings need GEMINI_API_KEY")
		return services.NewNoopGuidanceRetriever()
	}

	embeddings, err := services.NewEmbeddingService(cfg.Gemini.APIKey, cfg.Gemini.EmbedModel)
	if err != nil {
		zlog.Warn("⚠️  Guidance disabled", zap.Error(err))
		return services.NewNoopGuidanceRetriever()
	}

	qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, zlog)
	if err != nil {
		zlog.Warn("⚠️  Guidance disabled", zap.Error(err))
		return services.NewNoopGuidanceRetriever()
	}
	if err := qdrantService.InitCollection(ctx); err != nil {
		zlog.Warn("⚠️  Guidance disabled", zap.Error(err))
		return services.NewNoopGuidanceRetriever()
	}

	zlog.Info("✅ Qdrant initialized successfully", zap.String("collection", cfg.Qdrant.Collection))
	return services.NewGuidanceRetriever(embeddings, qdrantService, cfg.Qdrant.TopK, zlog)
}

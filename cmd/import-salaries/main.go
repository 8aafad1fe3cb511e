package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/job-companion/internal/config"
	"alfredoptarigan/job-companion/internal/logger"
	"alfredoptarigan/job-companion/internal/repositories"
	"alfredoptarigan/job-companion/internal/services"
)

// Loads a salary CSV (local path or s3:// URI) and replaces the contents of
// the salary_records table with it.
func main() {
	cfg := config.Load()

	source := flag.String("source", cfg.Dataset.Path, "CSV path or s3://bucket/key URI")
	flag.Parse()

	zlog := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var loader services.DatasetLoader
	if _, _, err := services.ParseS3URI(*source); err == nil {
		s3Loader, err := services.NewS3DatasetLoader(ctx, cfg.Dataset.AWSRegion, *source)
		if err != nil {
			zlog.Fatal("❌ Failed to initialize S3", zap.Error(err))
		}
		loader = s3Loader
	} else {
		loader = services.NewFileDatasetLoader(*source)
	}

	dataset, err := loader.Load(ctx)
	if err != nil {
		zlog.Fatal("❌ Failed to load dataset", zap.String("source", *source), zap.Error(err))
	}
	zlog.Info("📄 Parsed salary CSV",
		zap.String("source", *source),
		zap.Int("rows", dataset.Len()),
	)

	db, err := config.InitDatabase(cfg, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize database", zap.Error(err))
	}

	repo := repositories.NewSalaryRepository(db)
	if err := repo.ReplaceAll(ctx, dataset.Records()); err != nil {
		zlog.Fatal("❌ Failed to import salary records", zap.Error(err))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		zlog.Fatal("❌ Failed to count salary records", zap.Error(err))
	}

	zlog.Info("✅ Imported salary records", zap.Int64("records", count))
}

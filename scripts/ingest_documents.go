package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/job-companion/internal/config"
	"alfredoptarigan/job-companion/internal/logger"
	"alfredoptarigan/job-companion/internal/services"
)

// Ingests resume-writing guideline documents (PDF, DOCX or text) into Qdrant.
//
//	go run ./scripts/ingest_documents.go -dir ./reference_docs
func main() {
	dir := flag.String("dir", "./reference_docs", "directory containing guideline documents")
	flag.Parse()

	log.Println("🚀 Starting guideline ingestion...")

	// Load configuration
	cfg := config.Load()
	if cfg.Qdrant.URL == "" {
		log.Fatal("❌ QDRANT_URL is required")
	}
	if cfg.Gemini.APIKey == "" {
		log.Fatal("❌ GEMINI_API_KEY is required to generate embeddings")
	}

	zlog := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer zlog.Sync()

	// Initialize services
	embeddings, err := services.NewEmbeddingService(cfg.Gemini.APIKey, cfg.Gemini.EmbedModel)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize embeddings", zap.Error(err))
	}

	qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize Qdrant", zap.Error(err))
	}

	ctx := context.Background()
	if err := qdrantService.InitCollection(ctx); err != nil {
		zlog.Fatal("❌ Failed to initialize collection", zap.Error(err))
	}

	extractor := services.NewDocumentExtractor()
	ingester := services.NewGuidanceIngester(embeddings, qdrantService, zlog)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		zlog.Fatal("❌ Failed to read directory", zap.String("dir", *dir), zap.Error(err))
	}

	successCount := 0
	failCount := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(*dir, entry.Name())
		log.Printf("\n📄 Processing: %s", path)

		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("   ❌ Failed to read file: %v", err)
			failCount++
			continue
		}

		text, err := extractor.Extract(data, entry.Name())
		if err != nil {
			log.Printf("   ❌ Failed to extract text: %v", err)
			failCount++
			continue
		}
		log.Printf("   ✅ Extracted %d characters", len(text))

		chunks, err := ingester.Ingest(ctx, entry.Name(), text)
		if err != nil {
			log.Printf("   ❌ Failed after %d chunks: %v", chunks, err)
			failCount++
			continue
		}

		log.Printf("   ✅ Stored %d chunks", chunks)
		successCount++
	}

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Ingestion Summary:")
	log.Printf("   ✅ Successful: %d documents", successCount)
	log.Printf("   ❌ Failed: %d documents", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some documents failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All documents ingested successfully!")
}

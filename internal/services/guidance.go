package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// GuidanceRetriever looks up reference guidelines relevant to a resume.
type GuidanceRetriever interface {
	Retrieve(ctx context.Context, resumeText string) (string, error)
}

type guidanceRetriever struct {
	embeddings    EmbeddingService
	qdrant        QdrantService
	promptBuilder *PromptBuilder
	topK          int
	log           *zap.Logger
}

func NewGuidanceRetriever(embeddings EmbeddingService, qdrant QdrantService, topK int, log *zap.Logger) GuidanceRetriever {
	return &guidanceRetriever{
		embeddings:    embeddings,
		qdrant:        qdrant,
		promptBuilder: NewPromptBuilder(),
		topK:          topK,
		log:           log,
	}
}

// Retrieve implements GuidanceRetriever.
func (g *guidanceRetriever) Retrieve(ctx context.Context, resumeText string) (string, error) {
	query := g.promptBuilder.BuildGuidanceQuery(resumeText)

	embedding, err := g.embeddings.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := g.qdrant.SearchSimilar(ctx, embedding, guidanceDocType, g.topK)
	if err != nil {
		return "", fmt.Errorf("failed to search guidelines: %w", err)
	}

	g.log.Debug("🔍 Retrieved guidelines", zap.Int("count", len(results)))

	return FormatGuidanceContext(results), nil
}

type noopGuidanceRetriever struct{}

// NewNoopGuidanceRetriever is used when no vector store is configured.
func NewNoopGuidanceRetriever() GuidanceRetriever {
	return noopGuidanceRetriever{}
}

func (noopGuidanceRetriever) Retrieve(context.Context, string) (string, error) {
	return "", nil
}

// GuidanceIngester chunks a reference document and stores its embeddings.
type GuidanceIngester struct {
	embeddings EmbeddingService
	qdrant     QdrantService
	chunker    TextChunker
	log        *zap.Logger
}

func NewGuidanceIngester(embeddings EmbeddingService, qdrant QdrantService, log *zap.Logger) *GuidanceIngester {
	return &GuidanceIngester{
		embeddings: embeddings,
		qdrant:     qdrant,
		chunker:    NewTextChunker(),
		log:        log,
	}
}

// Ingest replaces every chunk previously stored for source and returns the
// number of chunks written.
func (gi *GuidanceIngester) Ingest(ctx context.Context, source, text string) (int, error) {
	chunks := gi.chunker.ChunkText(text, defaultChunkSize, defaultChunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%s: %w", source, ErrUnreadableDocument)
	}

	if err := gi.qdrant.DeleteSource(ctx, source); err != nil {
		return 0, err
	}

	for i, chunk := range chunks {
		embedding, err := gi.embeddings.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return i, fmt.Errorf("chunk %d of %s: %w", i, source, err)
		}

		err = gi.qdrant.UpsertChunk(ctx, GuidanceChunk{
			Source:  source,
			DocType: guidanceDocType,
			Index:   i,
			Text:    chunk,
		}, embedding)
		if err != nil {
			return i, fmt.Errorf("chunk %d of %s: %w", i, source, err)
		}
	}

	gi.log.Info("✅ Guideline ingested", zap.String("source", source), zap.Int("chunks", len(chunks)))

	return len(chunks), nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/job-companion/internal/metrics"
	"alfredoptarigan/job-companion/internal/models"
)

// AnalyzeInput is one user submission. ResumeData is held in memory only.
type AnalyzeInput struct {
	ResumeData     []byte
	Filename       string
	JobDescription string
	APIKey         string
}

type AnalyzerService interface {
	AnalyzeResume(ctx context.Context, in AnalyzeInput) (*models.ResumeScoreResult, *APIResponse, error)
	AnalyzeAlignment(ctx context.Context, in AnalyzeInput) (*models.AlignmentResult, *APIResponse, error)
}

type analyzerService struct {
	extractor     DocumentExtractor
	gemini        GeminiService
	guidance      GuidanceRetriever
	promptBuilder *PromptBuilder
	maxFileSize   int64
	log           *zap.Logger
}

func NewAnalyzerService(
	extractor DocumentExtractor,
	gemini GeminiService,
	guidance GuidanceRetriever,
	maxFileSize int64,
	log *zap.Logger,
) AnalyzerService {
	if guidance == nil {
		guidance = NewNoopGuidanceRetriever()
	}
	return &analyzerService{
		extractor:     extractor,
		gemini:        gemini,
		guidance:      guidance,
		promptBuilder: NewPromptBuilder(),
		maxFileSize:   maxFileSize,
		log:           log,
	}
}

// AnalyzeResume implements AnalyzerService.
func (a *analyzerService) AnalyzeResume(ctx context.Context, in AnalyzeInput) (result *models.ResumeScoreResult, resp *APIResponse, err error) {
	defer func() { a.record(models.ModeResumeScore, err) }()

	resumeText, err := a.extract(in)
	if err != nil {
		return nil, nil, err
	}

	prompt := a.promptBuilder.BuildResumeScorePrompt(resumeText, a.retrieveGuidance(ctx, resumeText))

	resp, err = a.generate(ctx, models.ModeResumeScore, prompt, in.APIKey)
	if err != nil {
		return nil, nil, err
	}

	result, err = ParseResumeScore(resp)
	if err != nil {
		return nil, resp, err
	}

	a.log.Info("✅ Resume scored",
		zap.Int("score", result.ResumeScore),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, resp, nil
}

// AnalyzeAlignment implements AnalyzerService.
func (a *analyzerService) AnalyzeAlignment(ctx context.Context, in AnalyzeInput) (result *models.AlignmentResult, resp *APIResponse, err error) {
	defer func() { a.record(models.ModeAlignment, err) }()

	jobDescription := strings.TrimSpace(in.JobDescription)
	if jobDescription == "" {
		return nil, nil, ErrMissingJobDescription
	}

	resumeText, err := a.extract(in)
	if err != nil {
		return nil, nil, err
	}

	prompt := a.promptBuilder.BuildAlignmentPrompt(resumeText, jobDescription, a.retrieveGuidance(ctx, resumeText))

	resp, err = a.generate(ctx, models.ModeAlignment, prompt, in.APIKey)
	if err != nil {
		return nil, nil, err
	}

	result, err = ParseAlignment(resp)
	if err != nil {
		return nil, resp, err
	}

	a.log.Info("✅ Alignment checked",
		zap.Int("score", result.AlignmentScore),
		zap.Int("present", len(result.TechnologiesPresent)),
		zap.Int("missing", len(result.TechnologiesNotPresent)),
	)
	return result, resp, nil
}

func (a *analyzerService) extract(in AnalyzeInput) (string, error) {
	if len(in.ResumeData) == 0 {
		return "", ErrMissingResume
	}
	if a.maxFileSize > 0 && int64(len(in.ResumeData)) > a.maxFileSize {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrDocumentTooLarge, len(in.ResumeData), a.maxFileSize)
	}

	docType := detectType(in.ResumeData, in.Filename)
	text, err := a.extractor.Extract(in.ResumeData, in.Filename)
	if err != nil {
		metrics.DocumentsExtracted.WithLabelValues(docType, "failed").Inc()
		a.log.Warn("⚠️  Failed to extract resume text",
			zap.String("filename", in.Filename),
			zap.String("type", docType),
			zap.Error(err),
		)
		return "", err
	}
	metrics.DocumentsExtracted.WithLabelValues(docType, "ok").Inc()

	a.log.Debug("📄 Resume text extracted", zap.Int("chars", len(text)))
	return text, nil
}

// retrieveGuidance never fails the analysis; a broken vector store only
// costs the prompt its reference section.
func (a *analyzerService) retrieveGuidance(ctx context.Context, resumeText string) string {
	guidance, err := a.guidance.Retrieve(ctx, resumeText)
	if err != nil {
		a.log.Warn("⚠️  Failed to retrieve guidance", zap.Error(err))
		return ""
	}
	return guidance
}

func (a *analyzerService) generate(ctx context.Context, mode models.AnalysisMode, prompt, apiKey string) (*APIResponse, error) {
	a.log.Debug("📝 Prompt built", zap.String("mode", string(mode)), zap.Int("chars", len(prompt)))

	resp, err := a.gemini.Generate(ctx, prompt, apiKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mode.Title(), err)
	}
	return resp, nil
}

func (a *analyzerService) record(mode models.AnalysisMode, err error) {
	outcome := "success"
	if err != nil {
		kind, _ := Classify(err)
		outcome = string(kind)
		a.log.Error("❌ Analysis failed", zap.String("mode", string(mode)), zap.String("kind", outcome), zap.Error(err))
	}
	metrics.AnalysesTotal.WithLabelValues(string(mode), outcome).Inc()
}

package handlers

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/job-companion/internal/models"
	"alfredoptarigan/job-companion/internal/services"
)

type AnalyzeHandler struct {
	analyzer    services.AnalyzerService
	validate    *validator.Validate
	maxFileSize int64
}

func NewAnalyzeHandler(analyzer services.AnalyzerService, validate *validator.Validate, maxFileSize int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:    analyzer,
		validate:    validate,
		maxFileSize: maxFileSize,
	}
}

// HandleScore handles POST /api/v1/resume/score
func (h *AnalyzeHandler) HandleScore(c *fiber.Ctx) error {
	in, err := h.parseInput(c)
	if err != nil {
		return err
	}

	result, resp, err := h.analyzer.AnalyzeResume(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, resp)
	}

	return c.JSON(models.AnalysisResponse{
		ID:          uuid.NewString(),
		Mode:        models.ModeResumeScore,
		View:        services.NewScoreView(result),
		APIResponse: resp.Map(),
	})
}

// HandleAlignment handles POST /api/v1/resume/alignment
func (h *AnalyzeHandler) HandleAlignment(c *fiber.Ctx) error {
	in, err := h.parseInput(c)
	if err != nil {
		return err
	}

	result, resp, err := h.analyzer.AnalyzeAlignment(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, resp)
	}

	return c.JSON(models.AnalysisResponse{
		ID:          uuid.NewString(),
		Mode:        models.ModeAlignment,
		View:        services.NewAlignmentView(result),
		APIResponse: resp.Map(),
	})
}

func (h *AnalyzeHandler) parseInput(c *fiber.Ctx) (services.AnalyzeInput, error) {
	var form models.AnalyzeForm
	if err := c.BodyParser(&form); err != nil {
		return services.AnalyzeInput{}, fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}
	if err := h.validate.Struct(form); err != nil {
		return services.AnalyzeInput{}, validationError(err)
	}

	data, filename, err := readResume(c, h.maxFileSize)
	if err != nil {
		return services.AnalyzeInput{}, err
	}

	return services.AnalyzeInput{
		ResumeData:     data,
		Filename:       filename,
		JobDescription: form.JobDescription,
		APIKey:         form.APIKey,
	}, nil
}

// readResume loads the "resume" upload into memory. Nothing is written to
// disk.
func readResume(c *fiber.Ctx, maxFileSize int64) ([]byte, string, error) {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return nil, "", services.ErrMissingResume
	}

	if maxFileSize > 0 && fileHeader.Size > maxFileSize {
		return nil, "", fmt.Errorf("%w: max size is %d bytes", services.ErrDocumentTooLarge, maxFileSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}

	return data, fileHeader.Filename, nil
}

package handlers

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/job-companion/internal/metrics"
	"alfredoptarigan/job-companion/internal/models"
	"alfredoptarigan/job-companion/internal/services"
)

type modeOption struct {
	Value    models.AnalysisMode
	Title    string
	Selected bool
}

// PageData is everything the index template renders.
type PageData struct {
	Modes          []modeOption
	Mode           models.AnalysisMode
	Title          string
	JobDescription string
	Score          *services.ScoreView
	Alignment      *services.AlignmentView
	Trends         *services.TrendsView
	Error          string
	APIResponse    string
}

type PageHandler struct {
	analyzer    services.AnalyzerService
	dataset     *services.Dataset
	validate    *validator.Validate
	maxFileSize int64
	log         *zap.Logger
}

func NewPageHandler(
	analyzer services.AnalyzerService,
	dataset *services.Dataset,
	validate *validator.Validate,
	maxFileSize int64,
	log *zap.Logger,
) *PageHandler {
	return &PageHandler{
		analyzer:    analyzer,
		dataset:     dataset,
		validate:    validate,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// HandlePage handles GET / and POST /. A GET only renders the selected mode;
// a POST with a resume runs the analysis for that mode.
func (h *PageHandler) HandlePage(c *fiber.Ctx) error {
	var form models.PageForm
	var err error
	if c.Method() == fiber.MethodPost {
		err = c.BodyParser(&form)
	} else {
		err = c.QueryParser(&form)
	}
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form")
	}
	if err := h.validate.Struct(form); err != nil {
		return validationError(err)
	}

	mode := models.AnalysisMode(form.Mode)
	if mode == "" {
		mode = models.ModeResumeScore
	}

	data := PageData{
		Modes:          modeOptions(mode),
		Mode:           mode,
		Title:          mode.Title(),
		JobDescription: form.JobDescription,
	}

	switch mode {
	case models.ModeJobTrends:
		metrics.DatasetQueries.Inc()
		view := services.NewTrendsView(h.dataset, form.JobTitle, form.CompanyLocation)
		data.Trends = &view
	case models.ModeResumeScore, models.ModeAlignment:
		if c.Method() == fiber.MethodPost {
			h.analyze(c, mode, form, &data)
		}
	}

	return c.Render("index", data)
}

// analyze fills the result or the error message; failures never break the
// page.
func (h *PageHandler) analyze(c *fiber.Ctx, mode models.AnalysisMode, form models.PageForm, data *PageData) {
	resume, filename, err := readResume(c, h.maxFileSize)
	if err != nil {
		h.log.Debug("Upload rejected", zap.String("mode", string(mode)), zap.Error(err))
		data.Error = services.UserMessage(err)
		return
	}

	in := services.AnalyzeInput{
		ResumeData:     resume,
		Filename:       filename,
		JobDescription: form.JobDescription,
		APIKey:         form.APIKey,
	}

	var resp *services.APIResponse
	if mode == models.ModeAlignment {
		var result *models.AlignmentResult
		result, resp, err = h.analyzer.AnalyzeAlignment(c.UserContext(), in)
		if err == nil {
			view := services.NewAlignmentView(result)
			data.Alignment = &view
		}
	} else {
		var result *models.ResumeScoreResult
		result, resp, err = h.analyzer.AnalyzeResume(c.UserContext(), in)
		if err == nil {
			view := services.NewScoreView(result)
			data.Score = &view
		}
	}

	if err != nil {
		data.Error = services.UserMessage(err)
	}
	data.APIResponse = prettyJSON(resp)
}

func modeOptions(selected models.AnalysisMode) []modeOption {
	options := make([]modeOption, 0, len(models.Modes))
	for _, m := range models.Modes {
		options = append(options, modeOption{Value: m, Title: m.Title(), Selected: m == selected})
	}
	return options
}

func prettyJSON(resp *services.APIResponse) string {
	m := resp.Map()
	if m == nil {
		return ""
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}

package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/job-companion/internal/metrics"
	"alfredoptarigan/job-companion/internal/models"
	"alfredoptarigan/job-companion/internal/services"
)

type TrendsHandler struct {
	dataset  *services.Dataset
	validate *validator.Validate
}

func NewTrendsHandler(dataset *services.Dataset, validate *validator.Validate) *TrendsHandler {
	return &TrendsHandler{
		dataset:  dataset,
		validate: validate,
	}
}

// HandleTrends handles GET /api/v1/trends
func (h *TrendsHandler) HandleTrends(c *fiber.Ctx) error {
	var query models.TrendsQuery
	if err := c.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := h.validate.Struct(query); err != nil {
		return validationError(err)
	}

	metrics.DatasetQueries.Inc()

	return c.JSON(services.NewTrendsView(h.dataset, query.JobTitle, query.CompanyLocation))
}

// HandleOptions handles GET /api/v1/trends/options
func (h *TrendsHandler) HandleOptions(c *fiber.Ctx) error {
	return c.JSON(models.TrendsOptionsResponse{
		JobTitles: h.dataset.JobTitles(),
		Locations: h.dataset.Locations(),
		Rows:      h.dataset.Len(),
	})
}

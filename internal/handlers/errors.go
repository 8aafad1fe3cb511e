package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/job-companion/internal/models"
	"alfredoptarigan/job-companion/internal/services"
)

// ErrorHandler is the fiber error handler for the whole app. Pipeline errors
// are answered with their kind; fiber errors keep their own status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := services.KindInternal
		if fe.Code >= 400 && fe.Code < 500 {
			kind = services.KindInput
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{
			Error: fe.Message,
			Kind:  string(kind),
			Code:  fe.Code,
		})
	}

	return respondError(c, err, nil)
}

func respondError(c *fiber.Ctx, err error, resp *services.APIResponse) error {
	kind, code := services.Classify(err)
	return c.Status(code).JSON(models.ErrorResponse{
		Error:       err.Error(),
		Kind:        string(kind),
		Code:        code,
		APIResponse: resp.Map(),
	})
}

// validationError turns validator failures into a single input error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fiber.NewError(fiber.StatusBadRequest, "invalid request: "+strings.Join(fields, "; "))
}

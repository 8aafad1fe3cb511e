package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alfredoptarigan/job-companion/views"
)

// multipartOverhead leaves room for the form fields around the resume so an
// oversized upload is rejected by the handler with a proper error body.
const multipartOverhead = 1 << 20

type AppOptions struct {
	MaxFileSize int64
	// UpstreamTimeout bounds the analysis endpoints; the write timeout is
	// derived from it.
	UpstreamTimeout time.Duration
	AccessLog       bool
}

type Handlers struct {
	Analyze *AnalyzeHandler
	Trends  *TrendsHandler
	Page    *PageHandler
}

// NewApp builds the fiber app with middleware and every route registered.
func NewApp(h Handlers, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Job Companion",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: opts.UpstreamTimeout + 30*time.Second,
		BodyLimit:    int(opts.MaxFileSize) + multipartOverhead,
		ErrorHandler: ErrorHandler,
		Views:        views.NewEngine(),
	})

	// Middleware
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Page
	app.Get("/", h.Page.HandlePage)
	app.Post("/", h.Page.HandlePage)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Routes
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/resume/score", h.Analyze.HandleScore)
	api.Post("/resume/alignment", h.Analyze.HandleAlignment)
	api.Get("/trends", h.Trends.HandleTrends)
	api.Get("/trends/options", h.Trends.HandleOptions)

	return app
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/job-companion/internal/config"
	"alfredoptarigan/job-companion/internal/logger"
	"alfredoptarigan/job-companion/internal/metrics"
)

// APIResponse is the decoded-but-unvalidated body returned by
// generateContent. Both backends produce the same JSON shape.
type APIResponse struct {
	Raw []byte
}

// Map returns the body as untyped JSON, or nil when it is not an object.
func (r *APIResponse) Map() map[string]any {
	if r == nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(r.Raw, &m); err != nil {
		return nil
	}
	return m
}

type GeminiService interface {
	// Generate sends a single prompt and returns the full response body.
	// apiKey overrides the configured key when non-empty.
	Generate(ctx context.Context, prompt, apiKey string) (*APIResponse, error)
}

type generateContentRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

func NewGeminiService(cfg config.GeminiConfig, log *zap.Logger) (GeminiService, error) {
	switch cfg.Backend {
	case "", "rest":
		return &restGeminiService{
			baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
			modelName:  cfg.Model,
			defaultKey: cfg.APIKey,
			timeout:    cfg.Timeout,
			log:        log,
		}, nil
	case "genai":
		return &sdkGeminiService{
			baseURL:    cfg.BaseURL,
			modelName:  cfg.Model,
			defaultKey: cfg.APIKey,
			timeout:    cfg.Timeout,
			log:        log,
		}, nil
	default:
		return nil, fmt.Errorf("unknown LLM backend %q", cfg.Backend)
	}
}

type restGeminiService struct {
	baseURL    string
	modelName  string
	defaultKey string
	timeout    time.Duration
	log        *zap.Logger
}

func (g *restGeminiService) endpoint(apiKey string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, g.modelName, url.QueryEscape(apiKey))
}

// Generate implements GeminiService.
func (g *restGeminiService) Generate(ctx context.Context, prompt, apiKey string) (*APIResponse, error) {
	apiKey = resolveKey(apiKey, g.defaultKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	timeout, err := effectiveTimeout(ctx, g.timeout)
	if err != nil {
		return nil, err
	}

	agent := fiber.Post(g.endpoint(apiKey))
	agent.JSON(generateContentRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
	})
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	start := time.Now()
	code, body, errs := agent.Bytes()
	status := strconv.Itoa(code)
	if len(errs) > 0 {
		status = "error"
	}
	metrics.UpstreamDuration.WithLabelValues("rest", status).Observe(time.Since(start).Seconds())

	if len(errs) > 0 {
		g.log.Error("❌ Gemini request failed", zap.Errors("errors", errs))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, errors.Join(errs...))
	}

	if code < 200 || code > 299 {
		g.log.Error("❌ Gemini API returned non-2xx status",
			zap.Int("status", code),
			zap.String("body", logger.Truncate(string(body), 512)),
		)
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, code, upstreamErrorMessage(body))
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response body is not JSON", ErrUpstreamUnavailable)
	}

	g.log.Debug("📊 Gemini response received", zap.Int("bytes", len(body)))

	return &APIResponse{Raw: body}, nil
}

type sdkGeminiService struct {
	baseURL    string
	modelName  string
	defaultKey string
	timeout    time.Duration
	log        *zap.Logger
}

// Generate implements GeminiService.
func (g *sdkGeminiService) Generate(ctx context.Context, prompt, apiKey string) (*APIResponse, error) {
	apiKey = resolveKey(apiKey, g.defaultKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	timeout, err := effectiveTimeout(ctx, g.timeout)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v", ErrUpstreamUnavailable, err)
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		metrics.UpstreamDuration.WithLabelValues("genai", "error").Observe(time.Since(start).Seconds())
		g.log.Error("❌ Gemini API error", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	metrics.UpstreamDuration.WithLabelValues("genai", "200").Observe(time.Since(start).Seconds())

	if resp == nil {
		return nil, fmt.Errorf("%w: no response generated (nil response)", ErrUpstreamUnavailable)
	}
	resp.SDKHTTPResponse = nil

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode response: %v", ErrUpstreamUnavailable, err)
	}

	return &APIResponse{Raw: raw}, nil
}

type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type embeddingService struct {
	client     *genai.Client
	embedModel string
}

func NewEmbeddingService(apiKey, embedModel string) (EmbeddingService, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &embeddingService{
		client:     client,
		embedModel: embedModel,
	}, nil
}

// GenerateEmbedding implements EmbeddingService.
func (e *embeddingService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// ~10000 tokens
	text = logger.Clip(text, 40000)

	result, err := e.client.Models.EmbedContent(ctx, e.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

func resolveKey(requestKey, defaultKey string) string {
	if k := strings.TrimSpace(requestKey); k != "" {
		return k
	}
	return defaultKey
}

// effectiveTimeout bounds the configured timeout by the context deadline.
func effectiveTimeout(ctx context.Context, configured time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	timeout := configured
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, context.DeadlineExceeded)
	}
	return timeout, nil
}

// upstreamErrorMessage pulls error.message out of a Google API error body.
func upstreamErrorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return msg.String()
	}
	return logger.Truncate(strings.TrimSpace(string(body)), 200)
}

package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/job-companion/internal/config"
)

const sampleReply = "Here is the analysis:\n```json\n{\n  \"resume_score\": 82,\n  \"suggestions\": \"Add metrics.\"\n}\n```\nGood luck!"

func candidateBody(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
					"role":  "model",
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func newRESTService(t *testing.T, baseURL, defaultKey string, timeout time.Duration) GeminiService {
	t.Helper()
	svc, err := NewGeminiService(config.GeminiConfig{
		APIKey:  defaultKey,
		BaseURL: baseURL,
		Model:   "test-model",
		Backend: "rest",
		Timeout: timeout,
	}, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestRESTGenerate_SendsExpectedRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "user-key", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req generateContentRequest
		require.NoError(t, json.Unmarshal(raw, &req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Equal(t, "score this resume", req.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(candidateBody(t, sampleReply))
	}))
	defer server.Close()

	svc := newRESTService(t, server.URL, "server-key", 5*time.Second)

	resp, err := svc.Generate(context.Background(), "score this resume", "user-key")

	require.NoError(t, err)
	text, err := ReplyText(resp)
	require.NoError(t, err)
	assert.Equal(t, sampleReply, text)
	assert.Contains(t, resp.Map(), "candidates")
}

func TestRESTGenerate_FallsBackToConfiguredKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "server-key", r.URL.Query().Get("key"))
		_, _ = w.Write(candidateBody(t, sampleReply))
	}))
	defer server.Close()

	svc := newRESTService(t, server.URL, "server-key", 5*time.Second)

	_, err := svc.Generate(context.Background(), "prompt", "  ")

	require.NoError(t, err)
}

func TestRESTGenerate_MissingKey(t *testing.T) {
	svc := newRESTService(t, "http://127.0.0.1:1", "", time.Second)

	_, err := svc.Generate(context.Background(), "prompt", "")

	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestRESTGenerate_Non2xxIsUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	svc := newRESTService(t, server.URL, "bad", 5*time.Second)

	_, err := svc.Generate(context.Background(), "prompt", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestRESTGenerate_MalformedBodyIsUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway</html>"))
	}))
	defer server.Close()

	svc := newRESTService(t, server.URL, "key", 5*time.Second)

	_, err := svc.Generate(context.Background(), "prompt", "")

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestRESTGenerate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write(candidateBody(t, sampleReply))
	}))
	defer server.Close()

	svc := newRESTService(t, server.URL, "key", 50*time.Millisecond)

	start := time.Now()
	_, err := svc.Generate(context.Background(), "prompt", "")

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestRESTGenerate_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	svc := newRESTService(t, baseURL, "key", time.Second)

	_, err := svc.Generate(context.Background(), "prompt", "")

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestRESTGenerate_CancelledContext(t *testing.T) {
	svc := newRESTService(t, "http://127.0.0.1:1", "key", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, "prompt", "")

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func newSDKService(t *testing.T, baseURL, defaultKey string, timeout time.Duration) GeminiService {
	t.Helper()
	svc, err := NewGeminiService(config.GeminiConfig{
		APIKey:  defaultKey,
		BaseURL: baseURL,
		Model:   "test-model",
		Backend: "genai",
		Timeout: timeout,
	}, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestSDKGenerate_UsesBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent"), r.URL.Path)
		assert.Equal(t, "user-key", r.Header.Get("x-goog-api-key"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "score this resume")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(candidateBody(t, sampleReply))
	}))
	defer server.Close()

	svc := newSDKService(t, server.URL, "server-key", 5*time.Second)

	resp, err := svc.Generate(context.Background(), "score this resume", "user-key")

	require.NoError(t, err)
	assert.NotContains(t, resp.Map(), "sdkHttpResponse")

	result, err := ParseResumeScore(resp)
	require.NoError(t, err)
	assert.Equal(t, 82, result.ResumeScore)
	assert.Equal(t, "Add metrics.", result.Suggestions)
}

func TestSDKGenerate_Non2xxIsUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	svc := newSDKService(t, server.URL, "server-key", 5*time.Second)

	resp, err := svc.Generate(context.Background(), "prompt", "")

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Nil(t, resp)
	kind, _ := Classify(err)
	assert.Equal(t, KindUpstream, kind)
}

func TestSDKGenerate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write(candidateBody(t, sampleReply))
	}))
	defer server.Close()

	svc := newSDKService(t, server.URL, "server-key", 50*time.Millisecond)

	start := time.Now()
	_, err := svc.Generate(context.Background(), "prompt", "")

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestSDKGenerate_MissingKey(t *testing.T) {
	svc := newSDKService(t, "http://127.0.0.1:1", "", time.Second)

	_, err := svc.Generate(context.Background(), "prompt", "  ")

	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewGeminiService_UnknownBackend(t *testing.T) {
	_, err := NewGeminiService(config.GeminiConfig{Backend: "openai"}, zap.NewNop())

	assert.Error(t, err)
}

func TestEffectiveTimeout_UsesEarlierDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	timeout, err := effectiveTimeout(ctx, time.Minute)

	require.NoError(t, err)
	assert.LessOrEqual(t, timeout, 100*time.Millisecond)
}

func TestAPIResponseMap_NonObject(t *testing.T) {
	assert.Nil(t, (&APIResponse{Raw: []byte(`[1,2]`)}).Map())
	assert.Nil(t, (*APIResponse)(nil).Map())
}

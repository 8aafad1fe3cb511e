package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGemini struct {
	reply   []byte
	err     error
	prompts []string
	keys    []string
}

func (f *fakeGemini) Generate(ctx context.Context, prompt, apiKey string) (*APIResponse, error) {
	f.prompts = append(f.prompts, prompt)
	f.keys = append(f.keys, apiKey)
	if f.err != nil {
		return nil, f.err
	}
	return &APIResponse{Raw: f.reply}, nil
}

type fakeGuidance struct {
	text string
	err  error
}

func (f fakeGuidance) Retrieve(ctx context.Context, resumeText string) (string, error) {
	return f.text, f.err
}

const sampleResume = "Jane Doe\nData Scientist\nPython, SQL, Snowflake"

func newAnalyzer(gemini GeminiService, guidance GuidanceRetriever) AnalyzerService {
	return NewAnalyzerService(NewDocumentExtractor(), gemini, guidance, 1024, zap.NewNop())
}

func TestAnalyzeResume(t *testing.T) {
	gemini := &fakeGemini{reply: candidateBody(t, sampleReply)}

	result, resp, err := newAnalyzer(gemini, nil).AnalyzeResume(context.Background(), AnalyzeInput{
		ResumeData: []byte(sampleResume),
		Filename:   "resume.txt",
		APIKey:     "user-key",
	})

	require.NoError(t, err)
	assert.Equal(t, 82, result.ResumeScore)
	assert.Equal(t, "Add metrics.", result.Suggestions)
	require.NotNil(t, resp)
	assert.NotNil(t, resp.Map()["candidates"])
	require.Len(t, gemini.prompts, 1)
	assert.Contains(t, gemini.prompts[0], sampleResume)
	assert.NotContains(t, gemini.prompts[0], "reference guidelines")
	assert.Equal(t, []string{"user-key"}, gemini.keys)
}

func TestAnalyzeAlignment(t *testing.T) {
	reply := "```json\n{\"technologies_present\": [\"Python\", \"SQL\"], \"technologies_not_present\": [\"Spark\"], \"alignment_score\": 78}\n```"
	gemini := &fakeGemini{reply: candidateBody(t, reply)}

	result, _, err := newAnalyzer(gemini, nil).AnalyzeAlignment(context.Background(), AnalyzeInput{
		ResumeData:     []byte(sampleResume),
		Filename:       "resume.txt",
		JobDescription: "Looking for Python and Spark",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "SQL"}, result.TechnologiesPresent)
	assert.Equal(t, []string{"Spark"}, result.TechnologiesNotPresent)
	assert.Equal(t, 78, result.AlignmentScore)
	assert.Contains(t, gemini.prompts[0], "Job Description: Looking for Python and Spark")
}

func TestAnalyze_GuidanceIsInjected(t *testing.T) {
	gemini := &fakeGemini{reply: candidateBody(t, sampleReply)}

	_, _, err := newAnalyzer(gemini, fakeGuidance{text: "--- Guideline 1 (Score: 0.90) ---\nUse numbers."}).
		AnalyzeResume(context.Background(), AnalyzeInput{ResumeData: []byte(sampleResume), Filename: "r.txt"})

	require.NoError(t, err)
	assert.Contains(t, gemini.prompts[0], "Use numbers.")
}

func TestAnalyze_GuidanceFailureIsNotFatal(t *testing.T) {
	gemini := &fakeGemini{reply: candidateBody(t, sampleReply)}

	result, _, err := newAnalyzer(gemini, fakeGuidance{err: errors.New("qdrant down")}).
		AnalyzeResume(context.Background(), AnalyzeInput{ResumeData: []byte(sampleResume), Filename: "r.txt"})

	require.NoError(t, err)
	assert.Equal(t, 82, result.ResumeScore)
}

func TestAnalyze_InputErrors(t *testing.T) {
	gemini := &fakeGemini{}
	analyzer := newAnalyzer(gemini, nil)

	_, _, err := analyzer.AnalyzeResume(context.Background(), AnalyzeInput{})
	assert.ErrorIs(t, err, ErrMissingResume)

	_, _, err = analyzer.AnalyzeAlignment(context.Background(), AnalyzeInput{ResumeData: []byte(sampleResume), JobDescription: "  "})
	assert.ErrorIs(t, err, ErrMissingJobDescription)

	_, _, err = analyzer.AnalyzeResume(context.Background(), AnalyzeInput{ResumeData: []byte(strings.Repeat("a", 2048))})
	assert.ErrorIs(t, err, ErrDocumentTooLarge)
	kind, status := Classify(err)
	assert.Equal(t, KindExtraction, kind)
	assert.Equal(t, 413, status)

	assert.Empty(t, gemini.prompts)
}

func TestAnalyze_UnreadableDocument(t *testing.T) {
	gemini := &fakeGemini{}

	_, _, err := newAnalyzer(gemini, nil).AnalyzeResume(context.Background(), AnalyzeInput{
		ResumeData: []byte("%PDF-1.4 this is not really a pdf"),
		Filename:   "resume.pdf",
	})

	assert.ErrorIs(t, err, ErrUnreadableDocument)
	assert.Empty(t, gemini.prompts)
}

func TestAnalyze_UpstreamError(t *testing.T) {
	gemini := &fakeGemini{err: fmt.Errorf("%w: status 503", ErrUpstreamUnavailable)}

	_, resp, err := newAnalyzer(gemini, nil).AnalyzeResume(context.Background(), AnalyzeInput{
		ResumeData: []byte(sampleResume),
		Filename:   "r.txt",
	})

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Nil(t, resp)
	kind, _ := Classify(err)
	assert.Equal(t, KindUpstream, kind)
}

func TestAnalyze_FormatErrorKeepsResponse(t *testing.T) {
	gemini := &fakeGemini{reply: candidateBody(t, "I cannot score this resume.")}

	_, resp, err := newAnalyzer(gemini, nil).AnalyzeResume(context.Background(), AnalyzeInput{
		ResumeData: []byte(sampleResume),
		Filename:   "r.txt",
	})

	assert.ErrorIs(t, err, ErrNoJSONBlock)
	require.NotNil(t, resp)
	assert.NotNil(t, resp.Map())
}

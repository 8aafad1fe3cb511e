package services

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/job-companion/internal/models"
)

const replyTextPath = "candidates.0.content.parts.0.text"

// jsonFencePattern matches one ```json fence pair. The lazy body stops at the
// next closing fence, so a broken block never swallows the one after it.
var jsonFencePattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

var (
	resumeScoreSchema = mustSchema(`{
		"type": "object",
		"properties": {
			"resume_score": {"type": "integer", "minimum": 0, "maximum": 100},
			"suggestions": {"type": "string"}
		},
		"required": ["resume_score", "suggestions"]
	}`)

	alignmentSchema = mustSchema(`{
		"type": "object",
		"properties": {
			"technologies_present": {"type": "array", "items": {"type": "string"}},
			"technologies_not_present": {"type": "array", "items": {"type": "string"}},
			"alignment_score": {"type": "integer", "minimum": 0, "maximum": 100}
		},
		"required": ["technologies_present", "technologies_not_present", "alignment_score"]
	}`)
)

func mustSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid built-in schema: %v", err))
	}
	return s
}

// ReplyText returns candidates[0].content.parts[0].text, failing with
// ErrUnexpectedResponse when the response has any other shape.
func ReplyText(resp *APIResponse) (string, error) {
	if resp == nil || !gjson.ValidBytes(resp.Raw) {
		return "", fmt.Errorf("%w: response is not valid JSON", ErrUnexpectedResponse)
	}

	if msg := gjson.GetBytes(resp.Raw, "error.message"); msg.Exists() {
		return "", fmt.Errorf("%w: upstream error: %s", ErrUnexpectedResponse, msg.String())
	}

	candidates := gjson.GetBytes(resp.Raw, "candidates")
	if !candidates.IsArray() || len(candidates.Array()) == 0 {
		if reason := gjson.GetBytes(resp.Raw, "promptFeedback.blockReason"); reason.Exists() {
			return "", fmt.Errorf("%w: prompt blocked: %s", ErrUnexpectedResponse, reason.String())
		}
		return "", fmt.Errorf("%w: no candidates in response", ErrUnexpectedResponse)
	}

	text := gjson.GetBytes(resp.Raw, replyTextPath)
	if text.Type != gjson.String {
		if reason := gjson.GetBytes(resp.Raw, "candidates.0.finishReason"); reason.Exists() {
			return "", fmt.Errorf("%w: missing %s (finish reason %s)", ErrUnexpectedResponse, replyTextPath, reason.String())
		}
		return "", fmt.Errorf("%w: missing %s", ErrUnexpectedResponse, replyTextPath)
	}

	return text.String(), nil
}

// ExtractJSONBlock returns the body of the first ```json fence that holds an
// object. Fences with any other body are skipped.
func ExtractJSONBlock(text string) (string, error) {
	for _, match := range jsonFencePattern.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(match[1])
		if strings.HasPrefix(body, "{") && strings.HasSuffix(body, "}") {
			return body, nil
		}
	}
	return "", ErrNoJSONBlock
}

// DecodeJSONBlock parses an extracted block into an untyped object.
func DecodeJSONBlock(block string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(block), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: block is null", ErrMalformedJSON)
	}
	return data, nil
}

func decodeReply(resp *APIResponse) (map[string]any, error) {
	text, err := ReplyText(resp)
	if err != nil {
		return nil, err
	}
	block, err := ExtractJSONBlock(text)
	if err != nil {
		return nil, err
	}
	return DecodeJSONBlock(block)
}

// ParseResumeScore reads the resume-only result. Missing or mistyped fields
// fall back to zero values.
func ParseResumeScore(resp *APIResponse) (*models.ResumeScoreResult, error) {
	data, err := decodeReply(resp)
	if err != nil {
		return nil, err
	}

	return &models.ResumeScoreResult{
		ResumeScore: intField(data, "resume_score"),
		Suggestions: stringField(data, "suggestions"),
		Warnings:    schemaWarnings(resumeScoreSchema, data),
	}, nil
}

// ParseAlignment reads the resume vs job description result.
func ParseAlignment(resp *APIResponse) (*models.AlignmentResult, error) {
	data, err := decodeReply(resp)
	if err != nil {
		return nil, err
	}

	return &models.AlignmentResult{
		TechnologiesPresent:    stringListField(data, "technologies_present"),
		TechnologiesNotPresent: stringListField(data, "technologies_not_present"),
		AlignmentScore:         intField(data, "alignment_score"),
		Warnings:               schemaWarnings(alignmentSchema, data),
	}, nil
}

func schemaWarnings(schema *gojsonschema.Schema, data map[string]any) []string {
	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}

	warnings := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		warnings = append(warnings, e.String())
	}
	return warnings
}

// intField accepts numbers and numeric strings ("85", "85%", "85.5") and
// clamps to the documented 0-100 range.
func intField(data map[string]any, key string) int {
	var f float64
	switch v := data[key].(type) {
	case float64:
		f = v
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 100:
		return 100
	}
	return int(f)
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case []any:
		return strings.Join(toStrings(v), "\n")
	default:
		return ""
	}
}

func stringListField(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []any:
		return toStrings(v)
	case string:
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		if out == nil {
			return []string{}
		}
		return out
	default:
		return []string{}
	}
}

func toStrings(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case string:
			s = v
		case float64, bool:
			s = fmt.Sprint(v)
		default:
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

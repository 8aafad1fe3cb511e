package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/job-companion/internal/logger"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeScorePrompt creates the prompt for a resume-only score.
func (pb *PromptBuilder) BuildResumeScorePrompt(resumeText, guidance string) string {
	return fmt.Sprintf(`
    Analyze the following resume. Provide a resume score between 0 and 100 and suggestions for improvement. Output the results in the following JSON format:

    {
      "resume_score": <int between 0 and 100>,
      "suggestions": "<suggestions for improvement>"
    }
%s
    Resume: %s
    `, guidanceSection(guidance), resumeText)
}

// BuildAlignmentPrompt creates the prompt comparing a resume with a job
// description.
func (pb *PromptBuilder) BuildAlignmentPrompt(resumeText, jobDescription, guidance string) string {
	return fmt.Sprintf(`
    Analyze the following resume and job description. Provide the technologies present in the resume, technologies not present in the resume, and an alignment score between 0 and 100. Output the results in the following JSON format:

    {
      "technologies_present": ["<list of technologies present>"],
      "technologies_not_present": ["<list of technologies not present>"],
      "alignment_score": <int between 0 and 100>
    }
%s
    Resume: %s

    Job Description: %s
    `, guidanceSection(guidance), resumeText, jobDescription)
}

// BuildGuidanceQuery creates the similarity query used to pick reference
// guidance for a resume.
func (pb *PromptBuilder) BuildGuidanceQuery(resumeText string) string {
	const maxQuery = 2000
	text := logger.Clip(CleanText(resumeText), maxQuery)
	return "Resume writing guidelines relevant to: " + text
}

func guidanceSection(guidance string) string {
	guidance = strings.TrimSpace(guidance)
	if guidance == "" {
		return ""
	}
	return fmt.Sprintf(`
    Use the following reference guidelines when judging the resume:

%s
`, guidance)
}

// FormatGuidanceContext renders retrieved guidance chunks for the prompt.
func FormatGuidanceContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Guideline %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}

package models

type AnalysisMode string

const (
	ModeResumeScore AnalysisMode = "resume_score"
	ModeAlignment   AnalysisMode = "alignment"
	ModeJobTrends   AnalysisMode = "job_trends"
)

// Modes lists the page modes in selector order.
var Modes = []AnalysisMode{ModeResumeScore, ModeAlignment, ModeJobTrends}

func (m AnalysisMode) Title() string {
	switch m {
	case ModeResumeScore:
		return "Resume Score Checker"
	case ModeAlignment:
		return "Resume and JD Alignment Checker"
	case ModeJobTrends:
		return "Job Trends in Data Science"
	default:
		return string(m)
	}
}

// ResumeScoreResult is what the model is asked to return for a resume-only
// analysis. Missing fields stay at their zero value.
type ResumeScoreResult struct {
	ResumeScore int      `json:"resume_score"`
	Suggestions string   `json:"suggestions"`
	Warnings    []string `json:"warnings,omitempty"`
}

// AlignmentResult is what the model is asked to return when a resume is
// compared against a job description.
type AlignmentResult struct {
	TechnologiesPresent    []string `json:"technologies_present"`
	TechnologiesNotPresent []string `json:"technologies_not_present"`
	AlignmentScore         int      `json:"alignment_score"`
	Warnings               []string `json:"warnings,omitempty"`
}

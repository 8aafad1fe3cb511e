package models

// AnalyzeForm is the non-file part of a resume submission.
type AnalyzeForm struct {
	JobDescription string `form:"job_description" validate:"max=20000"`
	APIKey         string `form:"api_key" validate:"max=256"`
}

type TrendsQuery struct {
	JobTitle        string `query:"job_title" validate:"max=200"`
	CompanyLocation string `query:"company_location" validate:"max=100"`
}

// PageForm carries the selector and form fields of the single page.
type PageForm struct {
	Mode            string `form:"mode" query:"mode" validate:"omitempty,oneof=resume_score alignment job_trends"`
	JobDescription  string `form:"job_description" validate:"max=20000"`
	APIKey          string `form:"api_key" validate:"max=256"`
	JobTitle        string `form:"job_title" query:"job_title" validate:"max=200"`
	CompanyLocation string `form:"company_location" query:"company_location" validate:"max=100"`
}

type AnalysisResponse struct {
	ID   string       `json:"id"`
	Mode AnalysisMode `json:"mode"`
	// View is the presentation-ready result (scores, progress, messages).
	View any `json:"view"`
	// APIResponse is the raw upstream body, kept for debugging.
	APIResponse map[string]any `json:"api_response,omitempty"`
}

type TrendsOptionsResponse struct {
	JobTitles []string `json:"job_titles"`
	Locations []string `json:"locations"`
	Rows      int      `json:"rows"`
}

type ErrorResponse struct {
	Error       string         `json:"error"`
	Kind        string         `json:"kind"`
	Code        int            `json:"code"`
	APIResponse map[string]any `json:"api_response,omitempty"`
}

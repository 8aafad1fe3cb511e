package services

import (
	"fmt"
	"math"
	"strings"

	"alfredoptarigan/job-companion/internal/models"
)

const (
	// AlignmentThreshold is the inclusive score from which a resume is
	// considered likely to be shortlisted.
	AlignmentThreshold = 75

	AlignmentPositiveMessage = "Your resume has a high chance of being shortlisted!"
	AlignmentImproveMessage  = "Consider improving your resume to increase your chances of being shortlisted."
)

// Progress converts a 0-100 score into the 0-1 value of a progress bar.
func Progress(score int) float64 {
	return float64(clampScore(score)) / 100
}

// JoinOrNone renders a list as comma separated text, or "None" when empty.
func JoinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

// AlignmentMessage returns the verdict shown under the alignment score and
// whether it is the positive one.
func AlignmentMessage(score int) (string, bool) {
	if score >= AlignmentThreshold {
		return AlignmentPositiveMessage, true
	}
	return AlignmentImproveMessage, false
}

type ScoreView struct {
	Score       int      `json:"score"`
	Progress    float64  `json:"progress"`
	Percent     int      `json:"percent"`
	Suggestions string   `json:"suggestions"`
	Warnings    []string `json:"warnings,omitempty"`
}

type AlignmentView struct {
	Score                  int      `json:"score"`
	Progress               float64  `json:"progress"`
	Percent                int      `json:"percent"`
	TechnologiesPresent    []string `json:"technologies_present"`
	TechnologiesNotPresent []string `json:"technologies_not_present"`
	PresentText            string   `json:"present_text"`
	NotPresentText         string   `json:"not_present_text"`
	Message                string   `json:"message"`
	Positive               bool     `json:"positive"`
	Warnings               []string `json:"warnings,omitempty"`
}

func NewScoreView(r *models.ResumeScoreResult) ScoreView {
	return ScoreView{
		Score:       r.ResumeScore,
		Progress:    Progress(r.ResumeScore),
		Percent:     clampScore(r.ResumeScore),
		Suggestions: r.Suggestions,
		Warnings:    r.Warnings,
	}
}

func NewAlignmentView(r *models.AlignmentResult) AlignmentView {
	msg, positive := AlignmentMessage(r.AlignmentScore)
	return AlignmentView{
		Score:                  r.AlignmentScore,
		Progress:               Progress(r.AlignmentScore),
		Percent:                clampScore(r.AlignmentScore),
		TechnologiesPresent:    r.TechnologiesPresent,
		TechnologiesNotPresent: r.TechnologiesNotPresent,
		PresentText:            JoinOrNone(r.TechnologiesPresent),
		NotPresentText:         JoinOrNone(r.TechnologiesNotPresent),
		Message:                msg,
		Positive:               positive,
		Warnings:               r.Warnings,
	}
}

type ChartBar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	// Width is the bar length relative to the largest bar, in percent.
	Width float64 `json:"width"`
}

type TrendsView struct {
	JobTitle        string              `json:"job_title"`
	CompanyLocation string              `json:"company_location"`
	Title           string              `json:"title"`
	JobTitles       []string            `json:"job_titles"`
	Locations       []string            `json:"locations"`
	Chart           []ChartBar          `json:"chart"`
	Columns         []string            `json:"columns"`
	Rows            []map[string]string `json:"rows"`
}

// NewTrendsView builds the salary trends screen for one filter selection.
// Empty selections default to the first value of each selector.
func NewTrendsView(ds *Dataset, jobTitle, location string) TrendsView {
	titles := ds.JobTitles()
	locations := ds.Locations()
	if jobTitle == "" && len(titles) > 0 {
		jobTitle = titles[0]
	}
	if location == "" && len(locations) > 0 {
		location = locations[0]
	}

	filtered := ds.Filter(jobTitle, location)

	rows := make([]map[string]string, 0, len(filtered))
	for _, rec := range filtered {
		rows = append(rows, ds.RowValues(rec))
	}

	return TrendsView{
		JobTitle:        jobTitle,
		CompanyLocation: location,
		Title:           fmt.Sprintf("Salary Trends for %s in %s", jobTitle, location),
		JobTitles:       titles,
		Locations:       locations,
		Chart:           SalaryChart(filtered),
		Columns:         ds.Header(),
		Rows:            rows,
	}
}

// SalaryChart plots salary_in_usd against experience_level, one bar per
// row, in dataset order.
func SalaryChart(records []models.SalaryRecord) []ChartBar {
	bars := make([]ChartBar, 0, len(records))
	maxValue := 0.0
	for _, rec := range records {
		maxValue = math.Max(maxValue, rec.SalaryInUSD)
	}

	for _, rec := range records {
		width := 0.0
		if maxValue > 0 && rec.SalaryInUSD > 0 {
			width = math.Round(rec.SalaryInUSD/maxValue*1000) / 10
		}
		bars = append(bars, ChartBar{
			Label: rec.ExperienceLevel,
			Value: rec.SalaryInUSD,
			Width: width,
		})
	}
	return bars
}

package ai

import "context"

// RubricCriterion describes a single weighted grading criterion.
type RubricCriterion struct {
	Name        string
	MaxPoints   float64
	Description string
}

// GradingInput carries the artefacts needed to grade a journal submission.
type GradingInput struct {
	AssignmentTitle string
	Prompt          string
	Content         string
	WordCount       int
	Criteria        []RubricCriterion
}

// CriterionScore is a scored rubric criterion with its feedback.
type CriterionScore struct {
	Criterion string  `json:"criterion"`
	Score     float64 `json:"score"`
	MaxPoints float64 `json:"max_points"`
	Feedback  string  `json:"feedback,omitempty"`
}

// Detection is the model's verdict on non-human authorship. Confidence is
// normalized into [0,1]; nil when the model gave none.
type Detection struct {
	Detected   bool     `json:"detected"`
	Confidence *float64 `json:"confidence,omitempty"`
	Reasoning  string   `json:"reasoning,omitempty"`
}

// GradeResult is the normalized outcome of a model grading call.
type GradeResult struct {
	CriterionScores []CriterionScore `json:"criterion_scores"`
	OverallScore    float64          `json:"overall_score"`
	LetterGrade     string           `json:"letter_grade"`
	Feedback        string           `json:"feedback"`
	Detection       Detection        `json:"detection"`
	Warnings        []string         `json:"warnings,omitempty"`
	Model           string           `json:"model,omitempty"`
	Raw             string           `json:"-"`
}

// TotalPossible sums the max points of the configured criteria.
func TotalPossible(criteria []RubricCriterion) float64 {
	total := 0.0
	for _, c := range criteria {
		total += c.MaxPoints
	}
	return total
}

// Grader describes an AI model capable of grading journal submissions.
type Grader interface {
	Grade(ctx context.Context, input GradingInput) (GradeResult, error)
}

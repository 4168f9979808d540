package dto

import (
	"encoding/json"
	"time"

	"github.com/gleeworld/course-api/internal/models"
	"github.com/gleeworld/course-api/pkg/ai"
)

// Grading modes accepted by the grade endpoint.
const (
	GradeModeNew     = "new"
	GradeModeRegrade = "regrade"
)

// Bulk run modes.
const (
	BulkModeOnlyUngraded    = "only-ungraded"
	BulkModeForceRegradeAll = "force-regrade-all"
)

// GradeRequest triggers an AI grading run for a single journal.
type GradeRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=new regrade"`
}

// FinalizeRequest carries the instructor override for a grade.
type FinalizeRequest struct {
	Score    float64 `json:"score" validate:"gte=0"`
	Feedback string  `json:"feedback"`
}

// BulkGradeRequest drives a sequential grading run over many journals.
type BulkGradeRequest struct {
	JournalIDs []uint `json:"journal_ids" validate:"required,min=1,dive,gt=0"`
	Mode       string `json:"mode" validate:"required,oneof=only-ungraded force-regrade-all"`
}

// CriterionScoreResponse serializes one scored rubric criterion.
type CriterionScoreResponse struct {
	Criterion string  `json:"criterion"`
	Score     float64 `json:"score"`
	MaxPoints float64 `json:"max_points"`
	Feedback  string  `json:"feedback,omitempty"`
}

// DetectionResponse serializes the AI-authorship verdict.
type DetectionResponse struct {
	Detected   bool     `json:"detected"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning,omitempty"`
}

// GradeResponse is the authoritative grade view for a journal.
type GradeResponse struct {
	ID              uint                     `json:"id"`
	JournalID       uint                     `json:"journal_id"`
	AssignmentID    uint                     `json:"assignment_id"`
	StudentID       uint                     `json:"student_id"`
	OverallScore    float64                  `json:"overall_score"`
	LetterGrade     string                   `json:"letter_grade"`
	CriterionScores []CriterionScoreResponse `json:"criterion_scores"`
	AIFeedback      string                   `json:"ai_feedback"`
	AIModel         string                   `json:"ai_model"`
	GradedAt        time.Time                `json:"graded_at"`
	Detection       DetectionResponse        `json:"ai_detection"`
	Warnings        []string                 `json:"warnings,omitempty"`

	InstructorScore       *float64   `json:"instructor_score"`
	InstructorLetterGrade string     `json:"instructor_letter_grade,omitempty"`
	InstructorFeedback    string     `json:"instructor_feedback,omitempty"`
	InstructorGradedAt    *time.Time `json:"instructor_graded_at"`
	IsFinal               bool       `json:"is_final"`
}

// NewGradeResponse converts a JournalGrade model into a DTO. Warnings are
// transient parser output and only present right after a grading run.
func NewGradeResponse(model models.JournalGrade, warnings []string) GradeResponse {
	response := GradeResponse{
		ID:           model.ID,
		JournalID:    model.JournalID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		OverallScore: model.OverallScore,
		LetterGrade:  model.LetterGrade,
		AIFeedback:   model.AIFeedback,
		AIModel:      model.AIModel,
		GradedAt:     model.GradedAt,
		Detection: DetectionResponse{
			Detected:   model.AIWritingDetected,
			Confidence: model.AIDetectionConfidence,
			Reasoning:  model.AIDetectionNotes,
		},
		Warnings:              warnings,
		InstructorScore:       model.InstructorScore,
		InstructorLetterGrade: model.InstructorLetterGrade,
		InstructorFeedback:    model.InstructorFeedback,
		InstructorGradedAt:    model.InstructorGradedAt,
		IsFinal:               model.IsFinal(),
	}

	if len(model.Rubric) > 0 {
		var scores []ai.CriterionScore
		if err := json.Unmarshal(model.Rubric, &scores); err == nil {
			for _, score := range scores {
				response.CriterionScores = append(response.CriterionScores, CriterionScoreResponse{
					Criterion: score.Criterion,
					Score:     score.Score,
					MaxPoints: score.MaxPoints,
					Feedback:  score.Feedback,
				})
			}
		}
	}

	return response
}

// Bulk item outcome labels.
const (
	BulkItemGraded  = "graded"
	BulkItemSkipped = "skipped"
	BulkItemFailed  = "failed"
)

// BulkItemResult reports one journal's outcome in a bulk run.
type BulkItemResult struct {
	JournalID uint   `json:"journal_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// BulkGradeResponse summarizes a bulk grading run. A failing item never
// aborts the run; it is recorded here instead.
type BulkGradeResponse struct {
	Total   int              `json:"total"`
	Graded  int              `json:"graded"`
	Skipped int              `json:"skipped"`
	Failed  int              `json:"failed"`
	Items   []BulkItemResult `json:"items"`
}

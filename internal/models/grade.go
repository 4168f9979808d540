package models

import (
	"time"

	"gorm.io/datatypes"
)

// JournalGrade is the single authoritative grade record for a journal. The
// AI fields are written by the grading pipeline; the instructor fields are
// written once by the reconciler and lock the record.
type JournalGrade struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	JournalID    uint `gorm:"not null;uniqueIndex" json:"journal_id"`
	AssignmentID uint `gorm:"not null;index" json:"assignment_id"`
	StudentID    uint `gorm:"not null;index" json:"student_id"`

	OverallScore          float64        `gorm:"not null" json:"overall_score"`
	LetterGrade           string         `gorm:"size:4" json:"letter_grade"`
	Rubric                datatypes.JSON `json:"rubric"`
	AIFeedback            string         `gorm:"type:text" json:"ai_feedback"`
	AIModel               string         `gorm:"size:64" json:"ai_model"`
	GradedAt              time.Time      `json:"graded_at"`
	AIWritingDetected     bool           `gorm:"not null;default:false" json:"ai_writing_detected"`
	AIDetectionConfidence *float64       `json:"ai_detection_confidence"`
	AIDetectionNotes      string         `gorm:"type:text" json:"ai_detection_notes"`

	InstructorScore       *float64   `json:"instructor_score"`
	InstructorLetterGrade string     `gorm:"size:4" json:"instructor_letter_grade"`
	InstructorFeedback    string     `gorm:"type:text" json:"instructor_feedback"`
	InstructorGradedAt    *time.Time `json:"instructor_graded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsFinal reports whether an instructor has locked the grade. Presence of
// the instructor score is the write-once gate.
func (g JournalGrade) IsFinal() bool {
	return g.InstructorScore != nil
}

// EffectiveScore returns the authoritative numeric score: the instructor
// override when present, the AI score otherwise.
func (g JournalGrade) EffectiveScore() float64 {
	if g.InstructorScore != nil {
		return *g.InstructorScore
	}
	return g.OverallScore
}

// EffectiveLetter returns the authoritative letter grade.
func (g JournalGrade) EffectiveLetter() string {
	if g.InstructorScore != nil {
		return g.InstructorLetterGrade
	}
	return g.LetterGrade
}

// JournalGradeHistory keeps every AI grading attempt for audit. Regrading
// replaces the live AI fields but never this trail.
type JournalGradeHistory struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	JournalID    uint           `gorm:"not null;index" json:"journal_id"`
	OverallScore float64        `gorm:"not null" json:"overall_score"`
	LetterGrade  string         `gorm:"size:4" json:"letter_grade"`
	Rubric       datatypes.JSON `json:"rubric"`
	AIFeedback   string         `gorm:"type:text" json:"ai_feedback"`
	AIModel      string         `gorm:"size:64" json:"ai_model"`
	GradedAt     time.Time      `json:"graded_at"`
}

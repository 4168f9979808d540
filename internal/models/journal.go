package models

import (
	"strings"
	"time"
)

// MaxResubmissions is the number of times a student may revise and resubmit
// a journal after it has been AI graded.
const MaxResubmissions = 1

// JournalEntry represents a student's listening journal submission.
type JournalEntry struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	AssignmentID      uint         `gorm:"not null;index" json:"assignment_id"`
	StudentID         uint         `gorm:"not null;index" json:"student_id"`
	Content           string       `gorm:"type:text" json:"content"`
	WordCount         int          `gorm:"not null;default:0" json:"word_count"`
	Status            JournalState `gorm:"size:32;not null;default:'unpublished'" json:"status"`
	IsPublished       bool         `gorm:"not null;default:false" json:"is_published"`
	PublishedAt       *time.Time   `json:"published_at"`
	ResubmissionCount int          `gorm:"not null;default:0" json:"resubmission_count"`
	OriginalJournalID *uint        `json:"original_journal_id"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	Assignment        Assignment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
}

// SetContent replaces the journal body and recomputes the word count. The
// count is always derived from the content, never stored independently.
func (j *JournalEntry) SetContent(content string) {
	j.Content = content
	j.WordCount = CountWords(content)
}

// CountWords counts whitespace-separated tokens, ignoring empty ones.
func CountWords(content string) int {
	return len(strings.Fields(content))
}

// CanRevise reports whether the student may still open a revision: an AI
// grade must exist, no instructor-final grade may exist, and the single
// resubmission must be unused.
func CanRevise(journal JournalEntry, grade *JournalGrade) bool {
	return grade != nil && !grade.IsFinal() && journal.ResubmissionCount < MaxResubmissions
}

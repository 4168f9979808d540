package dto

import (
	"time"

	"github.com/gleeworld/course-api/internal/models"
)

// JournalCreateRequest starts a draft journal entry.
type JournalCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required,gt=0"`
	Content      string `json:"content"`
}

// JournalPublishRequest freezes the draft body for grading.
type JournalPublishRequest struct {
	Content string `json:"content" validate:"required"`
}

// JournalReviseRequest replaces the body during the revision window.
type JournalReviseRequest struct {
	Content string `json:"content" validate:"required,min=100"`
}

// JournalFilter describes query string filters for listing journals.
type JournalFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status"`
	Published    *bool   `query:"published"`
}

// JournalResponse is returned to API clients when viewing journal entries.
type JournalResponse struct {
	ID                uint           `json:"id"`
	AssignmentID      uint           `json:"assignment_id"`
	StudentID         uint           `json:"student_id"`
	Content           string         `json:"content"`
	WordCount         int            `json:"word_count"`
	Status            string         `json:"status"`
	IsPublished       bool           `json:"is_published"`
	PublishedAt       *time.Time     `json:"published_at"`
	ResubmissionCount int            `json:"resubmission_count"`
	CanRevise         bool           `json:"can_revise"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Assignment        AssignmentLite `json:"assignment"`
}

// AssignmentLite summarizes an assignment in journal responses.
type AssignmentLite struct {
	ID     uint    `json:"id"`
	Title  string  `json:"title"`
	Points float64 `json:"points"`
}

// NewJournalResponse converts a JournalEntry model into a DTO. The grade may
// be nil when the journal has not been AI graded yet.
func NewJournalResponse(model models.JournalEntry, grade *models.JournalGrade) JournalResponse {
	response := JournalResponse{
		ID:                model.ID,
		AssignmentID:      model.AssignmentID,
		StudentID:         model.StudentID,
		Content:           model.Content,
		WordCount:         model.WordCount,
		Status:            string(model.Status),
		IsPublished:       model.IsPublished,
		PublishedAt:       model.PublishedAt,
		ResubmissionCount: model.ResubmissionCount,
		CanRevise:         models.CanRevise(model, grade),
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:     model.Assignment.ID,
			Title:  model.Assignment.Title,
			Points: model.Assignment.Points,
		}
	}

	return response
}

// NewJournalResponseSlice converts journal models into DTOs without grade
// context; CanRevise is false for each entry.
func NewJournalResponseSlice(journals []models.JournalEntry) []JournalResponse {
	responses := make([]JournalResponse, 0, len(journals))
	for _, journal := range journals {
		responses = append(responses, NewJournalResponse(journal, nil))
	}

	return responses
}

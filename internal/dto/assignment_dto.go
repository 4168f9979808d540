package dto

import (
	"time"

	"github.com/gleeworld/course-api/internal/models"
)

// RubricCriterionRequest is one weighted criterion in a rubric payload.
type RubricCriterionRequest struct {
	Name        string  `json:"name" validate:"required"`
	MaxPoints   float64 `json:"max_points" validate:"required,gt=0"`
	Description string  `json:"description"`
}

// AssignmentCreateRequest creates a journal assignment. Criteria are
// optional; the default course rubric applies when absent.
type AssignmentCreateRequest struct {
	Title    string                   `json:"title" validate:"required"`
	Prompt   string                   `json:"prompt" validate:"required"`
	Points   float64                  `json:"points" validate:"gte=0"`
	DueDate  *string                  `json:"due_date"`
	Criteria []RubricCriterionRequest `json:"criteria" validate:"omitempty,dive"`
}

// RubricReplaceRequest swaps an assignment's full criterion set.
type RubricReplaceRequest struct {
	Criteria []RubricCriterionRequest `json:"criteria" validate:"required,min=1,dive"`
}

// RubricCriterionResponse serializes a stored rubric criterion.
type RubricCriterionResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	MaxPoints   float64 `json:"max_points"`
	Description string  `json:"description"`
	Position    int     `json:"position"`
}

// AssignmentResponse is the full assignment view with its rubric.
type AssignmentResponse struct {
	ID        uint                      `json:"id"`
	Title     string                    `json:"title"`
	Prompt    string                    `json:"prompt"`
	Points    float64                   `json:"points"`
	DueDate   *time.Time                `json:"due_date"`
	Criteria  []RubricCriterionResponse `json:"criteria"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:        model.ID,
		Title:     model.Title,
		Prompt:    model.Prompt,
		Points:    model.Points,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}

	if !model.DueDate.IsZero() {
		due := model.DueDate
		response.DueDate = &due
	}

	for _, criterion := range model.Criteria {
		response.Criteria = append(response.Criteria, RubricCriterionResponse{
			ID:          criterion.ID,
			Name:        criterion.Name,
			MaxPoints:   criterion.MaxPoints,
			Description: criterion.Description,
			Position:    criterion.Position,
		})
	}

	return response
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}

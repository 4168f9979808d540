package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gleeworld/course-api/internal/dto"
	"github.com/gleeworld/course-api/internal/models"
	"github.com/gleeworld/course-api/internal/repository"
)

// AssignmentService manages journal assignments and their rubrics.
type AssignmentService interface {
	List(ctx context.Context) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	ReplaceRubric(ctx context.Context, id uint, payload dto.RubricReplaceRequest) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService instantiates the assignment service.
func NewAssignmentService(assignments repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		validate:    validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) List(ctx context.Context) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// Create stores a new assignment. When no rubric is supplied the default
// three criterion rubric is attached so grading always has weights.
func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validate.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		Title:  payload.Title,
		Prompt: payload.Prompt,
		Points: payload.Points,
	}
	if payload.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = due
	}

	for i, criterion := range payload.Criteria {
		assignment.Criteria = append(assignment.Criteria, models.RubricCriterion{
			Name:        criterion.Name,
			MaxPoints:   criterion.MaxPoints,
			Description: criterion.Description,
			Position:    i,
		})
	}
	if len(assignment.Criteria) == 0 {
		assignment.Criteria = models.DefaultRubric(0)
		assignment.Points = models.RubricTotal(assignment.Criteria)
	}

	if err := assignment.ValidateRubric(); err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: %v", ErrInvalidRubric, err)
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Str("title", assignment.Title).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

// ReplaceRubric swaps the full criterion set. Existing grades keep their
// stored rubric snapshot and are unaffected.
func (s *assignmentService) ReplaceRubric(ctx context.Context, id uint, payload dto.RubricReplaceRequest) (dto.AssignmentResponse, error) {
	if err := s.validate.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	criteria := make([]models.RubricCriterion, 0, len(payload.Criteria))
	for i, criterion := range payload.Criteria {
		criteria = append(criteria, models.RubricCriterion{
			AssignmentID: assignment.ID,
			Name:         criterion.Name,
			MaxPoints:    criterion.MaxPoints,
			Description:  criterion.Description,
			Position:     i,
		})
	}

	total := models.RubricTotal(criteria)
	check := models.Assignment{Points: total, Criteria: criteria}
	if err := check.ValidateRubric(); err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: %v", ErrInvalidRubric, err)
	}

	if err := s.assignments.ReplaceCriteria(ctx, assignment.ID, criteria); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment.Points = total
	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	updated, err := s.assignments.GetByID(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(updated), nil
}

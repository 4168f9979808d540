package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gleeworld/course-api/internal/dto"
	"github.com/gleeworld/course-api/internal/models"
	"github.com/gleeworld/course-api/internal/repository"
	"github.com/gleeworld/course-api/pkg/ai"
)

// FinalGradeService records the instructor's authoritative grade. The write
// happens once; afterwards the grade is locked for AI regrades and further
// finalize calls.
type FinalGradeService interface {
	Finalize(ctx context.Context, journalID uint, instructorID uint, payload dto.FinalizeRequest) (dto.GradeResponse, error)
}

type finalGradeService struct {
	journals repository.JournalRepository
	grades   repository.GradeRepository
	cache    GradeCache
	events   EventPublisher
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

// NewFinalGradeService instantiates the final grade service.
func NewFinalGradeService(
	journals repository.JournalRepository,
	grades repository.GradeRepository,
	cache GradeCache,
	events EventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) FinalGradeService {
	return &finalGradeService{
		journals: journals,
		grades:   grades,
		cache:    cache,
		events:   events,
		validate: validate,
		logger:   logger.With().Str("component", "final_grade_service").Logger(),
		now:      time.Now,
	}
}

func (s *finalGradeService) Finalize(ctx context.Context, journalID uint, instructorID uint, payload dto.FinalizeRequest) (dto.GradeResponse, error) {
	if err := s.validate.Struct(payload); err != nil {
		return dto.GradeResponse{}, err
	}

	journal, err := s.journals.GetByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, ErrJournalNotFound
		}
		return dto.GradeResponse{}, err
	}

	grade, err := s.grades.GetByJournalID(ctx, journalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, ErrGradeNotFound
		}
		return dto.GradeResponse{}, err
	}

	if grade.IsFinal() {
		return dto.GradeResponse{}, ErrAlreadyFinal
	}
	if !models.CanTransition(models.ActionFinalize, journal.Status) {
		return dto.GradeResponse{}, &TransitionError{Action: models.ActionFinalize, State: journal.Status}
	}

	maxPoints := journal.Assignment.Points
	if payload.Score > maxPoints {
		return dto.GradeResponse{}, ErrScoreExceedsMax
	}

	now := s.now()
	score := payload.Score
	grade.InstructorScore = &score
	grade.InstructorLetterGrade = ai.LetterGrade(score, maxPoints)
	grade.InstructorFeedback = payload.Feedback
	grade.InstructorGradedAt = &now

	if err := s.grades.Update(ctx, &grade); err != nil {
		return dto.GradeResponse{}, err
	}

	journal.Status = models.StateFinalGraded
	if err := s.journals.Update(ctx, &journal); err != nil {
		return dto.GradeResponse{}, err
	}
	s.cache.Invalidate(ctx, journal.ID)

	s.events.Publish(ctx, GradingEvent{
		Type:         EventJournalFinalized,
		JournalID:    journal.ID,
		AssignmentID: journal.AssignmentID,
		StudentID:    journal.StudentID,
		OverallScore: score,
		LetterGrade:  grade.InstructorLetterGrade,
		OccurredAt:   now,
	})

	s.logger.Info().
		Uint("journal_id", journal.ID).
		Uint("instructor_id", instructorID).
		Float64("score", score).
		Str("letter_grade", grade.InstructorLetterGrade).
		Msg("grade finalized")

	return dto.NewGradeResponse(grade, nil), nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gleeworld/course-api/internal/dto"
	"github.com/gleeworld/course-api/internal/models"
	"github.com/gleeworld/course-api/internal/observability"
	"github.com/gleeworld/course-api/internal/repository"
	"github.com/gleeworld/course-api/pkg/ai"
)

var gradingTracer = otel.Tracer("github.com/gleeworld/course-api/internal/service/grading")

// GradingService runs AI grading for a single journal. Bulk runs reuse the
// same entry point per item.
type GradingService interface {
	GradeWithAI(ctx context.Context, journalID uint, mode string) (dto.GradeResponse, error)
	GetGrade(ctx context.Context, journalID uint) (dto.GradeResponse, error)
	GradeHistory(ctx context.Context, journalID uint) ([]dto.GradeResponse, error)
}

type gradingService struct {
	journals    repository.JournalRepository
	grades      repository.GradeRepository
	assignments repository.AssignmentRepository
	grader      ai.Grader
	guard       GradingGuard
	cache       GradeCache
	events      EventPublisher
	timeout     time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService instantiates the grading orchestrator.
func NewGradingService(
	journals repository.JournalRepository,
	grades repository.GradeRepository,
	assignments repository.AssignmentRepository,
	grader ai.Grader,
	guard GradingGuard,
	cache GradeCache,
	events EventPublisher,
	timeout time.Duration,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		journals:    journals,
		grades:      grades,
		assignments: assignments,
		grader:      grader,
		guard:       guard,
		cache:       cache,
		events:      events,
		timeout:     timeout,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

// GradeWithAI grades one journal. The run is guarded per journal id, checked
// against the workflow state, and persists nothing when the model call or
// parsing fails.
func (s *gradingService) GradeWithAI(ctx context.Context, journalID uint, mode string) (dto.GradeResponse, error) {
	ctx, span := gradingTracer.Start(ctx, "grading.GradeWithAI")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("journal.id", int64(journalID)),
		attribute.String("grading.mode", mode),
	)

	if mode == "" {
		mode = dto.GradeModeNew
	}

	ok, err := s.guard.Acquire(ctx, journalID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.GradeResponse{}, err
	}
	if !ok {
		return dto.GradeResponse{}, ErrGradingInFlight
	}
	defer s.guard.Release(ctx, journalID)

	journal, err := s.journals.GetByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, ErrJournalNotFound
		}
		return dto.GradeResponse{}, err
	}

	existing, err := s.loadGrade(ctx, journalID)
	if err != nil {
		return dto.GradeResponse{}, err
	}

	if existing != nil && existing.IsFinal() {
		return dto.GradeResponse{}, ErrGradeLocked
	}
	if existing != nil && journal.Status != models.StateResubmitted && mode != dto.GradeModeRegrade {
		return dto.GradeResponse{}, ErrAlreadyGraded
	}
	if !models.CanTransition(models.ActionGradeAI, journal.Status) {
		return dto.GradeResponse{}, &TransitionError{Action: models.ActionGradeAI, State: journal.Status}
	}

	criteria := journal.Assignment.Criteria
	if len(criteria) == 0 {
		criteria = models.DefaultRubric(journal.AssignmentID)
		s.logger.Warn().Uint("assignment_id", journal.AssignmentID).Msg("assignment has no rubric, using default")
	}

	input := ai.GradingInput{
		AssignmentTitle: journal.Assignment.Title,
		Prompt:          journal.Assignment.Prompt,
		Content:         journal.Content,
		WordCount:       journal.WordCount,
		Criteria:        toAICriteria(criteria),
	}

	gradeCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		gradeCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.grader.Grade(gradeCtx, input)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error().Err(err).Uint("journal_id", journalID).Msg("ai grading failed")
		observability.GradingRuns().WithLabelValues("failed").Inc()
		var parseErr *ai.ParseError
		if errors.As(err, &parseErr) {
			return dto.GradeResponse{}, err
		}
		return dto.GradeResponse{}, fmt.Errorf("%w: %w", ErrModelCall, err)
	}
	observability.GradingRuns().WithLabelValues("graded").Inc()

	rubric, err := json.Marshal(result.CriterionScores)
	if err != nil {
		return dto.GradeResponse{}, fmt.Errorf("marshal criterion scores: %w", err)
	}

	grade := models.JournalGrade{
		JournalID:             journal.ID,
		AssignmentID:          journal.AssignmentID,
		StudentID:             journal.StudentID,
		OverallScore:          result.OverallScore,
		LetterGrade:           result.LetterGrade,
		Rubric:                datatypes.JSON(rubric),
		AIFeedback:            result.Feedback,
		AIModel:               result.Model,
		GradedAt:              s.now(),
		AIWritingDetected:     result.Detection.Detected,
		AIDetectionConfidence: result.Detection.Confidence,
		AIDetectionNotes:      result.Detection.Reasoning,
	}

	if err := s.grades.Upsert(ctx, &grade); err != nil {
		return dto.GradeResponse{}, err
	}

	history := models.JournalGradeHistory{
		JournalID:    grade.JournalID,
		OverallScore: grade.OverallScore,
		LetterGrade:  grade.LetterGrade,
		Rubric:       grade.Rubric,
		AIFeedback:   grade.AIFeedback,
		AIModel:      grade.AIModel,
		GradedAt:     grade.GradedAt,
	}
	if err := s.grades.AppendHistory(ctx, &history); err != nil {
		s.logger.Warn().Err(err).Uint("journal_id", journalID).Msg("append grade history failed")
	}

	journal.Status = models.NextGradedState(journal, &grade)
	if err := s.journals.Update(ctx, &journal); err != nil {
		return dto.GradeResponse{}, err
	}
	s.cache.Invalidate(ctx, journal.ID)

	s.events.Publish(ctx, GradingEvent{
		Type:         EventJournalGraded,
		JournalID:    journal.ID,
		AssignmentID: journal.AssignmentID,
		StudentID:    journal.StudentID,
		OverallScore: grade.OverallScore,
		LetterGrade:  grade.LetterGrade,
		OccurredAt:   grade.GradedAt,
	})

	s.logger.Info().
		Uint("journal_id", journal.ID).
		Float64("overall_score", grade.OverallScore).
		Str("letter_grade", grade.LetterGrade).
		Str("status", string(journal.Status)).
		Int("warnings", len(result.Warnings)).
		Msg("journal graded")

	return dto.NewGradeResponse(grade, result.Warnings), nil
}

func (s *gradingService) GetGrade(ctx context.Context, journalID uint) (dto.GradeResponse, error) {
	if cached, ok := s.cache.Get(ctx, journalID); ok {
		return cached, nil
	}

	grade, err := s.loadGrade(ctx, journalID)
	if err != nil {
		return dto.GradeResponse{}, err
	}
	if grade == nil {
		return dto.GradeResponse{}, ErrGradeNotFound
	}

	response := dto.NewGradeResponse(*grade, nil)
	s.cache.Set(ctx, journalID, response)
	return response, nil
}

// GradeHistory returns every past AI grading attempt, newest first.
func (s *gradingService) GradeHistory(ctx context.Context, journalID uint) ([]dto.GradeResponse, error) {
	entries, err := s.grades.ListHistory(ctx, journalID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GradeResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewGradeResponse(models.JournalGrade{
			ID:           entry.ID,
			JournalID:    entry.JournalID,
			OverallScore: entry.OverallScore,
			LetterGrade:  entry.LetterGrade,
			Rubric:       entry.Rubric,
			AIFeedback:   entry.AIFeedback,
			AIModel:      entry.AIModel,
			GradedAt:     entry.GradedAt,
		}, nil))
	}

	return responses, nil
}

func (s *gradingService) loadGrade(ctx context.Context, journalID uint) (*models.JournalGrade, error) {
	grade, err := s.grades.GetByJournalID(ctx, journalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grade, nil
}

func toAICriteria(criteria []models.RubricCriterion) []ai.RubricCriterion {
	out := make([]ai.RubricCriterion, 0, len(criteria))
	for _, c := range criteria {
		out = append(out, ai.RubricCriterion{
			Name:        c.Name,
			MaxPoints:   c.MaxPoints,
			Description: c.Description,
		})
	}
	return out
}

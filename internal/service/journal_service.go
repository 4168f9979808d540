package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gleeworld/course-api/internal/dto"
	"github.com/gleeworld/course-api/internal/models"
	"github.com/gleeworld/course-api/internal/repository"
)

// JournalConfig carries the submission bounds enforced at publish time.
type JournalConfig struct {
	MinWords int
	MaxWords int
}

// JournalService manages the student side of the workflow: drafting,
// publishing and the one-time revision.
type JournalService interface {
	Create(ctx context.Context, studentID uint, payload dto.JournalCreateRequest) (dto.JournalResponse, error)
	Get(ctx context.Context, id uint) (dto.JournalResponse, error)
	List(ctx context.Context, filter dto.JournalFilter) ([]dto.JournalResponse, error)
	Publish(ctx context.Context, id uint, payload dto.JournalPublishRequest) (dto.JournalResponse, error)
	Revise(ctx context.Context, id uint, payload dto.JournalReviseRequest) (dto.JournalResponse, error)
}

type journalService struct {
	journals    repository.JournalRepository
	grades      repository.GradeRepository
	assignments repository.AssignmentRepository
	validate    *validator.Validate
	sanitizer   *bluemonday.Policy
	cfg         JournalConfig
	logger      zerolog.Logger
	now         func() time.Time
}

// NewJournalService instantiates the journal service.
func NewJournalService(
	journals repository.JournalRepository,
	grades repository.GradeRepository,
	assignments repository.AssignmentRepository,
	validate *validator.Validate,
	cfg JournalConfig,
	logger zerolog.Logger,
) JournalService {
	return &journalService{
		journals:    journals,
		grades:      grades,
		assignments: assignments,
		validate:    validate,
		sanitizer:   bluemonday.StrictPolicy(),
		cfg:         cfg,
		logger:      logger.With().Str("component", "journal_service").Logger(),
		now:         time.Now,
	}
}

// cleanContent strips markup from the submission body. Entities introduced
// by the sanitizer are unescaped so word counts see plain text.
func (s *journalService) cleanContent(content string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(content)))
}

func (s *journalService) Create(ctx context.Context, studentID uint, payload dto.JournalCreateRequest) (dto.JournalResponse, error) {
	if err := s.validate.Struct(payload); err != nil {
		return dto.JournalResponse{}, err
	}

	if _, err := s.assignments.GetByID(ctx, payload.AssignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JournalResponse{}, ErrAssignmentNotFound
		}
		return dto.JournalResponse{}, err
	}

	journal := models.JournalEntry{
		AssignmentID: payload.AssignmentID,
		StudentID:    studentID,
		Status:       models.StateUnpublished,
	}
	journal.SetContent(s.cleanContent(payload.Content))

	if err := s.journals.Create(ctx, &journal); err != nil {
		return dto.JournalResponse{}, err
	}

	s.logger.Info().Uint("journal_id", journal.ID).Uint("student_id", studentID).Msg("journal draft created")

	created, err := s.journals.GetByID(ctx, journal.ID)
	if err != nil {
		return dto.JournalResponse{}, err
	}

	return dto.NewJournalResponse(created, nil), nil
}

func (s *journalService) Get(ctx context.Context, id uint) (dto.JournalResponse, error) {
	journal, err := s.journals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JournalResponse{}, ErrJournalNotFound
		}
		return dto.JournalResponse{}, err
	}

	grade, err := s.loadGrade(ctx, id)
	if err != nil {
		return dto.JournalResponse{}, err
	}

	return dto.NewJournalResponse(journal, grade), nil
}

func (s *journalService) List(ctx context.Context, filter dto.JournalFilter) ([]dto.JournalResponse, error) {
	repoFilter := repository.JournalFilter{
		AssignmentID: filter.AssignmentID,
		StudentID:    filter.StudentID,
		Published:    filter.Published,
	}
	if filter.Status != nil {
		status := models.JournalState(*filter.Status)
		repoFilter.Status = &status
	}

	journals, err := s.journals.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewJournalResponseSlice(journals), nil
}

// Publish freezes the journal body for grading. The word count is checked
// against the configured bounds and a violation leaves the draft untouched.
func (s *journalService) Publish(ctx context.Context, id uint, payload dto.JournalPublishRequest) (dto.JournalResponse, error) {
	if err := s.validate.Struct(payload); err != nil {
		return dto.JournalResponse{}, err
	}

	journal, err := s.journals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JournalResponse{}, ErrJournalNotFound
		}
		return dto.JournalResponse{}, err
	}

	if !models.CanTransition(models.ActionPublish, journal.Status) {
		return dto.JournalResponse{}, &TransitionError{Action: models.ActionPublish, State: journal.Status}
	}
	if journal.Assignment.IsPastDue(s.now()) {
		return dto.JournalResponse{}, ErrPastDue
	}

	content := s.cleanContent(payload.Content)
	words := models.CountWords(content)
	if words < s.cfg.MinWords || words > s.cfg.MaxWords {
		return dto.JournalResponse{}, &WordCountError{Words: words, Min: s.cfg.MinWords, Max: s.cfg.MaxWords}
	}

	now := s.now()
	journal.SetContent(content)
	journal.IsPublished = true
	journal.PublishedAt = &now
	journal.Status = models.StatePublished

	if err := s.journals.Update(ctx, &journal); err != nil {
		return dto.JournalResponse{}, err
	}

	s.logger.Info().Uint("journal_id", journal.ID).Int("word_count", words).Msg("journal published")

	return dto.NewJournalResponse(journal, nil), nil
}

// Revise replaces the body once, inside the revision window. The existing
// AI grade stays in place until the regrade runs.
func (s *journalService) Revise(ctx context.Context, id uint, payload dto.JournalReviseRequest) (dto.JournalResponse, error) {
	if err := s.validate.Struct(payload); err != nil {
		return dto.JournalResponse{}, err
	}

	journal, err := s.journals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JournalResponse{}, ErrJournalNotFound
		}
		return dto.JournalResponse{}, err
	}

	grade, err := s.loadGrade(ctx, id)
	if err != nil {
		return dto.JournalResponse{}, err
	}

	if !models.CanTransition(models.ActionRevise, journal.Status) || !models.CanRevise(journal, grade) {
		return dto.JournalResponse{}, ErrRevisionExhausted
	}

	content := s.cleanContent(payload.Content)
	words := models.CountWords(content)
	if words < s.cfg.MinWords || words > s.cfg.MaxWords {
		return dto.JournalResponse{}, &WordCountError{Words: words, Min: s.cfg.MinWords, Max: s.cfg.MaxWords}
	}

	now := s.now()
	journal.SetContent(content)
	journal.ResubmissionCount++
	journal.PublishedAt = &now
	journal.Status = models.StateResubmitted

	if err := s.journals.Update(ctx, &journal); err != nil {
		return dto.JournalResponse{}, err
	}

	s.logger.Info().
		Uint("journal_id", journal.ID).
		Int("resubmission_count", journal.ResubmissionCount).
		Msg("journal revised")

	return dto.NewJournalResponse(journal, grade), nil
}

func (s *journalService) loadGrade(ctx context.Context, journalID uint) (*models.JournalGrade, error) {
	grade, err := s.grades.GetByJournalID(ctx, journalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grade, nil
}

package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gleeworld/course-api/internal/dto"
	"github.com/gleeworld/course-api/internal/observability"
)

var bulkTracer = otel.Tracer("github.com/gleeworld/course-api/internal/service/bulk_grading")

// BulkGradingService grades a batch of journals sequentially. Items are
// processed in request order and one failure never aborts the run.
type BulkGradingService interface {
	Run(ctx context.Context, payload dto.BulkGradeRequest) (dto.BulkGradeResponse, error)
}

type bulkGradingService struct {
	grading  GradingService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewBulkGradingService instantiates the bulk runner on top of the single
// journal orchestrator.
func NewBulkGradingService(grading GradingService, validate *validator.Validate, logger zerolog.Logger) BulkGradingService {
	return &bulkGradingService{
		grading:  grading,
		validate: validate,
		logger:   logger.With().Str("component", "bulk_grading_service").Logger(),
	}
}

func (s *bulkGradingService) Run(ctx context.Context, payload dto.BulkGradeRequest) (dto.BulkGradeResponse, error) {
	if err := s.validate.Struct(payload); err != nil {
		return dto.BulkGradeResponse{}, err
	}

	ctx, span := bulkTracer.Start(ctx, "grading.BulkRun")
	defer span.End()
	span.SetAttributes(
		attribute.Int("bulk.total", len(payload.JournalIDs)),
		attribute.String("bulk.mode", payload.Mode),
	)

	mode := dto.GradeModeNew
	if payload.Mode == dto.BulkModeForceRegradeAll {
		mode = dto.GradeModeRegrade
	}

	response := dto.BulkGradeResponse{Total: len(payload.JournalIDs)}
	for _, journalID := range payload.JournalIDs {
		item := s.gradeOne(ctx, journalID, mode)
		observability.BulkItems().WithLabelValues(item.Status).Inc()
		switch item.Status {
		case dto.BulkItemGraded:
			response.Graded++
		case dto.BulkItemSkipped:
			response.Skipped++
		default:
			response.Failed++
		}
		response.Items = append(response.Items, item)
	}

	s.logger.Info().
		Int("total", response.Total).
		Int("graded", response.Graded).
		Int("skipped", response.Skipped).
		Int("failed", response.Failed).
		Msg("bulk grading run finished")

	return response, nil
}

// gradeOne maps orchestrator outcomes onto bulk item statuses. Locked
// grades and already graded journals in only-ungraded mode count as
// skipped, everything else that errors counts as failed.
func (s *bulkGradingService) gradeOne(ctx context.Context, journalID uint, mode string) dto.BulkItemResult {
	_, err := s.grading.GradeWithAI(ctx, journalID, mode)
	if err == nil {
		return dto.BulkItemResult{JournalID: journalID, Status: dto.BulkItemGraded}
	}

	if errors.Is(err, ErrGradeLocked) || errors.Is(err, ErrAlreadyGraded) {
		s.logger.Debug().Uint("journal_id", journalID).Err(err).Msg("bulk item skipped")
		return dto.BulkItemResult{JournalID: journalID, Status: dto.BulkItemSkipped}
	}

	s.logger.Error().Uint("journal_id", journalID).Err(err).Msg("bulk item failed")
	return dto.BulkItemResult{JournalID: journalID, Status: dto.BulkItemFailed, Error: err.Error()}
}

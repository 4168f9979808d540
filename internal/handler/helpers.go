package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gleeworld/course-api/internal/middleware"
	"github.com/gleeworld/course-api/internal/service"
	"github.com/gleeworld/course-api/internal/utils"
	"github.com/gleeworld/course-api/pkg/ai"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// respondServiceError maps workflow errors onto HTTP responses. Unknown
// errors are logged and reported as the fallback message.
func respondServiceError(c *fiber.Ctx, logger *zerolog.Logger, err error, fallback string) error {
	var wordCountErr *service.WordCountError
	var transitionErr *service.TransitionError
	var parseErr *ai.ParseError

	switch {
	case errors.Is(err, service.ErrJournalNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrGradeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &wordCountErr):
		return utils.SendError(c, fiber.StatusBadRequest, wordCountErr.Error())
	case errors.As(err, &transitionErr):
		return utils.SendError(c, fiber.StatusConflict, transitionErr.Error())
	case errors.Is(err, service.ErrGradeLocked),
		errors.Is(err, service.ErrAlreadyFinal),
		errors.Is(err, service.ErrAlreadyGraded),
		errors.Is(err, service.ErrRevisionExhausted),
		errors.Is(err, service.ErrPastDue):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrGradingInFlight):
		return utils.SendError(c, fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrScoreExceedsMax),
		errors.Is(err, service.ErrInvalidRubric):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &parseErr):
		return utils.SendErrorWithData(c, fiber.StatusUnprocessableEntity, "model reply could not be parsed", fiber.Map{
			"reason": parseErr.Reason,
			"raw":    parseErr.Raw,
		})
	case errors.Is(err, service.ErrModelCall):
		return utils.SendError(c, fiber.StatusBadGateway, "grading model unavailable")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

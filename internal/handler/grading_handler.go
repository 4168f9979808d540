package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gleeworld/course-api/internal/dto"
	"github.com/gleeworld/course-api/internal/service"
	"github.com/gleeworld/course-api/internal/utils"
)

// GradingHandler wires AI grading, bulk grading and instructor finalize
// endpoints.
type GradingHandler struct {
	grading service.GradingService
	bulk    service.BulkGradingService
	final   service.FinalGradeService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(
	grading service.GradingService,
	bulk service.BulkGradingService,
	final service.FinalGradeService,
	logger zerolog.Logger,
) *GradingHandler {
	return &GradingHandler{
		grading: grading,
		bulk:    bulk,
		final:   final,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches all grading endpoints to one router group. Used in
// tests and deployments without role separation.
func (h *GradingHandler) Register(router fiber.Router) {
	h.RegisterReads(router)
	h.RegisterActions(router)
}

// RegisterReads attaches the grade view endpoints, available to anyone who
// can see the journal.
func (h *GradingHandler) RegisterReads(router fiber.Router) {
	router.Get("/:id/grade", h.getGrade)
	router.Get("/:id/grade/history", h.gradeHistory)
}

// RegisterActions attaches the grading mutations. The bulk endpoint lives
// at the group root since it spans many journals.
func (h *GradingHandler) RegisterActions(router fiber.Router) {
	router.Post("/bulk-grade", h.bulkGrade)
	router.Post("/:id/grade", h.grade)
	router.Post("/:id/finalize", h.finalize)
}

func (h *GradingHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.GradeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	grade, err := h.grading.GradeWithAI(c.Context(), id, payload.Mode)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err, "failed to grade journal")
	}

	return utils.SendSuccess(c, "journal graded", grade)
}

func (h *GradingHandler) getGrade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	grade, err := h.grading.GetGrade(c.Context(), id)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err, "failed to load grade")
	}

	return utils.SendSuccess(c, "grade retrieved", grade)
}

func (h *GradingHandler) gradeHistory(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	history, err := h.grading.GradeHistory(c.Context(), id)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err, "failed to load grade history")
	}

	return utils.SendSuccess(c, "grade history retrieved", history)
}

func (h *GradingHandler) bulkGrade(c *fiber.Ctx) error {
	var payload dto.BulkGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	summary, err := h.bulk.Run(c.Context(), payload)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err, "failed to run bulk grading")
	}

	return utils.SendSuccess(c, "bulk grading finished", summary)
}

func (h *GradingHandler) finalize(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.FinalizeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	grade, err := h.final.Finalize(c.Context(), id, userIDFromContext(c), payload)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err, "failed to finalize grade")
	}

	return utils.SendSuccess(c, "grade finalized", grade)
}

package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gleeworld/course-api/internal/dto"
	"github.com/gleeworld/course-api/internal/service"
	"github.com/gleeworld/course-api/internal/utils"
)

// JournalHandler wires journal endpoints for students.
type JournalHandler struct {
	service service.JournalService
	logger  zerolog.Logger
}

// NewJournalHandler constructs the handler.
func NewJournalHandler(service service.JournalService, logger zerolog.Logger) *JournalHandler {
	return &JournalHandler{
		service: service,
		logger:  logger.With().Str("component", "journal_handler").Logger(),
	}
}

// Register attaches journal endpoints to the router group.
func (h *JournalHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/publish", h.publish)
	router.Post("/:id/revise", h.revise)
}

func (h *JournalHandler) list(c *fiber.Ctx) error {
	filter, err := parseJournalFilter(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	journals, err := h.service.List(c.Context(), filter)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err, "failed to list journals")
	}

	return utils.SendSuccess(c, "journals retrieved", journals)
}

func (h *JournalHandler) create(c *fiber.Ctx) error {
	var payload dto.JournalCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	journal, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err, "failed to create journal")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "journal created", journal)
}

func (h *JournalHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	journal, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err, "failed to load journal")
	}

	return utils.SendSuccess(c, "journal retrieved", journal)
}

func (h *JournalHandler) publish(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.JournalPublishRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	journal, err := h.service.Publish(c.Context(), id, payload)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err, "failed to publish journal")
	}

	return utils.SendSuccess(c, "journal published", journal)
}

func (h *JournalHandler) revise(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.JournalReviseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	journal, err := h.service.Revise(c.Context(), id, payload)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err, "failed to revise journal")
	}

	return utils.SendSuccess(c, "journal revised", journal)
}

func parseJournalFilter(c *fiber.Ctx) (dto.JournalFilter, error) {
	var filter dto.JournalFilter

	if raw := strings.TrimSpace(c.Query("assignment_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return dto.JournalFilter{}, err
		}
		id := uint(parsed)
		filter.AssignmentID = &id
	}

	if raw := strings.TrimSpace(c.Query("student_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return dto.JournalFilter{}, err
		}
		id := uint(parsed)
		filter.StudentID = &id
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		filter.Status = &raw
	}

	if raw := strings.TrimSpace(c.Query("published")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return dto.JournalFilter{}, err
		}
		filter.Published = &parsed
	}

	return filter, nil
}

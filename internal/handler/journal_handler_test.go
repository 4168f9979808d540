package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gleeworld/course-api/internal/dto"
	"github.com/gleeworld/course-api/internal/handler"
	"github.com/gleeworld/course-api/internal/service"
)

type mockJournalService struct {
	lastStudent uint
	lastID      uint
	lastFilter  dto.JournalFilter
	response    dto.JournalResponse
	list        []dto.JournalResponse
	err         error
}

func (m *mockJournalService) Create(_ context.Context, studentID uint, _ dto.JournalCreateRequest) (dto.JournalResponse, error) {
	m.lastStudent = studentID
	return m.response, m.err
}

func (m *mockJournalService) Get(_ context.Context, id uint) (dto.JournalResponse, error) {
	m.lastID = id
	return m.response, m.err
}

func (m *mockJournalService) List(_ context.Context, filter dto.JournalFilter) ([]dto.JournalResponse, error) {
	m.lastFilter = filter
	return m.list, m.err
}

func (m *mockJournalService) Publish(_ context.Context, id uint, _ dto.JournalPublishRequest) (dto.JournalResponse, error) {
	m.lastID = id
	return m.response, m.err
}

func (m *mockJournalService) Revise(_ context.Context, id uint, _ dto.JournalReviseRequest) (dto.JournalResponse, error) {
	m.lastID = id
	return m.response, m.err
}

func newJournalApp(svc *mockJournalService) *fiber.App {
	logger := zerolog.New(io.Discard)
	app := fiber.New()
	group := app.Group("/api/journals", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		return c.Next()
	})
	handler.NewJournalHandler(svc, logger).Register(group)
	return app
}

func TestJournalHandler_CreateUsesAuthenticatedStudent(t *testing.T) {
	svc := &mockJournalService{response: dto.JournalResponse{ID: 1, StudentID: 7}}
	app := newJournalApp(svc)

	body, err := json.Marshal(dto.JournalCreateRequest{AssignmentID: 2})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/journals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastStudent)
}

func TestJournalHandler_ListParsesFilters(t *testing.T) {
	svc := &mockJournalService{}
	app := newJournalApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/journals?assignment_id=4&published=true", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, svc.lastFilter.AssignmentID)
	require.Equal(t, uint(4), *svc.lastFilter.AssignmentID)
	require.NotNil(t, svc.lastFilter.Published)
	require.True(t, *svc.lastFilter.Published)
}

func TestJournalHandler_PublishWordCountError(t *testing.T) {
	svc := &mockJournalService{err: &service.WordCountError{Words: 240, Min: 250, Max: 300}}
	app := newJournalApp(svc)

	body, err := json.Marshal(dto.JournalPublishRequest{Content: "too short"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/journals/5/publish", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.False(t, response.Success)
	require.Contains(t, response.Message, "240")
}

func TestJournalHandler_ReviseExhausted(t *testing.T) {
	svc := &mockJournalService{err: service.ErrRevisionExhausted}
	app := newJournalApp(svc)

	body, err := json.Marshal(dto.JournalReviseRequest{Content: "revised entry"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/journals/5/revise", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

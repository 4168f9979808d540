package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gleeworld/course-api/internal/dto"
	"github.com/gleeworld/course-api/internal/models"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("listening ", n))
}

func newJournalFixture(t *testing.T) (JournalService, *fakeJournalRepo, *fakeGradeRepo, *fakeAssignmentRepo) {
	t.Helper()
	journals := newFakeJournalRepo()
	grades := newFakeGradeRepo()
	assignments := newFakeAssignmentRepo()
	svc := NewJournalService(journals, grades, assignments, newTestValidator(), JournalConfig{MinWords: 250, MaxWords: 300}, zerolog.Nop())
	return svc, journals, grades, assignments
}

func seedAssignment(t *testing.T, assignments *fakeAssignmentRepo) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		Title:    "Week 3 Listening Journal",
		Prompt:   "Reflect on the assigned recording.",
		Points:   17,
		Criteria: models.DefaultRubric(0),
	}
	require.NoError(t, assignments.Create(context.Background(), &assignment))
	return assignment
}

func seedJournal(t *testing.T, journals *fakeJournalRepo, assignment models.Assignment, status models.JournalState) models.JournalEntry {
	t.Helper()
	journal := models.JournalEntry{
		AssignmentID: assignment.ID,
		StudentID:    7,
		Status:       status,
		IsPublished:  status != models.StateUnpublished,
		Assignment:   assignment,
	}
	journal.SetContent(words(260))
	require.NoError(t, journals.Create(context.Background(), &journal))
	return journal
}

func TestJournalServicePublish(t *testing.T) {
	svc, _, _, assignments := newJournalFixture(t)
	assignment := seedAssignment(t, assignments)

	created, err := svc.Create(context.Background(), 7, dto.JournalCreateRequest{AssignmentID: assignment.ID})
	require.NoError(t, err)
	require.Equal(t, string(models.StateUnpublished), created.Status)

	published, err := svc.Publish(context.Background(), created.ID, dto.JournalPublishRequest{Content: words(260)})
	require.NoError(t, err)
	require.Equal(t, string(models.StatePublished), published.Status)
	require.True(t, published.IsPublished)
	require.NotNil(t, published.PublishedAt)
	require.Equal(t, 260, published.WordCount)
}

func TestJournalServicePublishRejectsShortContent(t *testing.T) {
	svc, journals, _, assignments := newJournalFixture(t)
	assignment := seedAssignment(t, assignments)

	created, err := svc.Create(context.Background(), 7, dto.JournalCreateRequest{AssignmentID: assignment.ID})
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), created.ID, dto.JournalPublishRequest{Content: words(240)})
	var wordCountErr *WordCountError
	require.ErrorAs(t, err, &wordCountErr)
	require.Equal(t, 240, wordCountErr.Words)
	require.Equal(t, 250, wordCountErr.Min)

	stored, err := journals.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, models.StateUnpublished, stored.Status)
	require.False(t, stored.IsPublished)
}

func TestJournalServicePublishPastDueRejected(t *testing.T) {
	svc, journals, _, assignments := newJournalFixture(t)

	assignment := models.Assignment{
		Title:    "Week 1 Listening Journal",
		Prompt:   "Reflect on the assigned recording.",
		Points:   17,
		DueDate:  time.Now().Add(-24 * time.Hour),
		Criteria: models.DefaultRubric(0),
	}
	require.NoError(t, assignments.Create(context.Background(), &assignment))
	journal := seedJournal(t, journals, assignment, models.StateUnpublished)

	_, err := svc.Publish(context.Background(), journal.ID, dto.JournalPublishRequest{Content: words(260)})
	require.ErrorIs(t, err, ErrPastDue)

	stored, err := journals.GetByID(context.Background(), journal.ID)
	require.NoError(t, err)
	require.Equal(t, models.StateUnpublished, stored.Status)
	require.False(t, stored.IsPublished)
}

func TestJournalServicePublishTwiceRejected(t *testing.T) {
	svc, journals, _, assignments := newJournalFixture(t)
	assignment := seedAssignment(t, assignments)
	journal := seedJournal(t, journals, assignment, models.StatePublished)

	_, err := svc.Publish(context.Background(), journal.ID, dto.JournalPublishRequest{Content: words(260)})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, models.ActionPublish, transitionErr.Action)
	require.Equal(t, models.StatePublished, transitionErr.State)
}

func TestJournalServiceReviseOnce(t *testing.T) {
	svc, journals, grades, assignments := newJournalFixture(t)
	assignment := seedAssignment(t, assignments)
	journal := seedJournal(t, journals, assignment, models.StateRevisionOpen)
	require.NoError(t, grades.Upsert(context.Background(), &models.JournalGrade{
		JournalID:    journal.ID,
		AssignmentID: assignment.ID,
		StudentID:    7,
		OverallScore: 12,
		LetterGrade:  "B",
	}))

	revised, err := svc.Revise(context.Background(), journal.ID, dto.JournalReviseRequest{Content: words(270)})
	require.NoError(t, err)
	require.Equal(t, string(models.StateResubmitted), revised.Status)
	require.Equal(t, 1, revised.ResubmissionCount)
	require.Equal(t, 270, revised.WordCount)
}

func TestJournalServiceSecondReviseRejected(t *testing.T) {
	svc, journals, grades, assignments := newJournalFixture(t)
	assignment := seedAssignment(t, assignments)
	journal := seedJournal(t, journals, assignment, models.StateRevisionOpen)
	require.NoError(t, grades.Upsert(context.Background(), &models.JournalGrade{
		JournalID:    journal.ID,
		AssignmentID: assignment.ID,
		StudentID:    7,
		OverallScore: 12,
		LetterGrade:  "B",
	}))

	first, err := svc.Revise(context.Background(), journal.ID, dto.JournalReviseRequest{Content: words(270)})
	require.NoError(t, err)

	_, err = svc.Revise(context.Background(), journal.ID, dto.JournalReviseRequest{Content: words(280)})
	require.ErrorIs(t, err, ErrRevisionExhausted)

	stored, getErr := journals.GetByID(context.Background(), journal.ID)
	require.NoError(t, getErr)
	require.Equal(t, first.Content, stored.Content)
	require.Equal(t, 1, stored.ResubmissionCount)
}

func TestJournalServiceReviseWithoutGradeRejected(t *testing.T) {
	svc, journals, _, assignments := newJournalFixture(t)
	assignment := seedAssignment(t, assignments)
	journal := seedJournal(t, journals, assignment, models.StatePublished)

	_, err := svc.Revise(context.Background(), journal.ID, dto.JournalReviseRequest{Content: words(270)})
	require.ErrorIs(t, err, ErrRevisionExhausted)
}

func TestJournalServicePublishStripsMarkup(t *testing.T) {
	svc, _, _, assignments := newJournalFixture(t)
	assignment := seedAssignment(t, assignments)

	created, err := svc.Create(context.Background(), 7, dto.JournalCreateRequest{AssignmentID: assignment.ID})
	require.NoError(t, err)

	content := "<p>" + words(255) + "</p><script>alert(1)</script>"
	published, err := svc.Publish(context.Background(), created.ID, dto.JournalPublishRequest{Content: content})
	require.NoError(t, err)
	require.NotContains(t, published.Content, "<p>")
	require.NotContains(t, published.Content, "script")
	require.Equal(t, 255, published.WordCount)
}

func TestJournalServiceCreateUnknownAssignment(t *testing.T) {
	svc, _, _, _ := newJournalFixture(t)

	_, err := svc.Create(context.Background(), 7, dto.JournalCreateRequest{AssignmentID: 99})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

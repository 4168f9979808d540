package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gleeworld/course-api/internal/dto"
	"github.com/gleeworld/course-api/internal/models"
)

func newBulkFixture(t *testing.T) (*gradingFixture, BulkGradingService) {
	t.Helper()
	f := newGradingFixture(t)
	bulk := NewBulkGradingService(f.svc, newTestValidator(), zerolog.Nop())
	return f, bulk
}

func TestBulkRunSkipsFinalGrades(t *testing.T) {
	f, bulk := newBulkFixture(t)
	assignment := seedAssignment(t, f.assignments)

	var ids []uint
	for i := 0; i < 5; i++ {
		journal := seedJournal(t, f.journals, assignment, models.StatePublished)
		ids = append(ids, journal.ID)
	}

	lockedScore := 16.0
	locked, err := f.journals.GetByID(context.Background(), ids[2])
	require.NoError(t, err)
	locked.Status = models.StateFinalGraded
	require.NoError(t, f.journals.Update(context.Background(), &locked))
	require.NoError(t, f.grades.Upsert(context.Background(), &models.JournalGrade{
		JournalID:       ids[2],
		OverallScore:    14,
		LetterGrade:     "B+",
		InstructorScore: &lockedScore,
	}))

	response, err := bulk.Run(context.Background(), dto.BulkGradeRequest{JournalIDs: ids, Mode: dto.BulkModeForceRegradeAll})
	require.NoError(t, err)
	require.Equal(t, 5, response.Total)
	require.Equal(t, 4, response.Graded)
	require.Equal(t, 1, response.Skipped)
	require.Equal(t, 0, response.Failed)
	require.Len(t, response.Items, 5)
	require.Equal(t, dto.BulkItemSkipped, response.Items[2].Status)

	stored, err := f.grades.GetByJournalID(context.Background(), ids[2])
	require.NoError(t, err)
	require.Equal(t, 14.0, stored.OverallScore)
	require.NotNil(t, stored.InstructorScore)
}

func TestBulkRunOnlyUngradedSkipsGraded(t *testing.T) {
	f, bulk := newBulkFixture(t)
	assignment := seedAssignment(t, f.assignments)

	first := seedJournal(t, f.journals, assignment, models.StatePublished)
	second := seedJournal(t, f.journals, assignment, models.StatePublished)

	_, err := f.svc.GradeWithAI(context.Background(), first.ID, dto.GradeModeNew)
	require.NoError(t, err)
	callsBefore := len(f.grader.calls)

	response, err := bulk.Run(context.Background(), dto.BulkGradeRequest{
		JournalIDs: []uint{first.ID, second.ID},
		Mode:       dto.BulkModeOnlyUngraded,
	})
	require.NoError(t, err)
	require.Equal(t, 1, response.Graded)
	require.Equal(t, 1, response.Skipped)
	require.Len(t, f.grader.calls, callsBefore+1)
}

func TestBulkRunRecordsFailuresAndContinues(t *testing.T) {
	f, bulk := newBulkFixture(t)
	assignment := seedAssignment(t, f.assignments)

	good := seedJournal(t, f.journals, assignment, models.StatePublished)

	response, err := bulk.Run(context.Background(), dto.BulkGradeRequest{
		JournalIDs: []uint{999, good.ID},
		Mode:       dto.BulkModeOnlyUngraded,
	})
	require.NoError(t, err)
	require.Equal(t, 1, response.Failed)
	require.Equal(t, 1, response.Graded)
	require.Equal(t, dto.BulkItemFailed, response.Items[0].Status)
	require.NotEmpty(t, response.Items[0].Error)
	require.Equal(t, dto.BulkItemGraded, response.Items[1].Status)
}

func TestBulkRunModelFailureDoesNotAbort(t *testing.T) {
	f, bulk := newBulkFixture(t)
	assignment := seedAssignment(t, f.assignments)

	first := seedJournal(t, f.journals, assignment, models.StatePublished)
	second := seedJournal(t, f.journals, assignment, models.StatePublished)
	f.grader.err = errors.New("upstream timeout")

	response, err := bulk.Run(context.Background(), dto.BulkGradeRequest{
		JournalIDs: []uint{first.ID, second.ID},
		Mode:       dto.BulkModeOnlyUngraded,
	})
	require.NoError(t, err)
	require.Equal(t, 2, response.Failed)
	require.Equal(t, 0, response.Graded)
}

func TestBulkRunValidatesMode(t *testing.T) {
	_, bulk := newBulkFixture(t)

	_, err := bulk.Run(context.Background(), dto.BulkGradeRequest{JournalIDs: []uint{1}, Mode: "everything"})
	require.Error(t, err)
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gleeworld/course-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Assignment{},
		&models.RubricCriterion{},
		&models.JournalEntry{},
		&models.JournalGrade{},
		&models.JournalGradeHistory{},
	))
	return db
}

func TestGradeRepositoryUpsertReplacesExistingRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGradeRepository(db)
	ctx := context.Background()

	first := models.JournalGrade{
		JournalID:    7,
		AssignmentID: 1,
		StudentID:    2,
		OverallScore: 12,
		LetterGrade:  "B",
		AIModel:      "gpt-4o-mini",
		GradedAt:     time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.Upsert(ctx, &first))

	second := models.JournalGrade{
		JournalID:    7,
		AssignmentID: 1,
		StudentID:    2,
		OverallScore: 15,
		LetterGrade:  "A-",
		AIModel:      "gpt-4o-mini",
		GradedAt:     time.Now(),
	}
	require.NoError(t, repo.Upsert(ctx, &second))
	require.Equal(t, first.ID, second.ID, "regrade must reuse the live grade row")

	stored, err := repo.GetByJournalID(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 15.0, stored.OverallScore)
	require.Equal(t, "A-", stored.LetterGrade)

	var count int64
	require.NoError(t, db.Model(&models.JournalGrade{}).Where("journal_id = ?", 7).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestGradeRepositoryHistoryOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGradeRepository(db)
	ctx := context.Background()

	older := models.JournalGradeHistory{JournalID: 9, OverallScore: 11, LetterGrade: "B-", GradedAt: time.Now().Add(-2 * time.Hour)}
	newer := models.JournalGradeHistory{JournalID: 9, OverallScore: 14, LetterGrade: "B+", GradedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.AppendHistory(ctx, &older))
	require.NoError(t, repo.AppendHistory(ctx, &newer))

	entries, err := repo.ListHistory(ctx, 9)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 14.0, entries[0].OverallScore, "expected newest attempt first")
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gleeworld/course-api/internal/models"
)

// GradeRepository defines data operations for journal grades. A journal has
// at most one live grade row; regrades overwrite the AI portion of it.
type GradeRepository interface {
	GetByJournalID(ctx context.Context, journalID uint) (models.JournalGrade, error)
	Upsert(ctx context.Context, grade *models.JournalGrade) error
	Update(ctx context.Context, grade *models.JournalGrade) error
	AppendHistory(ctx context.Context, entry *models.JournalGradeHistory) error
	ListHistory(ctx context.Context, journalID uint) ([]models.JournalGradeHistory, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) GetByJournalID(ctx context.Context, journalID uint) (models.JournalGrade, error) {
	var grade models.JournalGrade
	if err := r.db.WithContext(ctx).Where("journal_id = ?", journalID).First(&grade).Error; err != nil {
		return models.JournalGrade{}, err
	}

	return grade, nil
}

// Upsert writes the grade, replacing an existing row for the same journal.
// The persisted write is all-or-nothing per grading attempt.
func (r *gradeRepository) Upsert(ctx context.Context, grade *models.JournalGrade) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.JournalGrade
		err := tx.Where("journal_id = ?", grade.JournalID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(grade).Error
		case err != nil:
			return err
		default:
			grade.ID = existing.ID
			grade.CreatedAt = existing.CreatedAt
			return tx.Save(grade).Error
		}
	})
}

func (r *gradeRepository) Update(ctx context.Context, grade *models.JournalGrade) error {
	return r.db.WithContext(ctx).Save(grade).Error
}

func (r *gradeRepository) AppendHistory(ctx context.Context, entry *models.JournalGradeHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gradeRepository) ListHistory(ctx context.Context, journalID uint) ([]models.JournalGradeHistory, error) {
	var entries []models.JournalGradeHistory
	if err := r.db.WithContext(ctx).
		Where("journal_id = ?", journalID).
		Order("graded_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gleeworld/course-api/internal/models"
)

// JournalFilter allows narrowing journal queries.
type JournalFilter struct {
	AssignmentID *uint
	StudentID    *uint
	Status       *models.JournalState
	Published    *bool
}

// JournalRepository defines data operations for journal entries.
type JournalRepository interface {
	List(ctx context.Context, filter JournalFilter) ([]models.JournalEntry, error)
	GetByID(ctx context.Context, id uint) (models.JournalEntry, error)
	Create(ctx context.Context, journal *models.JournalEntry) error
	Update(ctx context.Context, journal *models.JournalEntry) error
}

type journalRepository struct {
	db *gorm.DB
}

// NewJournalRepository instantiates the repository.
func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.JournalEntry{}).
		Preload("Assignment").
		Preload("Assignment.Criteria")
}

func (r *journalRepository) List(ctx context.Context, filter JournalFilter) ([]models.JournalEntry, error) {
	query := r.baseQuery(ctx)

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.Published != nil {
		query = query.Where("is_published = ?", *filter.Published)
	}

	var journals []models.JournalEntry
	if err := query.Order("published_at DESC, created_at DESC").Find(&journals).Error; err != nil {
		return nil, err
	}

	return journals, nil
}

func (r *journalRepository) GetByID(ctx context.Context, id uint) (models.JournalEntry, error) {
	var journal models.JournalEntry
	if err := r.baseQuery(ctx).First(&journal, id).Error; err != nil {
		return models.JournalEntry{}, err
	}

	return journal, nil
}

func (r *journalRepository) Create(ctx context.Context, journal *models.JournalEntry) error {
	return r.db.WithContext(ctx).Create(journal).Error
}

func (r *journalRepository) Update(ctx context.Context, journal *models.JournalEntry) error {
	return r.db.WithContext(ctx).Save(journal).Error
}

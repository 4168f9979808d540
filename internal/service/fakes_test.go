package service

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/gleeworld/course-api/internal/models"
	"github.com/gleeworld/course-api/internal/repository"
	"github.com/gleeworld/course-api/pkg/ai"
)

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

type fakeJournalRepo struct {
	mu       sync.Mutex
	journals map[uint]models.JournalEntry
	nextID   uint
}

func newFakeJournalRepo() *fakeJournalRepo {
	return &fakeJournalRepo{journals: make(map[uint]models.JournalEntry), nextID: 1}
}

func (r *fakeJournalRepo) List(_ context.Context, filter repository.JournalFilter) ([]models.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JournalEntry
	for _, journal := range r.journals {
		if filter.AssignmentID != nil && journal.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.StudentID != nil && journal.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && journal.Status != *filter.Status {
			continue
		}
		if filter.Published != nil && journal.IsPublished != *filter.Published {
			continue
		}
		out = append(out, journal)
	}
	return out, nil
}

func (r *fakeJournalRepo) GetByID(_ context.Context, id uint) (models.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	journal, ok := r.journals[id]
	if !ok {
		return models.JournalEntry{}, gorm.ErrRecordNotFound
	}
	return journal, nil
}

func (r *fakeJournalRepo) Create(_ context.Context, journal *models.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	journal.ID = r.nextID
	r.nextID++
	r.journals[journal.ID] = *journal
	return nil
}

func (r *fakeJournalRepo) Update(_ context.Context, journal *models.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journals[journal.ID] = *journal
	return nil
}

type fakeGradeRepo struct {
	mu      sync.Mutex
	grades  map[uint]models.JournalGrade
	history map[uint][]models.JournalGradeHistory
	nextID  uint
}

func newFakeGradeRepo() *fakeGradeRepo {
	return &fakeGradeRepo{
		grades:  make(map[uint]models.JournalGrade),
		history: make(map[uint][]models.JournalGradeHistory),
		nextID:  1,
	}
}

func (r *fakeGradeRepo) GetByJournalID(_ context.Context, journalID uint) (models.JournalGrade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	grade, ok := r.grades[journalID]
	if !ok {
		return models.JournalGrade{}, gorm.ErrRecordNotFound
	}
	return grade, nil
}

func (r *fakeGradeRepo) Upsert(_ context.Context, grade *models.JournalGrade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.grades[grade.JournalID]; ok {
		grade.ID = existing.ID
		grade.CreatedAt = existing.CreatedAt
	} else {
		grade.ID = r.nextID
		r.nextID++
	}
	r.grades[grade.JournalID] = *grade
	return nil
}

func (r *fakeGradeRepo) Update(_ context.Context, grade *models.JournalGrade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grades[grade.JournalID] = *grade
	return nil
}

func (r *fakeGradeRepo) AppendHistory(_ context.Context, entry *models.JournalGradeHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uint(len(r.history[entry.JournalID]) + 1)
	r.history[entry.JournalID] = append(r.history[entry.JournalID], *entry)
	return nil
}

func (r *fakeGradeRepo) ListHistory(_ context.Context, journalID uint) ([]models.JournalGradeHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.history[journalID]
	out := make([]models.JournalGradeHistory, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[uint]models.Assignment
	nextID      uint
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[uint]models.Assignment), nextID: 1}
}

func (r *fakeAssignmentRepo) List(_ context.Context) ([]models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Assignment
	for _, assignment := range r.assignments {
		out = append(out, assignment)
	}
	return out, nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (r *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment.ID = r.nextID
	r.nextID++
	r.assignments[assignment.ID] = *assignment
	return nil
}

func (r *fakeAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[assignment.ID] = *assignment
	return nil
}

func (r *fakeAssignmentRepo) ReplaceCriteria(_ context.Context, assignmentID uint, criteria []models.RubricCriterion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment := r.assignments[assignmentID]
	assignment.Criteria = criteria
	r.assignments[assignmentID] = assignment
	return nil
}

type fakeGrader struct {
	mu     sync.Mutex
	result ai.GradeResult
	err    error
	calls  []ai.GradingInput
}

func (g *fakeGrader) Grade(_ context.Context, input ai.GradingInput) (ai.GradeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, input)
	if g.err != nil {
		return ai.GradeResult{}, g.err
	}
	return g.result, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []GradingEvent
}

func (p *capturingPublisher) Publish(_ context.Context, event GradingEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

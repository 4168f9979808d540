package models

import (
	"fmt"
	"math"
	"time"
)

// Assignment represents a journal assignment definition for the course.
type Assignment struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Title     string            `gorm:"size:255;not null" json:"title"`
	Prompt    string            `gorm:"type:text" json:"prompt"`
	Points    float64           `gorm:"not null" json:"points"`
	DueDate   time.Time         `json:"due_date"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Criteria  []RubricCriterion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"criteria"`
}

// RubricCriterion is one weighted grading criterion of an assignment rubric.
type RubricCriterion struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	AssignmentID uint    `gorm:"not null;index" json:"assignment_id"`
	Name         string  `gorm:"size:255;not null" json:"name"`
	MaxPoints    float64 `gorm:"not null" json:"max_points"`
	Description  string  `gorm:"type:text" json:"description"`
	Position     int     `gorm:"not null;default:0" json:"position"`
}

// ValidateRubric checks that the criteria max points add up to the
// assignment total. Checked when a rubric is configured, not against model
// output at grading time.
func (a Assignment) ValidateRubric() error {
	if len(a.Criteria) == 0 {
		return nil
	}

	sum := 0.0
	for _, criterion := range a.Criteria {
		if criterion.MaxPoints <= 0 {
			return fmt.Errorf("criterion %q must carry positive max points", criterion.Name)
		}
		sum += criterion.MaxPoints
	}

	if math.Abs(sum-a.Points) > 1e-9 {
		return fmt.Errorf("rubric criteria sum to %.2f but assignment is worth %.2f points", sum, a.Points)
	}

	return nil
}

// RubricTotal sums the max points across criteria.
func RubricTotal(criteria []RubricCriterion) float64 {
	total := 0.0
	for _, criterion := range criteria {
		total += criterion.MaxPoints
	}
	return total
}

// DefaultRubric is the course rubric used when an assignment has none
// configured. Its criteria total 17 points.
func DefaultRubric(assignmentID uint) []RubricCriterion {
	return []RubricCriterion{
		{AssignmentID: assignmentID, Name: "Musical Analysis", MaxPoints: 6, Description: "Use of musical terminology and analytical depth", Position: 0},
		{AssignmentID: assignmentID, Name: "Historical Context", MaxPoints: 6, Description: "Understanding of cultural and historical significance", Position: 1},
		{AssignmentID: assignmentID, Name: "Writing Quality", MaxPoints: 5, Description: "Clarity, structure, and evidence support", Position: 2},
	}
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return !a.DueDate.IsZero() && reference.After(a.DueDate)
}

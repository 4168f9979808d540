package service

import (
	"errors"
	"fmt"

	"github.com/gleeworld/course-api/internal/models"
)

// ErrJournalNotFound indicates the journal entry was not located.
var ErrJournalNotFound = errors.New("journal not found")

// ErrAssignmentNotFound indicates the referenced assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrGradeNotFound indicates no grade exists for the journal yet.
var ErrGradeNotFound = errors.New("grade not found")

// ErrInvalidRubric indicates criteria weights that do not form a usable
// rubric.
var ErrInvalidRubric = errors.New("invalid rubric")

// ErrGradeLocked indicates an attempted AI regrade of an instructor-final
// grade. The attempt does not mutate anything.
var ErrGradeLocked = errors.New("grade is locked by an instructor final grade")

// ErrAlreadyFinal indicates a second finalize call on the same grade. The
// first instructor grade stays untouched.
var ErrAlreadyFinal = errors.New("grade has already been finalized")

// ErrAlreadyGraded indicates a grade exists and the caller did not ask for a
// regrade explicitly.
var ErrAlreadyGraded = errors.New("journal already graded; use regrade mode")

// ErrGradingInFlight indicates a grading run is already active for the
// journal. Grading is non-reentrant per journal id.
var ErrGradingInFlight = errors.New("grading already in flight for this journal")

// ErrModelCall indicates the external model call failed. It is surfaced to
// the caller and never retried here.
var ErrModelCall = errors.New("model call failed")

// ErrScoreExceedsMax indicates an instructor score above the assignment max.
var ErrScoreExceedsMax = errors.New("score exceeds assignment max")

// ErrRevisionExhausted indicates the single student revision was already
// used or the revision window never opened.
var ErrRevisionExhausted = errors.New("revision window closed")

// ErrPastDue indicates a publish attempt after the assignment deadline.
var ErrPastDue = errors.New("assignment past due")

// WordCountError reports journal content outside the configured bounds.
type WordCountError struct {
	Words int
	Min   int
	Max   int
}

func (e *WordCountError) Error() string {
	return fmt.Sprintf("word count %d outside allowed range %d-%d", e.Words, e.Min, e.Max)
}

// TransitionError reports a workflow action that is illegal in the
// journal's current state. The state is left unchanged.
type TransitionError struct {
	Action models.WorkflowAction
	State  models.JournalState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("action %s not allowed in state %s", e.Action, e.State)
}

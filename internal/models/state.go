package models

// JournalState is the explicit workflow state of a journal submission.
// Illegal transitions are rejected against the transition table instead of
// scattered field checks.
type JournalState string

const (
	// StateUnpublished is the mutable draft state.
	StateUnpublished JournalState = "unpublished"
	// StatePublished means the body is frozen and awaiting AI grading.
	StatePublished JournalState = "published"
	// StateAIGraded means an AI grade exists and the revision window is closed.
	StateAIGraded JournalState = "ai_graded"
	// StateRevisionOpen means an AI grade exists and the student may still revise.
	StateRevisionOpen JournalState = "revision_open"
	// StateResubmitted means the student used their revision and awaits a regrade.
	StateResubmitted JournalState = "resubmitted"
	// StateFinalGraded is terminal: the instructor grade is locked in.
	StateFinalGraded JournalState = "final_graded"
)

// WorkflowAction names an operation of the grading workflow.
type WorkflowAction string

const (
	ActionPublish  WorkflowAction = "publish"
	ActionGradeAI  WorkflowAction = "grade_ai"
	ActionRevise   WorkflowAction = "revise"
	ActionFinalize WorkflowAction = "finalize"
)

// transitionTable lists the legal source states per workflow action.
// GradeAI from AIGraded or RevisionOpen is the explicit regrade path.
var transitionTable = map[WorkflowAction][]JournalState{
	ActionPublish:  {StateUnpublished},
	ActionGradeAI:  {StatePublished, StateAIGraded, StateRevisionOpen, StateResubmitted},
	ActionRevise:   {StateRevisionOpen},
	ActionFinalize: {StateAIGraded, StateRevisionOpen, StateResubmitted},
}

// CanTransition reports whether the action is legal from the given state.
func CanTransition(action WorkflowAction, from JournalState) bool {
	for _, state := range transitionTable[action] {
		if state == from {
			return true
		}
	}
	return false
}

// NextGradedState returns the state a journal lands in after a successful AI
// grade: RevisionOpen while the revision window is still open, AIGraded once
// it is exhausted.
func NextGradedState(journal JournalEntry, grade *JournalGrade) JournalState {
	if CanRevise(journal, grade) {
		return StateRevisionOpen
	}
	return StateAIGraded
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	EventJournalGraded    = "journal.graded"
	EventJournalFinalized = "journal.finalized"
)

// GradingEvent is published after a grade is persisted. Consumers such as
// notification workers subscribe to the event subjects.
type GradingEvent struct {
	Type         string    `json:"type"`
	JournalID    uint      `json:"journal_id"`
	AssignmentID uint      `json:"assignment_id"`
	StudentID    uint      `json:"student_id"`
	OverallScore float64   `json:"overall_score"`
	LetterGrade  string    `json:"letter_grade"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher emits grading lifecycle events. Publishing is best effort
// and never fails the grading run.
type EventPublisher interface {
	Publish(ctx context.Context, event GradingEvent)
}

type natsEventPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewEventPublisher wraps a NATS connection. A nil connection yields a
// publisher that drops everything, for deployments without a broker.
func NewEventPublisher(conn *nats.Conn, logger zerolog.Logger) EventPublisher {
	return &natsEventPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "grading_events").Logger(),
	}
}

func (p *natsEventPublisher) Publish(_ context.Context, event GradingEvent) {
	if p.conn == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("marshal grading event")
		return
	}
	if err := p.conn.Publish(event.Type, payload); err != nil {
		p.logger.Warn().Err(err).Str("type", event.Type).Uint("journal_id", event.JournalID).Msg("publish grading event")
		return
	}
	p.logger.Debug().Str("type", event.Type).Uint("journal_id", event.JournalID).Msg("grading event published")
}

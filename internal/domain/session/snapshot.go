// Package session contains the read-only view of the study-session subsystem
// consumed by the progression engine, and the day-level activity aggregation
// shared by the daily challenge tracker and the streak tracker.
// The engine never writes session data.
package session

import (
	"time"
)

// Status represents the lifecycle state of a study session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// AnswerOutcome is the recorded outcome of a single card attempt.
type AnswerOutcome string

const (
	AnswerCorrect   AnswerOutcome = "correct"
	AnswerIncorrect AnswerOutcome = "incorrect"
	AnswerSkipped   AnswerOutcome = "skipped"
)

// Snapshot is a read-only view of one study session.
//
// CorrectCount is the finalized counter, populated only when the session
// completes. Answers is the per-card-attempt outcome map, populated
// continuously while the session is active. The two are different
// representations of the same activity and can drift; AggregateDay decides
// which one is authoritative per status.
type Snapshot struct {
	ID              string
	UserID          string
	DeckID          string
	Status          Status
	StartedAt       time.Time
	CompletedAt     *time.Time
	CorrectCount    *int // nil until the session completes
	DurationSeconds int
	Answers         map[string]AnswerOutcome
}

// IsCompleted returns true if the session has been finalized.
func (s *Snapshot) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// CorrectAnswers counts `correct` entries in the live answer map.
func (s *Snapshot) CorrectAnswers() int {
	n := 0
	for _, outcome := range s.Answers {
		if outcome == AnswerCorrect {
			n++
		}
	}
	return n
}

// Context is the per-session aggregate passed into achievement evaluation for
// conditions that cannot be derived from persisted lifetime stats alone.
// It is built by the caller at session completion time.
type Context struct {
	SessionID       string
	CorrectCount    int
	TotalCards      int
	DurationSeconds int
	Score           int // 0-100
	SessionXP       int
	CompletedAtHour int // local clock hour, 0-23
}

// CardsPerMinute returns the correct-answer rate of the session.
// A zero duration yields 0, not +Inf.
func (c *Context) CardsPerMinute() float64 {
	if c.DurationSeconds <= 0 {
		return 0
	}
	return float64(c.CorrectCount) / (float64(c.DurationSeconds) / 60.0)
}

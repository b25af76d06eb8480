package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of quiz lifecycle events.
type EventType string

const (
	EventAttemptStarted   EventType = "quiz.attempt.started"
	EventAttemptCompleted EventType = "quiz.attempt.completed"
)

// QuizEvent is the base event structure for all quiz lifecycle events.
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AttemptStartedEvent announces a new attempt cycle.
type AttemptStartedEvent struct {
	AttemptID  uint      `json:"attempt_id"`
	QuizID     uint      `json:"quiz_id"`
	QuizTitle  string    `json:"quiz_title"`
	UserID     string    `json:"user_id"`
	StartedAt  time.Time `json:"started_at"`
	EndsAt     time.Time `json:"ends_at"`
	TotalShown int       `json:"total_shown"`
}

// AttemptCompletedEvent carries the server-computed result of a finished
// attempt; the messaging service turns it into user-facing notifications.
type AttemptCompletedEvent struct {
	AttemptID    uint      `json:"attempt_id"`
	QuizID       uint      `json:"quiz_id"`
	QuizTitle    string    `json:"quiz_title"`
	UserID       string    `json:"user_id"`
	CompletedAt  time.Time `json:"completed_at"`
	CorrectCount int       `json:"correct_count"`
	TotalShown   int       `json:"total_shown"`
	Percentage   int       `json:"percentage"`
	Passed       bool      `json:"passed"`
}

// Event factory functions

func NewAttemptStartedEvent(attemptID, quizID uint, title, userID string, startedAt, endsAt time.Time, totalShown int) *QuizEvent {
	return &QuizEvent{
		ID:        GenerateEventID(),
		Type:      EventAttemptStarted,
		Timestamp: time.Now(),
		Source:    "quiz-engine",
		Version:   "1.0",
		Data: AttemptStartedEvent{
			AttemptID:  attemptID,
			QuizID:     quizID,
			QuizTitle:  title,
			UserID:     userID,
			StartedAt:  startedAt,
			EndsAt:     endsAt,
			TotalShown: totalShown,
		},
	}
}

func NewAttemptCompletedEvent(attemptID, quizID uint, title, userID string, completedAt time.Time, correctCount, totalShown, percentage int, passed bool) *QuizEvent {
	return &QuizEvent{
		ID:        GenerateEventID(),
		Type:      EventAttemptCompleted,
		Timestamp: time.Now(),
		Source:    "quiz-engine",
		Version:   "1.0",
		Data: AttemptCompletedEvent{
			AttemptID:    attemptID,
			QuizID:       quizID,
			QuizTitle:    title,
			UserID:       userID,
			CompletedAt:  completedAt,
			CorrectCount: correctCount,
			TotalShown:   totalShown,
			Percentage:   percentage,
			Passed:       passed,
		},
	}
}

// GenerateEventID returns a unique identifier for an outgoing event.
func GenerateEventID() string {
	return uuid.NewString()
}

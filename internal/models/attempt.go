package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptNotStarted      AttemptStatus = "not_started"
	AttemptInProgress      AttemptStatus = "in_progress"
	AttemptCompletedPassed AttemptStatus = "completed_passed"
	AttemptCompletedFailed AttemptStatus = "completed_failed"
)

// IsTerminal reports whether the status freezes the attempt record.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptCompletedPassed || s == AttemptCompletedFailed
}

// QuizAttempt is the single attempt record per (user, quiz). It is mutated in
// place across retake cycles and never duplicated.
type QuizAttempt struct {
	ID     uint          `json:"id" gorm:"primaryKey"`
	QuizID uint          `json:"quiz_id" gorm:"not null;uniqueIndex:idx_quiz_attempt_user_quiz"`
	UserID string        `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_quiz_attempt_user_quiz"`
	Status AttemptStatus `json:"status" gorm:"default:not_started;index"`

	// Per-cycle state, regenerated on every start of a new cycle.
	RandomIndices datatypes.JSON `json:"random_indices" gorm:"type:jsonb"` // []int, distinct pool positions
	StartTime     *time.Time     `json:"start_time"`
	EndTime       *time.Time     `json:"end_time"`

	// Authoritative only once Status is terminal.
	Score    int        `json:"score"`
	SolvedAt *time.Time `json:"solved_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz    Quiz            `json:"-" gorm:"foreignKey:QuizID"`
	Answers []AttemptAnswer `json:"answers" gorm:"foreignKey:AttemptID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// AttemptAnswer records one selection per display position. The display
// position is the authoritative key; the question ID is denormalized for
// forensic matching only.
type AttemptAnswer struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	AttemptID uint `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_answer_position"`
	Position  int  `json:"position" gorm:"not null;uniqueIndex:idx_attempt_answer_position"`

	QuestionID     string    `json:"question_id" gorm:"size:36;not null"`
	SelectedOption int       `json:"selected_option" gorm:"not null"`
	AnsweredAt     time.Time `json:"answered_at" gorm:"not null"`
}

func (AttemptAnswer) TableName() string {
	return "quiz_attempt_answers"
}

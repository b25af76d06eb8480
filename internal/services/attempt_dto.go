package services

import (
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// ===== REQUESTS =====

// SaveAnswerRequest records one selection. Note there is deliberately no
// score, percentage or timestamp field anywhere in the mutating requests:
// those values are always derived server-side.
type SaveAnswerRequest struct {
	DisplayPosition int `json:"display_position" validate:"min=0"`
	SelectedOption  int `json:"selected_option" validate:"min=0,max=3"`
}

// ===== RESPONSES =====

// QuestionView is a question as shown to the student: prompt and options
// only, keyed by display position. The correct-option index never leaves the
// server through this type.
type QuestionView struct {
	DisplayPosition int      `json:"display_position"`
	QuestionID      string   `json:"question_id"`
	Prompt          string   `json:"prompt"`
	ImageURL        *string  `json:"image_url,omitempty"`
	Options         []string `json:"options"`
}

type StartAttemptResponse struct {
	Status           models.AttemptStatus `json:"status"`
	EndTime          *time.Time           `json:"end_time,omitempty"`
	RemainingSeconds int                  `json:"remaining_seconds"`
	Questions        []QuestionView       `json:"questions,omitempty"`
}

type FinishAttemptResponse struct {
	Status       models.AttemptStatus `json:"status"`
	CorrectCount int                  `json:"correct_count"`
	TotalShown   int                  `json:"total_shown"`
	Percentage   int                  `json:"percentage"`
	CanRetake    bool                 `json:"can_retake"`
}

// ReviewQuestion pairs a shown question with the stored selection and the
// correct option; only served once the attempt is terminal.
type ReviewQuestion struct {
	DisplayPosition int        `json:"display_position"`
	QuestionID      string     `json:"question_id"`
	Prompt          string     `json:"prompt"`
	ImageURL        *string    `json:"image_url,omitempty"`
	Options         []string   `json:"options"`
	CorrectOption   int        `json:"correct_option"`
	SelectedOption  *int       `json:"selected_option,omitempty"`
	AnsweredAt      *time.Time `json:"answered_at,omitempty"`
}

type ReviewResponse struct {
	Status       models.AttemptStatus `json:"status"`
	CorrectCount int                  `json:"correct_count"`
	TotalShown   int                  `json:"total_shown"`
	Percentage   int                  `json:"percentage"`
	Questions    []ReviewQuestion     `json:"questions"`
}

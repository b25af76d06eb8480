package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultPassThresholdPercent is applied when a quiz does not override it.
const DefaultPassThresholdPercent = 60

// MaxOptionsPerQuestion bounds the labeled options a question may carry.
const MaxOptionsPerQuestion = 4

// Quiz is the externally authored quiz definition. The attempt engine reads
// it and never mutates it; authoring lives in the content service.
type Quiz struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	QuestionsToShow      int  `json:"questions_to_show" gorm:"not null" validate:"required,min=1"`
	DurationMinutes      int  `json:"duration_minutes" gorm:"not null" validate:"required,min=1,max=300"`
	PassThresholdPercent int  `json:"pass_threshold_percent" gorm:"default:60" validate:"min=0,max=100"`
	Active               bool `json:"active" gorm:"default:true;index"`
	Visible              bool `json:"visible" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:QuizID"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// PassThreshold returns the configured pass threshold, falling back to the
// platform default when the column is unset.
func (q *Quiz) PassThreshold() int {
	if q.PassThresholdPercent <= 0 {
		return DefaultPassThresholdPercent
	}
	return q.PassThresholdPercent
}

// PoolSize is the number of questions in the quiz pool. Questions must be
// preloaded ordered by position for this to be meaningful.
func (q *Quiz) PoolSize() int {
	return len(q.Questions)
}

// Question is a single pool entry. CorrectOption is the index into Options
// and is never serialized toward students; only the scoring engine reads it.
type Question struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	QuizID   uint   `json:"quiz_id" gorm:"not null;index"`
	Position int    `json:"position" gorm:"not null"` // 0-based position in the pool

	Prompt   string         `json:"prompt" gorm:"type:text;not null" validate:"required"`
	ImageURL *string        `json:"image_url" gorm:"size:500"`
	Options  datatypes.JSON `json:"options" gorm:"type:jsonb;not null"` // []string, up to 4 labeled options

	CorrectOption int `json:"-" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

// OptionList decodes the jsonb options column.
func (q *Question) OptionList() ([]string, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

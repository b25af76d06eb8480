package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

func poolQuiz(correctOptions ...int) *models.Quiz {
	quiz := &models.Quiz{
		ID:                   1,
		Title:                "Networking basics",
		QuestionsToShow:      len(correctOptions),
		DurationMinutes:      30,
		PassThresholdPercent: 60,
		Active:               true,
		Visible:              true,
	}
	options, _ := json.Marshal([]string{"a", "b", "c", "d"})
	for i, correct := range correctOptions {
		quiz.Questions = append(quiz.Questions, models.Question{
			ID:            string(rune('a' + i)),
			QuizID:        1,
			Position:      i,
			Prompt:        "question",
			Options:       options,
			CorrectOption: correct,
		})
	}
	return quiz
}

func attemptWith(indices []int, answers map[int]int) *models.QuizAttempt {
	encoded, _ := EncodeIndices(indices)
	attempt := &models.QuizAttempt{
		ID:            7,
		QuizID:        1,
		UserID:        "user-1",
		Status:        models.AttemptInProgress,
		RandomIndices: datatypes.JSON(encoded),
	}
	for pos, selected := range answers {
		attempt.Answers = append(attempt.Answers, models.AttemptAnswer{
			AttemptID:      7,
			Position:       pos,
			SelectedOption: selected,
			AnsweredAt:     time.Now(),
		})
	}
	return attempt
}

func TestScore_CountsCorrectSelections(t *testing.T) {
	quiz := poolQuiz(1, 2, 0, 3, 1)
	attempt := attemptWith([]int{0, 1, 2, 3, 4}, map[int]int{
		0: 1, // correct
		1: 2, // correct
		2: 0, // correct
		3: 0, // wrong
		4: 0, // wrong
	})

	correct, total, err := NewScoringEngine().Score(attempt, quiz)

	assert.NoError(t, err)
	assert.Equal(t, 3, correct)
	assert.Equal(t, 5, total)
}

func TestScore_UnansweredPositionsAreIncorrect(t *testing.T) {
	quiz := poolQuiz(0, 0, 0)
	attempt := attemptWith([]int{0, 1, 2}, map[int]int{1: 0})

	correct, total, err := NewScoringEngine().Score(attempt, quiz)

	assert.NoError(t, err)
	assert.Equal(t, 1, correct)
	assert.Equal(t, 3, total)
}

func TestScore_ShuffledIndicesMapToPoolPositions(t *testing.T) {
	// Display position 0 shows pool question 2, whose correct option is 3.
	quiz := poolQuiz(1, 1, 3)
	attempt := attemptWith([]int{2, 0}, map[int]int{0: 3, 1: 0})

	correct, total, err := NewScoringEngine().Score(attempt, quiz)

	assert.NoError(t, err)
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, total)
}

func TestScore_NoIndicesScoresZero(t *testing.T) {
	quiz := poolQuiz(0, 1)
	attempt := &models.QuizAttempt{ID: 7, Status: models.AttemptInProgress}

	correct, total, err := NewScoringEngine().Score(attempt, quiz)

	assert.NoError(t, err)
	assert.Equal(t, 0, correct)
	assert.Equal(t, 0, total)
}

func TestScore_IndexOutOfPoolRange(t *testing.T) {
	quiz := poolQuiz(0)
	attempt := attemptWith([]int{5}, nil)

	_, _, err := NewScoringEngine().Score(attempt, quiz)

	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestPercentage_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		name     string
		correct  int
		total    int
		expected int
	}{
		{"three of five", 3, 5, 60},
		{"two of five", 2, 5, 40},
		{"one of three rounds down", 1, 3, 33},
		{"two of three rounds up", 2, 3, 67},
		{"exact half rounds up", 1, 8, 13},
		{"all correct", 4, 4, 100},
		{"none correct", 0, 4, 0},
		{"zero total", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Percentage(tt.correct, tt.total))
		})
	}
}

func TestDecodeIndices_NullColumn(t *testing.T) {
	indices, err := DecodeIndices(nil)

	assert.NoError(t, err)
	assert.Empty(t, indices)
}

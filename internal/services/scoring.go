package services

import (
	"encoding/json"
	"fmt"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// ScoringEngine recomputes the attempt result strictly from persisted
// selections and the pool's stored correct-option indices. Nothing the
// client sends at finish time participates in this computation.
type ScoringEngine interface {
	Score(attempt *models.QuizAttempt, quiz *models.Quiz) (correctCount, totalShown int, err error)
}

type scoringEngine struct{}

func NewScoringEngine() ScoringEngine {
	return &scoringEngine{}
}

func (scoringEngine) Score(attempt *models.QuizAttempt, quiz *models.Quiz) (int, int, error) {
	indices, err := DecodeIndices(attempt.RandomIndices)
	if err != nil {
		return 0, 0, fmt.Errorf("decode random indices: %w", err)
	}
	totalShown := len(indices)
	if totalShown == 0 {
		return 0, 0, nil
	}

	// Answers keyed by display position; a duplicate position cannot occur
	// given the ledger's unique index, but last-wins keeps this total anyway.
	byPosition := make(map[int]*models.AttemptAnswer, len(attempt.Answers))
	for i := range attempt.Answers {
		ans := &attempt.Answers[i]
		byPosition[ans.Position] = ans
	}

	correct := 0
	for displayPos, poolPos := range indices {
		if poolPos < 0 || poolPos >= len(quiz.Questions) {
			return 0, 0, NewSelectionError("pool position", poolPos, len(quiz.Questions))
		}
		question := &quiz.Questions[poolPos]

		ans, ok := byPosition[displayPos]
		if !ok {
			continue // unanswered positions score as incorrect
		}
		if ans.SelectedOption == question.CorrectOption {
			correct++
		}
	}

	return correct, totalShown, nil
}

// Percentage converts a correct/total pair into an integer percentage,
// rounding half up.
func Percentage(correctCount, totalShown int) int {
	if totalShown <= 0 {
		return 0
	}
	return (200*correctCount + totalShown) / (2 * totalShown)
}

// DecodeIndices unpacks the jsonb random_indices column. A null column
// decodes to an empty selection.
func DecodeIndices(raw []byte) ([]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var indices []int
	if err := json.Unmarshal(raw, &indices); err != nil {
		return nil, err
	}
	return indices, nil
}

// EncodeIndices packs a selection for the jsonb random_indices column.
func EncodeIndices(indices []int) ([]byte, error) {
	return json.Marshal(indices)
}

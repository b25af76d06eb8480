package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
)

// AnswerLedger records one selection per display position. Saving the same
// position again overwrites the earlier entry; positions may arrive in any
// order and none of them are required before finish.
type AnswerLedger interface {
	SaveAnswer(ctx context.Context, attempt *models.QuizAttempt, quiz *models.Quiz, displayPosition, selectedOption int, now time.Time) error
}

type answerLedger struct {
	repo repositories.Repository
}

func NewAnswerLedger(repo repositories.Repository) AnswerLedger {
	return &answerLedger{repo: repo}
}

func (l *answerLedger) SaveAnswer(ctx context.Context, attempt *models.QuizAttempt, quiz *models.Quiz, displayPosition, selectedOption int, now time.Time) error {
	indices, err := DecodeIndices(attempt.RandomIndices)
	if err != nil {
		return fmt.Errorf("decode random indices: %w", err)
	}

	if displayPosition < 0 || displayPosition >= len(indices) {
		return NewSelectionError("display position", displayPosition, len(indices))
	}

	poolPos := indices[displayPosition]
	if poolPos < 0 || poolPos >= len(quiz.Questions) {
		return NewSelectionError("pool position", poolPos, len(quiz.Questions))
	}
	question := &quiz.Questions[poolPos]

	options, err := question.OptionList()
	if err != nil {
		return fmt.Errorf("decode question options: %w", err)
	}
	if selectedOption < 0 || selectedOption >= len(options) {
		return NewSelectionError("selected option", selectedOption, len(options))
	}

	answer := &models.AttemptAnswer{
		AttemptID:      attempt.ID,
		Position:       displayPosition,
		QuestionID:     question.ID,
		SelectedOption: selectedOption,
		AnsweredAt:     now.UTC(),
	}

	if err := l.repo.Attempt().UpsertAnswer(ctx, answer); err != nil {
		// The attempt reached a terminal status between our status check and
		// the guarded write; the late answer is rejected, not recorded.
		if repositories.IsStaleStatusError(err) {
			return ErrAttemptAlreadyCompleted
		}
		return fmt.Errorf("%w: upsert answer: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

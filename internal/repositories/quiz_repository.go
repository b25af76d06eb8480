package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// QuizRepository reads quiz definitions. Definitions are authored elsewhere;
// the attempt engine only ever reads them, so there are no mutating methods.
type QuizRepository interface {
	// GetByID returns the bare quiz row without its question pool.
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)

	// GetByIDWithQuestions returns the quiz with its full question pool
	// ordered by pool position. Correct-option indices are included; callers
	// exposing questions to students must strip them.
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
}

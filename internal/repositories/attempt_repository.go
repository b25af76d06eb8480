package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"gorm.io/datatypes"
)

// AttemptRepository persists the one-per-(user, quiz) attempt record. Every
// status-changing write is a conditional update matched on the current
// status; a write that matches zero rows returns ErrStaleStatus so callers
// can distinguish a lost race from success.
type AttemptRepository interface {
	// Basic operations
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)
	GetByUserAndQuiz(ctx context.Context, userID string, quizID uint) (*models.QuizAttempt, error)
	GetByUserAndQuizWithAnswers(ctx context.Context, userID string, quizID uint) (*models.QuizAttempt, error)

	// BeginCycle atomically moves the attempt into in_progress and installs
	// the new cycle state, but only if the current status is one of `from`.
	BeginCycle(ctx context.Context, id uint, from []models.AttemptStatus, indices datatypes.JSON, start, end time.Time) error

	// CompleteInProgress atomically moves an in_progress attempt into the
	// terminal status `to`, recording score and solvedAt. When clearCycle is
	// true the random indices and time boundary are wiped (failed outcome,
	// record left clean for a retake); otherwise only the time boundary is
	// cleared and the indices stay for review.
	CompleteInProgress(ctx context.Context, id uint, to models.AttemptStatus, score int, solvedAt *time.Time, clearCycle bool) error

	// UpsertAnswer records the selection at a display position, guarded on
	// the attempt still being in_progress; a terminal attempt returns
	// ErrStaleStatus and the answer is dropped.
	UpsertAnswer(ctx context.Context, answer *models.AttemptAnswer) error
	GetAnswers(ctx context.Context, attemptID uint) ([]*models.AttemptAnswer, error)
	DeleteAnswers(ctx context.Context, attemptID uint) error

	// Query operations
	List(ctx context.Context, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)
	CountByStatus(ctx context.Context, quizID uint, status models.AttemptStatus) (int64, error)
}

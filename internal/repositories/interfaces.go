package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"gorm.io/gorm"
)

// ErrStaleStatus is returned by conditional updates when the attempt row no
// longer matches the expected status (a concurrent writer got there first).
var ErrStaleStatus = errors.New("attempt status changed concurrently")

// Repository aggregates the per-entity repositories behind one facade so
// services depend on a single constructor-injected value.
type Repository interface {
	Quiz() QuizRepository
	Attempt() AttemptRepository

	// WithTransaction runs fn against a transactional Repository. Returning
	// an error rolls the transaction back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// ===== SHARED FILTER STRUCTS =====

type AttemptFilters struct {
	Status    *models.AttemptStatus `json:"status"`
	QuizID    *uint                 `json:"quiz_id"`
	UserID    *string               `json:"user_id"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "created_at", "updated_at", "score"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

// ===== ERROR HELPERS =====

// IsNotFoundError checks whether err represents a missing row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsStaleStatusError checks whether err came from a lost compare-and-set.
func IsStaleStatusError(err error) bool {
	return errors.Is(err, ErrStaleStatus)
}

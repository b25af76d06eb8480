package services

import (
	"errors"
	"fmt"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Quiz definition errors
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotAvailable = errors.New("quiz is not active or visible")
	ErrQuizHasNoPool    = errors.New("quiz has no questions in its pool")

	// Attempt lifecycle errors
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptNotStarted       = errors.New("attempt not started")
	ErrAttemptAlreadyCompleted = errors.New("attempt already completed")
	ErrAttemptTimeExpired      = errors.New("attempt time has expired")
	ErrAttemptNotReviewable    = errors.New("attempt has no completed result to review")

	// Input errors
	ErrInvalidSelection = errors.New("selection is out of range")

	// Infrastructure errors
	ErrConcurrencyConflict = errors.New("attempt was modified concurrently")
	ErrUpstreamUnavailable = errors.New("upstream dependency unavailable")
)

// ===== CUSTOM ERROR TYPES =====

// SelectionError carries the offending value alongside ErrInvalidSelection so
// handlers can echo what was rejected without parsing the message.
type SelectionError struct {
	Field string `json:"field"`
	Value int    `json:"value"`
	Limit int    `json:"limit"`
}

func (se *SelectionError) Error() string {
	return fmt.Sprintf("invalid %s %d: must be in [0, %d)", se.Field, se.Value, se.Limit)
}

func (se *SelectionError) Unwrap() error {
	return ErrInvalidSelection
}

func NewSelectionError(field string, value, limit int) *SelectionError {
	return &SelectionError{Field: field, Value: value, Limit: limit}
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsConflict checks if error represents a state or concurrency conflict the
// caller should resolve by re-reading the current attempt.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptAlreadyCompleted) ||
		errors.Is(err, ErrConcurrencyConflict)
}

// IsInvalidInput checks if error represents a locally rejected request.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidSelection) ||
		errors.Is(err, ErrAttemptNotStarted) ||
		errors.Is(err, ErrAttemptNotReviewable)
}

package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByUserAndQuiz(ctx context.Context, userID string, quizID uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByUserAndQuizWithAnswers(ctx context.Context, userID string, quizID uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_attempt_answers.position ASC")
		}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// BeginCycle installs a fresh cycle guarded by the current status. Matching
// zero rows means another request already changed the status.
func (a AttemptPostgreSQL) BeginCycle(ctx context.Context, id uint, from []models.AttemptStatus, indices datatypes.JSON, start, end time.Time) error {
	res := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":         models.AttemptInProgress,
			"random_indices": indices,
			"start_time":     start,
			"end_time":       end,
			"score":          0,
			"solved_at":      nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrStaleStatus
	}
	return nil
}

func (a AttemptPostgreSQL) CompleteInProgress(ctx context.Context, id uint, to models.AttemptStatus, score int, solvedAt *time.Time, clearCycle bool) error {
	updates := map[string]interface{}{
		"status":     to,
		"score":      score,
		"solved_at":  solvedAt,
		"start_time": nil,
		"end_time":   nil,
	}
	if clearCycle {
		updates["random_indices"] = nil
	}

	res := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("id = ? AND status = ?", id, models.AttemptInProgress).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrStaleStatus
	}
	return nil
}

// UpsertAnswer inserts or overwrites the selection at a display position.
// The unique (attempt_id, position) index makes the write atomic per
// position. The attempt row is locked and its status re-checked in the same
// transaction, so a completion landing concurrently either waits for this
// write or makes it fail with ErrStaleStatus; an answer can never attach to
// an already-terminal attempt.
func (a AttemptPostgreSQL) UpsertAnswer(ctx context.Context, answer *models.AttemptAnswer) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attempt models.QuizAttempt
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			First(&attempt, answer.AttemptID).Error; err != nil {
			return err
		}
		if attempt.Status != models.AttemptInProgress {
			return repositories.ErrStaleStatus
		}

		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "position"}},
				DoUpdates: clause.AssignmentColumns([]string{"question_id", "selected_option", "answered_at"}),
			}).
			Create(answer).Error
	})
}

func (a AttemptPostgreSQL) GetAnswers(ctx context.Context, attemptID uint) ([]*models.AttemptAnswer, error) {
	var answers []*models.AttemptAnswer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("position ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (a AttemptPostgreSQL) DeleteAnswers(ctx context.Context, attemptID uint) error {
	return a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Delete(&models.AttemptAnswer{}).Error
}

func (a AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	var attempts []*models.QuizAttempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.QuizAttempt{})
	query = applyAttemptFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a AttemptPostgreSQL) CountByStatus(ctx context.Context, quizID uint, status models.AttemptStatus) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND status = ?", quizID, status).
		Count(&count).Error
	return count, err
}

func applyAttemptFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.QuizID != nil {
		query = query.Where("quiz_id = ?", *filters.QuizID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if sortBy == "" {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/services"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
)

// DefaultQuizTTL bounds how stale a cached quiz definition can get. Attempt
// windows outlive it, so a mid-attempt edit is picked up on the next start.
const DefaultQuizTTL = 5 * time.Minute

// NewCachedQuizProvider wraps a definition provider with a read-through
// Redis layer. Cache failures degrade to the inner provider, never to an
// error for the student.
func NewCachedQuizProvider(inner services.QuizDefinitionProvider, cache CacheService, logger utils.Logger, ttl time.Duration) services.QuizDefinitionProvider {
	if ttl <= 0 {
		ttl = DefaultQuizTTL
	}
	return &cachedQuizProvider{
		inner:  inner,
		cache:  cache,
		logger: logger,
		ttl:    ttl,
	}
}

type cachedQuizProvider struct {
	inner  services.QuizDefinitionProvider
	cache  CacheService
	logger utils.Logger
	ttl    time.Duration
}

// quizCacheEntry carries the correct-option indices next to the quiz. The
// question model hides them from JSON, which is right for API responses but
// would silently strip them from a cached definition.
type quizCacheEntry struct {
	Quiz           models.Quiz `json:"quiz"`
	CorrectOptions []int       `json:"correct_options"`
}

func quizCacheKey(quizID uint) string {
	return fmt.Sprintf("quiz-engine:quiz:%d", quizID)
}

func (p *cachedQuizProvider) GetDefinition(ctx context.Context, quizID uint) (*models.Quiz, error) {
	key := quizCacheKey(quizID)

	var entry quizCacheEntry
	err := p.cache.Get(ctx, key, &entry)
	if err == nil && len(entry.CorrectOptions) == len(entry.Quiz.Questions) {
		for i := range entry.Quiz.Questions {
			entry.Quiz.Questions[i].CorrectOption = entry.CorrectOptions[i]
		}
		return &entry.Quiz, nil
	}
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		p.logger.Warn("Quiz cache read failed, falling back to source", "quiz_id", quizID, "error", err)
	}

	quiz, err := p.inner.GetDefinition(ctx, quizID)
	if err != nil {
		return nil, err
	}

	entry = quizCacheEntry{
		Quiz:           *quiz,
		CorrectOptions: make([]int, len(quiz.Questions)),
	}
	for i := range quiz.Questions {
		entry.CorrectOptions[i] = quiz.Questions[i].CorrectOption
	}
	if err := p.cache.Set(ctx, key, &entry, p.ttl); err != nil {
		p.logger.Warn("Quiz cache write failed", "quiz_id", quizID, "error", err)
	}
	return quiz, nil
}

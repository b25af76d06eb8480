package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
)

// memoryCache is an in-process CacheService for tests; values round-trip
// through JSON exactly like the Redis implementation.
type memoryCache struct {
	entries map[string][]byte
	sets    int
	failing bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.failing {
		return errors.New("cache down")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	m.sets++
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.failing {
		return errors.New("cache down")
	}
	data, ok := m.entries[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	m.entries = make(map[string][]byte)
	return nil
}

type staticProvider struct {
	quiz  *models.Quiz
	calls int
	err   error
}

func (p *staticProvider) GetDefinition(ctx context.Context, quizID uint) (*models.Quiz, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.quiz, nil
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testQuiz() *models.Quiz {
	options, _ := json.Marshal([]string{"a", "b", "c"})
	return &models.Quiz{
		ID:              1,
		Title:           "Routing",
		QuestionsToShow: 2,
		DurationMinutes: 10,
		Active:          true,
		Visible:         true,
		Questions: []models.Question{
			{ID: "q1", QuizID: 1, Position: 0, Prompt: "p1", Options: options, CorrectOption: 2},
			{ID: "q2", QuizID: 1, Position: 1, Prompt: "p2", Options: options, CorrectOption: 0},
		},
	}
}

func TestGetDefinition_CacheHitPreservesCorrectOptions(t *testing.T) {
	mem := newMemoryCache()
	source := &staticProvider{quiz: testQuiz()}
	provider := NewCachedQuizProvider(source, mem, testLogger(), time.Minute)

	first, err := provider.GetDefinition(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	// Second read is served from the cache, and the correct-option indices
	// survive the round-trip despite being hidden from JSON on the model.
	second, err := provider.GetDefinition(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, 2, second.Questions[0].CorrectOption)
	assert.Equal(t, 0, second.Questions[1].CorrectOption)
}

func TestGetDefinition_CacheFailureFallsBackToSource(t *testing.T) {
	mem := newMemoryCache()
	mem.failing = true
	source := &staticProvider{quiz: testQuiz()}
	provider := NewCachedQuizProvider(source, mem, testLogger(), time.Minute)

	quiz, err := provider.GetDefinition(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, "Routing", quiz.Title)
	assert.Equal(t, 1, source.calls)
}

func TestGetDefinition_SourceErrorNotCached(t *testing.T) {
	mem := newMemoryCache()
	source := &staticProvider{err: errors.New("content service down")}
	provider := NewCachedQuizProvider(source, mem, testLogger(), time.Minute)

	_, err := provider.GetDefinition(context.Background(), 1)

	assert.Error(t, err)
	assert.Zero(t, mem.sets)
}

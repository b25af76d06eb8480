package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect_ReturnsDistinctPositionsInRange(t *testing.T) {
	selector := NewQuestionPoolSelector()

	for run := 0; run < 50; run++ {
		indices, clamped, err := selector.Select(20, 5)

		assert.NoError(t, err)
		assert.False(t, clamped)
		assert.Len(t, indices, 5)

		seen := make(map[int]bool)
		for _, idx := range indices {
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, 20)
			assert.False(t, seen[idx], "position %d drawn twice", idx)
			seen[idx] = true
		}
	}
}

func TestSelect_CountEqualsPoolSize(t *testing.T) {
	selector := NewQuestionPoolSelector()

	indices, clamped, err := selector.Select(4, 4)

	assert.NoError(t, err)
	assert.False(t, clamped)
	assert.Len(t, indices, 4)

	seen := make(map[int]bool)
	for _, idx := range indices {
		seen[idx] = true
	}
	assert.Len(t, seen, 4)
}

func TestSelect_ClampsWhenPoolTooSmall(t *testing.T) {
	selector := NewQuestionPoolSelector()

	indices, clamped, err := selector.Select(3, 10)

	assert.NoError(t, err)
	assert.True(t, clamped)
	assert.Len(t, indices, 3)
}

func TestSelect_EmptyPool(t *testing.T) {
	selector := NewQuestionPoolSelector()

	_, _, err := selector.Select(0, 5)

	assert.ErrorIs(t, err, ErrQuizHasNoPool)
}

func TestSelect_OrdersVary(t *testing.T) {
	selector := NewQuestionPoolSelector()

	// With 10! possible orderings, 20 identical draws in a row would point
	// at a broken shuffle rather than luck.
	first, _, err := selector.Select(10, 10)
	assert.NoError(t, err)

	varied := false
	for run := 0; run < 20 && !varied; run++ {
		next, _, err := selector.Select(10, 10)
		assert.NoError(t, err)
		for i := range next {
			if next[i] != first[i] {
				varied = true
				break
			}
		}
	}
	assert.True(t, varied, "shuffle produced the same ordering repeatedly")
}

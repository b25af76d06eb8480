package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// QuestionPoolSelector draws the per-attempt random subset of pool positions.
type QuestionPoolSelector interface {
	// Select returns count distinct positions in [0, poolSize), uniformly
	// shuffled. If count exceeds poolSize the result is clamped to poolSize
	// and clamped=true is reported so the caller can flag the data-quality
	// problem instead of failing the student.
	Select(poolSize, count int) (indices []int, clamped bool, err error)
}

type poolSelector struct{}

func NewQuestionPoolSelector() QuestionPoolSelector {
	return &poolSelector{}
}

func (poolSelector) Select(poolSize, count int) ([]int, bool, error) {
	if poolSize <= 0 {
		return nil, false, fmt.Errorf("select from pool: %w", ErrQuizHasNoPool)
	}

	clamped := false
	if count > poolSize {
		count = poolSize
		clamped = true
	}
	if count <= 0 {
		return []int{}, clamped, nil
	}

	indices := make([]int, poolSize)
	for i := range indices {
		indices[i] = i
	}

	// Fisher-Yates over the whole pool, driven by crypto/rand so the order
	// cannot be predicted from a leaked seed. Truncating a full uniform
	// shuffle keeps every count-subset equally likely.
	for i := poolSize - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, clamped, fmt.Errorf("crypto random source: %w", err)
		}
		j := int(n.Int64())
		indices[i], indices[j] = indices[j], indices[i]
	}

	return indices[:count], clamped, nil
}

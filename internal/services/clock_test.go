package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBegin_ComputesWindowFromServerTime(t *testing.T) {
	clock := NewSessionClock()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	start, end := clock.Begin(30, now)

	assert.Equal(t, now, start)
	assert.Equal(t, now.Add(30*time.Minute), end)
}

func TestBegin_NormalizesToUTC(t *testing.T) {
	clock := NewSessionClock()
	loc := time.FixedZone("UTC+7", 7*3600)
	now := time.Date(2025, 3, 10, 16, 0, 0, 0, loc)

	start, end := clock.Begin(10, now)

	assert.Equal(t, time.UTC, start.Location())
	assert.Equal(t, 10*time.Minute, end.Sub(start))
}

func TestIsExpired(t *testing.T) {
	clock := NewSessionClock()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	assert.True(t, clock.IsExpired(&past, now))
	assert.False(t, clock.IsExpired(&future, now))
	assert.False(t, clock.IsExpired(&now, now), "boundary instant still counts as open")
	assert.False(t, clock.IsExpired(nil, now))
}

func TestRemainingSeconds(t *testing.T) {
	clock := NewSessionClock()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	in90 := now.Add(90 * time.Second)
	past := now.Add(-time.Minute)

	assert.Equal(t, 90, clock.RemainingSeconds(&in90, now))
	assert.Equal(t, 0, clock.RemainingSeconds(&past, now))
	assert.Equal(t, 0, clock.RemainingSeconds(nil, now))
}

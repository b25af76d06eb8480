package services

import "time"

// SessionClock computes and checks the server-authoritative attempt window.
// The server clock is the only time source; timestamps arriving from clients
// are display hints at most and never reach these functions.
type SessionClock interface {
	Begin(durationMinutes int, now time.Time) (start, end time.Time)
	IsExpired(end *time.Time, now time.Time) bool
	RemainingSeconds(end *time.Time, now time.Time) int
}

type sessionClock struct{}

func NewSessionClock() SessionClock {
	return &sessionClock{}
}

func (sessionClock) Begin(durationMinutes int, now time.Time) (time.Time, time.Time) {
	start := now.UTC()
	return start, start.Add(time.Duration(durationMinutes) * time.Minute)
}

// IsExpired treats a missing boundary as not expired: an attempt without an
// end time is not in a running cycle.
func (sessionClock) IsExpired(end *time.Time, now time.Time) bool {
	if end == nil {
		return false
	}
	return now.After(*end)
}

func (sessionClock) RemainingSeconds(end *time.Time, now time.Time) int {
	if end == nil {
		return 0
	}
	remaining := int(end.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

package model

import "time"

// DefaultTurnClock is the total thinking time each player starts with
const DefaultTurnClock = 5 * time.Minute

// PlayerTimer is a chess-clock style countdown. It only runs while its
// owner is on turn.
type PlayerTimer struct {
	Remaining time.Duration `json:"remaining"`
	Running   bool          `json:"running"`
	StartedAt time.Time     `json:"started_at"`
}

// NewPlayerTimer returns a stopped timer holding total
func NewPlayerTimer(total time.Duration) PlayerTimer {
	return PlayerTimer{Remaining: total}
}

// Start begins counting down from now. Starting a running timer does nothing.
func (t *PlayerTimer) Start(now time.Time) {
	if t.Running {
		return
	}
	t.Running = true
	t.StartedAt = now
}

// Stop charges the elapsed time since Start and halts the countdown.
// Stopping a stopped timer does nothing.
func (t *PlayerTimer) Stop(now time.Time) {
	if !t.Running {
		return
	}
	t.Remaining = t.RemainingAt(now)
	t.Running = false
	t.StartedAt = time.Time{}
}

// RemainingAt returns the time left as of now, never below zero
func (t PlayerTimer) RemainingAt(now time.Time) time.Duration {
	remaining := t.Remaining
	if t.Running {
		elapsed := now.Sub(t.StartedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		remaining -= elapsed
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the clock has run out as of now
func (t PlayerTimer) Expired(now time.Time) bool {
	return t.RemainingAt(now) <= 0
}

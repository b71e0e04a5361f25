// Package session implements the timed drill state machine.
package session

import "time"

// Duration is the fixed wall-clock length of a drill session.
const Duration = 120 * time.Second

// Remaining derives the time left from wall-clock timestamps. It is
// recomputed on every call instead of counting down, so a late tick cannot
// drift the deadline. Never negative.
func Remaining(startedAt, now time.Time, total time.Duration) time.Duration {
	elapsed := now.Sub(startedAt).Truncate(time.Second)
	left := total - elapsed
	if left < 0 {
		return 0
	}
	return left
}

// SecondsRemaining is Remaining expressed in whole seconds for display.
func SecondsRemaining(startedAt, now time.Time, total time.Duration) int {
	return int(Remaining(startedAt, now, total) / time.Second)
}

// Package system provides a real clock implementation.
package system

import "time"

// Clock implements reconcile.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC. Same-day idempotency compares
// calendar days, so every caller must see the same zone.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}

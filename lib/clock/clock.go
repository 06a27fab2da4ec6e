// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the subset of the time package the daemon uses.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTimer returns a Timer that delivers on C once d has elapsed.
	NewTimer(d time.Duration) *Timer
}

// Timer is a one-shot timer that can be cancelled.
type Timer struct {
	// C receives the fire time. Buffered with capacity 1.
	C <-chan time.Time

	stop func() bool
}

// Stop prevents the Timer from firing. It returns false if the timer
// already fired or was stopped. Stop does not drain C.
func (t *Timer) Stop() bool { return t.stop() }

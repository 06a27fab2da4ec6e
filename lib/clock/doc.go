// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the daemon's
// timers.
//
// eppd schedules exactly one kind of delayed work: re-applying a
// profile after a pass that left some CPU out of line. The driver
// holds a [Clock] and arms a [Timer] through it, so tests replace
// [Real] with [Fake] and fire the retry deterministically:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	// ... start the driver with c ...
//	c.WaitForTimers(1)       // the driver armed its retry
//	c.Advance(30 * time.Second)
package clock

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile drives every CPU's scaling governor and
// energy/performance preference toward the policy that corresponds to
// the active power profile.
//
// [DesiredPolicy] is a fixed table:
//
//	power-saver  -> powersave,   power
//	balanced     -> powersave,   balance_performance
//	performance  -> performance, performance
//
// [Engine.Apply] diffs live per-CPU state against that policy and
// writes only what differs, after checking the target value against
// the CPU's available set. A CPU that cannot be brought into line is
// recorded as a [Fault] and skipped; the remaining CPUs are still
// reconciled. The engine remembers the last profile it applied to
// every CPU without fault, and treats a repeat of that profile as a
// no-op that touches no sysfs file. A pass with faults does not
// advance that memory, so the same profile is retried in full next
// time rather than masquerading as applied.
//
// An Engine is owned by a single goroutine. It performs no locking.
package reconcile

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cpuset parses the kernel's compact CPU list notation, as found
// in /sys/devices/system/cpu/possible and similar files:
//
//	0-7
//	0-3,6,8-11
//
// Each comma-separated group is either a single CPU index or an
// inclusive "left-right" range. [Parse] expands the groups left to
// right and each range low to high. Duplicates across groups are kept
// so the result mirrors the kernel's listing exactly.
//
// This package has no eppd-internal dependencies and performs no I/O.
package cpuset

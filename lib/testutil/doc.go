// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for eppd packages.
//
// [SysfsTree] builds a synthetic sysfs hierarchy under t.TempDir() so
// that cpufreq, platform, and reconcile tests exercise real file I/O
// against the same relative paths the kernel exposes. [SysfsTree.Read]
// reads a file back for assertions on what was written.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls. These are the only place
// in the test suite where real wall-clock timeouts are used.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no eppd-internal dependencies.
package testutil

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cpufreq models the cpufreq sysfs attributes eppd reads and
// writes, as closed vocabularies with strict parsing.
//
// # Vocabularies
//
// Each attribute family is a small tagged type with an explicit
// bidirectional token table:
//
//   - [Driver]: cpufreq/scaling_driver ("amd-pstate-epp", ...)
//   - [Governor]: cpufreq/scaling_governor ("powersave", ...)
//   - [EPP]: cpufreq/energy_performance_preference ("balance_performance", ...)
//   - [Status]: amd_pstate/status ("active", "guided", "passive")
//
// Driver, governor, and status tokens are hyphen-separated; EPP tokens
// are underscore-separated. This follows the kernel's own spelling and
// is not normalized. Parsing is case-sensitive and exact; a token
// outside the table is a [*ParseError], never a best-effort guess.
//
// # Sysfs access
//
// [Sysfs] reads and writes attributes below a root directory (/sys in
// production, a synthetic tree in tests):
//
//	devices/system/cpu/possible
//	devices/system/cpu/amd_pstate/status
//	devices/system/cpu/cpuN/cpufreq/scaling_driver
//	devices/system/cpu/cpuN/cpufreq/scaling_governor
//	devices/system/cpu/cpuN/cpufreq/scaling_available_governors
//	devices/system/cpu/cpuN/cpufreq/energy_performance_preference
//	devices/system/cpu/cpuN/cpufreq/energy_performance_available_preferences
//
// Unreadable or unwritable files produce [*IOError]; writes refused
// with EACCES or EPERM produce [*PermissionError], which also matches
// [ErrIO]. Writers do not consult the available set; callers are
// expected to check it first.
package cpufreq

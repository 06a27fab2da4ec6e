// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exports reconciliation outcomes as Prometheus
// metrics.
//
// [Metrics] implements the reconcile engine's Recorder, so every pass
// updates the counters without the engine knowing Prometheus exists.
// The daemon serves [Metrics.Handler] on the configured listen
// address. Collectors live on a private registry; nothing is added to
// the process-global default registry.
//
// Exported series:
//
//	eppd_reconcile_passes_total{result}    complete, partial, failed, skipped
//	eppd_reconcile_writes_total{attribute} scaling_governor, energy_performance_preference
//	eppd_reconcile_faults_total{attribute} per-CPU faults ("" for pass failures)
//	eppd_reconcile_retries_total           passes triggered by the retry timer
//	eppd_profile_events_total{result}      accepted, rejected
//	eppd_profile_active{profile}           1 for the profile last applied in full
package metrics

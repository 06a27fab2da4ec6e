// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint error handler for eppd. It is
// the one place that writes to stderr without the structured logger,
// for errors that occur before the logger exists or after run returns.
package process

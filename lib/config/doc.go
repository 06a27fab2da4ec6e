// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for eppd.
//
// Configuration comes from at most one file, named by the --config
// flag (via [LoadFile]) or the EPPD_CONFIG environment variable (via
// [Load]). Unlike most daemons that need a file, eppd runs with
// [Default] when neither is set: on a stock system every setting has a
// correct default and the file exists only to override them.
//
// Keys are decoded strictly. An unknown key is an error rather than a
// silently ignored typo. Durations use Go syntax ("10s", "1m30s").
//
// Key exports:
//
//   - [Config] -- sysfs root, logging, D-Bus coordinates, timing, metrics
//   - [Default] -- the configuration of a stock system
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- every problem at once, joined
//
// This package depends on no other eppd packages.
package config

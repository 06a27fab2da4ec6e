// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cpufreq

import (
	"errors"
	"fmt"
)

// Error kinds, for use with errors.Is.
var (
	// ErrIO is matched by *IOError and *PermissionError.
	ErrIO = errors.New("sysfs i/o failure")

	// ErrParse is matched by *ParseError.
	ErrParse = errors.New("unrecognized sysfs token")

	// ErrPermission is matched by *PermissionError.
	ErrPermission = errors.New("sysfs write not permitted")
)

// IOError reports a sysfs file that could not be read or written: the
// file is missing (some drivers omit EPP entirely), unreadable, or the
// kernel rejected the write.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// PermissionError reports a write refused with EACCES or EPERM.
// Changing cpufreq policy normally requires root.
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("write %s: permission denied: %v", e.Path, e.Err)
}

func (e *PermissionError) Unwrap() []error { return []error{ErrPermission, ErrIO, e.Err} }

// ParseError reports a token outside an attribute's vocabulary. This
// usually means an unexpected kernel version or a different driver
// than the one eppd supports.
type ParseError struct {
	Vocabulary string
	Token      string
	// Path is the file the token was read from, empty when parsing a
	// bare string.
	Path string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unrecognized %s %q", e.Vocabulary, e.Token)
	}
	return fmt.Sprintf("%s: unrecognized %s %q", e.Path, e.Vocabulary, e.Token)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

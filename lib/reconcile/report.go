// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/eppd/lib/cpuset"
	"github.com/bureau-foundation/eppd/lib/profile"
)

// Attribute names the per-CPU file a write or fault concerns.
type Attribute string

const (
	AttributeGovernor Attribute = "scaling_governor"
	AttributeEPP      Attribute = "energy_performance_preference"
)

// ErrUnsupportedValue is matched by *UnsupportedValueError.
var ErrUnsupportedValue = errors.New("value not available on cpu")

// UnsupportedValueError reports a desired governor or EPP missing from
// the CPU's available set. The CPU is left as it is.
type UnsupportedValueError struct {
	Want      string
	Available string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("%q not in available set [%s]", e.Want, e.Available)
}

func (e *UnsupportedValueError) Is(target error) bool { return target == ErrUnsupportedValue }

// Fault is a per-CPU failure recorded during a pass. Faults never stop
// the pass.
type Fault struct {
	CPU       cpuset.CPU
	Attribute Attribute
	Err       error
}

func (f Fault) Error() string {
	return fmt.Sprintf("%s %s: %v", f.CPU, f.Attribute, f.Err)
}

func (f Fault) Unwrap() error { return f.Err }

// Write records one sysfs write issued during a pass.
type Write struct {
	CPU       cpuset.CPU
	Attribute Attribute
	From      string
	To        string
}

// Report describes the outcome of one Apply call.
type Report struct {
	Profile profile.Profile
	Policy  Policy

	// Skipped is true when Profile was already applied; nothing was
	// read or written.
	Skipped bool

	// CPUs is the set enumerated for this pass.
	CPUs cpuset.Set

	Writes []Write
	Faults []Fault

	// PassErr is a failure that prevented visiting any CPU, such as an
	// unreadable possible-CPU list.
	PassErr error
}

// Complete reports whether the pass brought every CPU into line.
// A skipped pass is complete.
func (r Report) Complete() bool {
	return r.PassErr == nil && len(r.Faults) == 0
}

// Err joins the pass error and every fault, or returns nil.
func (r Report) Err() error {
	errs := make([]error, 0, len(r.Faults)+1)
	if r.PassErr != nil {
		errs = append(errs, r.PassErr)
	}
	for _, fault := range r.Faults {
		errs = append(errs, fault)
	}
	return errors.Join(errs...)
}

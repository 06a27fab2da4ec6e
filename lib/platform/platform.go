// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package platform checks that a machine runs the AMD P-State driver in
// EPP mode on every CPU before eppd touches any policy file.
//
// The check is conservative: an unreadable status file counts as a
// failure, because absence of evidence is not evidence of the active
// driver. It runs once at startup; driver binding is a boot-time
// property and is not re-examined per reconciliation pass.
package platform

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/eppd/lib/cpufreq"
	"github.com/bureau-foundation/eppd/lib/cpuset"
)

// Platform is the subset of sysfs the precondition reads.
// *cpufreq.Sysfs satisfies it.
type Platform interface {
	AmdPstateStatus() (cpufreq.Status, error)
	PossibleCPUs() (cpuset.Set, error)
	Driver(cpu cpuset.CPU) (cpufreq.Driver, error)
}

// Reason names the check that failed.
type Reason string

const (
	ReasonStatusUnreadable Reason = "status-unreadable"
	ReasonStatusNotActive  Reason = "status-not-active"
	ReasonCPUsUnreadable   Reason = "cpus-unreadable"
	ReasonDriverUnreadable Reason = "driver-unreadable"
	ReasonWrongDriver      Reason = "wrong-driver"
)

// ErrPreconditionFailed is matched by every *PreconditionError.
var ErrPreconditionFailed = errors.New("platform precondition failed")

// PreconditionError describes why the platform is not in the supported
// configuration. Always fatal.
type PreconditionError struct {
	Reason Reason

	// CPU is set for the per-CPU reasons (driver-unreadable,
	// wrong-driver).
	CPU *cpuset.CPU

	// Status is the status read for status-not-active.
	Status cpufreq.Status

	// Driver is the driver read for wrong-driver.
	Driver cpufreq.Driver

	// Err is the underlying read error, if any.
	Err error
}

func (e *PreconditionError) Error() string {
	switch e.Reason {
	case ReasonStatusNotActive:
		return fmt.Sprintf("amd-pstate status is %q, want %q", e.Status, cpufreq.StatusActive)
	case ReasonWrongDriver:
		return fmt.Sprintf("%s uses scaling driver %q, want %q", e.CPU, e.Driver, cpufreq.DriverAmdPstateEPP)
	case ReasonDriverUnreadable:
		return fmt.Sprintf("reading scaling driver of %s: %v", e.CPU, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
}

func (e *PreconditionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPreconditionFailed}
	}
	return []error{ErrPreconditionFailed, e.Err}
}

// Verify returns nil when the amd_pstate status is "active" and every
// possible CPU is driven by amd-pstate-epp. The first failing CPU
// short-circuits the scan.
func Verify(p Platform) error {
	status, err := p.AmdPstateStatus()
	if err != nil {
		return &PreconditionError{Reason: ReasonStatusUnreadable, Err: err}
	}
	if status != cpufreq.StatusActive {
		return &PreconditionError{Reason: ReasonStatusNotActive, Status: status}
	}

	cpus, err := p.PossibleCPUs()
	if err != nil {
		return &PreconditionError{Reason: ReasonCPUsUnreadable, Err: err}
	}
	for _, cpu := range cpus {
		driver, err := p.Driver(cpu)
		if err != nil {
			return &PreconditionError{Reason: ReasonDriverUnreadable, CPU: &cpu, Err: err}
		}
		if driver != cpufreq.DriverAmdPstateEPP {
			return &PreconditionError{Reason: ReasonWrongDriver, CPU: &cpu, Driver: driver}
		}
	}
	return nil
}

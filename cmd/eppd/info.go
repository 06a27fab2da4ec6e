// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/bureau-foundation/eppd/lib/cpufreq"
	"github.com/bureau-foundation/eppd/lib/profile"
)

// printInfo writes a report of the P-State mode, the active power
// profile, and the policy of every possible CPU. Unreadable values are
// printed as errors inline; only an unreadable CPU list stops the
// report. source may be nil when the bus was unreachable.
func printInfo(ctx context.Context, w io.Writer, sysfs *cpufreq.Sysfs, source profile.Source) error {
	status, err := sysfs.AmdPstateStatus()
	fmt.Fprintf(w, "amd-pstate status: %s\n", valueOrError(status, err))

	if source == nil {
		fmt.Fprintln(w, "power profile: unavailable")
	} else {
		current, err := source.Current(ctx)
		fmt.Fprintf(w, "power profile: %s\n", valueOrError(current, err))
	}

	cpus, err := sysfs.PossibleCPUs()
	if err != nil {
		return fmt.Errorf("enumerating cpus: %w", err)
	}
	fmt.Fprintf(w, "possible cpus: %s\n", cpus)

	for _, cpu := range cpus {
		driver, err := sysfs.Driver(cpu)
		fmt.Fprintf(w, "%s\n", cpu)
		fmt.Fprintf(w, "  scaling driver: %s", valueOrError(driver, err))
		if err == nil && driver != cpufreq.DriverAmdPstateEPP {
			fmt.Fprint(w, " (unsupported)")
		}
		fmt.Fprintln(w)

		governor, err := sysfs.Governor(cpu)
		fmt.Fprintf(w, "  scaling governor: %s\n", valueOrError(governor, err))
		governors, err := sysfs.AvailableGovernors(cpu)
		fmt.Fprintf(w, "  available governors: %s\n", valueOrError(governors, err))

		epp, err := sysfs.EPP(cpu)
		fmt.Fprintf(w, "  energy performance preference: %s\n", valueOrError(epp, err))
		epps, err := sysfs.AvailableEPPs(cpu)
		fmt.Fprintf(w, "  available preferences: %s\n", valueOrError(epps, err))
	}
	return nil
}

func valueOrError(value fmt.Stringer, err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return value.String()
}

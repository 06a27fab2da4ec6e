// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/eppd/lib/cpufreq"
	"github.com/bureau-foundation/eppd/lib/cpuset"
	"github.com/bureau-foundation/eppd/lib/profile"
)

// Attributes is the per-CPU sysfs surface the engine reads and writes.
// *cpufreq.Sysfs satisfies it.
type Attributes interface {
	PossibleCPUs() (cpuset.Set, error)

	Governor(cpu cpuset.CPU) (cpufreq.Governor, error)
	AvailableGovernors(cpu cpuset.CPU) (cpufreq.Set[cpufreq.Governor], error)
	SetGovernor(cpu cpuset.CPU, governor cpufreq.Governor) error

	EPP(cpu cpuset.CPU) (cpufreq.EPP, error)
	AvailableEPPs(cpu cpuset.CPU) (cpufreq.Set[cpufreq.EPP], error)
	SetEPP(cpu cpuset.CPU, epp cpufreq.EPP) error
}

// Recorder observes every report the engine produces.
type Recorder interface {
	Record(report Report)
}

// Engine applies power profiles to the CPU set.
type Engine struct {
	attributes Attributes
	logger     *slog.Logger
	recorder   Recorder

	// lastApplied is the profile most recently applied to every CPU
	// without fault. Valid only when applied is true.
	lastApplied profile.Profile
	applied     bool
}

// New returns an Engine that has applied nothing yet, so its first
// Apply always runs a full pass. recorder may be nil.
func New(attributes Attributes, logger *slog.Logger, recorder Recorder) *Engine {
	return &Engine{
		attributes: attributes,
		logger:     logger,
		recorder:   recorder,
	}
}

// LastApplied returns the profile most recently applied in full.
func (e *Engine) LastApplied() (profile.Profile, bool) {
	return e.lastApplied, e.applied
}

// Apply brings every possible CPU in line with the policy for p.
func (e *Engine) Apply(p profile.Profile) Report {
	report := e.apply(p)
	if e.recorder != nil {
		e.recorder.Record(report)
	}
	return report
}

func (e *Engine) apply(p profile.Profile) Report {
	report := Report{Profile: p}

	if e.applied && p == e.lastApplied {
		report.Skipped = true
		e.logger.Debug("power profile already applied", "profile", p)
		return report
	}

	policy, ok := DesiredPolicy(p)
	if !ok {
		report.PassErr = &profile.ParseError{Token: p.String()}
		return report
	}
	report.Policy = policy

	// Re-enumerated every pass: CPUs may have been hot-added.
	cpus, err := e.attributes.PossibleCPUs()
	if err != nil {
		report.PassErr = fmt.Errorf("enumerating cpus: %w", err)
		e.logger.Error("cannot enumerate cpus", "profile", p, "error", err)
		return report
	}
	report.CPUs = cpus

	for _, cpu := range cpus {
		from, wrote, err := reconcileAttribute(cpu, policy.Governor,
			e.attributes.Governor, e.attributes.AvailableGovernors, e.attributes.SetGovernor)
		e.note(&report, cpu, AttributeGovernor, from.String(), policy.Governor.String(), wrote, err)

		fromEPP, wrote, err := reconcileAttribute(cpu, policy.EPP,
			e.attributes.EPP, e.attributes.AvailableEPPs, e.attributes.SetEPP)
		e.note(&report, cpu, AttributeEPP, fromEPP.String(), policy.EPP.String(), wrote, err)
	}

	if report.Complete() {
		e.lastApplied = p
		e.applied = true
		e.logger.Info("applied power profile",
			"profile", p,
			"governor", policy.Governor,
			"epp", policy.EPP,
			"cpus", cpus.String(),
			"writes", len(report.Writes),
		)
	} else {
		e.logger.Warn("power profile partially applied",
			"profile", p,
			"cpus", cpus.String(),
			"writes", len(report.Writes),
			"faults", len(report.Faults),
		)
	}
	return report
}

// note records the outcome of one attribute on one CPU.
func (e *Engine) note(report *Report, cpu cpuset.CPU, attribute Attribute, from, to string, wrote bool, err error) {
	if err != nil {
		report.Faults = append(report.Faults, Fault{CPU: cpu, Attribute: attribute, Err: err})
		e.logger.Warn("cpu not reconciled",
			"cpu", cpu.String(),
			"attribute", string(attribute),
			"error", err,
		)
		return
	}
	if wrote {
		report.Writes = append(report.Writes, Write{CPU: cpu, Attribute: attribute, From: from, To: to})
		e.logger.Debug("cpu policy written",
			"cpu", cpu.String(),
			"attribute", string(attribute),
			"from", from,
			"to", to,
		)
	}
}

// reconcileAttribute reads one attribute and, when it differs from
// want, writes want after confirming the CPU offers it. It returns the
// value read (zero when the read failed).
func reconcileAttribute[V cpufreq.Value](
	cpu cpuset.CPU,
	want V,
	read func(cpuset.CPU) (V, error),
	available func(cpuset.CPU) (cpufreq.Set[V], error),
	write func(cpuset.CPU, V) error,
) (current V, wrote bool, err error) {
	current, err = read(cpu)
	if err != nil {
		return current, false, err
	}
	if current == want {
		return current, false, nil
	}

	offered, err := available(cpu)
	if err != nil {
		return current, false, err
	}
	if !offered.Contains(want) {
		return current, false, &UnsupportedValueError{Want: want.String(), Available: offered.String()}
	}

	if err := write(cpu, want); err != nil {
		return current, false, err
	}
	return current, true, nil
}

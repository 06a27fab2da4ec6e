// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cpufreq

// Driver is a cpufreq scaling driver.
type Driver uint8

const (
	DriverAcpiCpufreq Driver = iota + 1
	DriverAmdPstate
	DriverAmdPstateEPP
	DriverCppcCpufreq
	DriverIntelCpufreq
	DriverIntelPstate
	DriverSpeedstepLib
)

var drivers = newVocabulary("scaling driver",
	entry[Driver]{DriverAcpiCpufreq, "acpi-cpufreq"},
	entry[Driver]{DriverAmdPstate, "amd-pstate"},
	entry[Driver]{DriverAmdPstateEPP, "amd-pstate-epp"},
	entry[Driver]{DriverCppcCpufreq, "cppc-cpufreq"},
	entry[Driver]{DriverIntelCpufreq, "intel-cpufreq"},
	entry[Driver]{DriverIntelPstate, "intel-pstate"},
	entry[Driver]{DriverSpeedstepLib, "speedstep-lib"},
)

// ParseDriver maps a scaling_driver token to its Driver.
func ParseDriver(token string) (Driver, error) { return drivers.parse(token) }

// String returns the sysfs token for d.
func (d Driver) String() string { return drivers.format(d) }

// AllDrivers returns every known driver.
func AllDrivers() []Driver { return drivers.all() }

// Governor is a cpufreq scaling governor.
type Governor uint8

const (
	GovernorConservative Governor = iota + 1
	GovernorOndemand
	GovernorPerformance
	GovernorPowersave
	GovernorSchedutil
	GovernorUserspace
)

var governors = newVocabulary("scaling governor",
	entry[Governor]{GovernorConservative, "conservative"},
	entry[Governor]{GovernorOndemand, "ondemand"},
	entry[Governor]{GovernorPerformance, "performance"},
	entry[Governor]{GovernorPowersave, "powersave"},
	entry[Governor]{GovernorSchedutil, "schedutil"},
	entry[Governor]{GovernorUserspace, "userspace"},
)

// ParseGovernor maps a scaling_governor token to its Governor.
func ParseGovernor(token string) (Governor, error) { return governors.parse(token) }

// String returns the sysfs token for g.
func (g Governor) String() string { return governors.format(g) }

// AllGovernors returns every known governor.
func AllGovernors() []Governor { return governors.all() }

// EPP is an energy/performance preference hint.
type EPP uint8

const (
	EPPDefault EPP = iota + 1
	EPPPerformance
	EPPBalancePerformance
	EPPBalancePower
	EPPPower
)

// EPP tokens use underscores, unlike every other family here.
var epps = newVocabulary("energy performance preference",
	entry[EPP]{EPPDefault, "default"},
	entry[EPP]{EPPPerformance, "performance"},
	entry[EPP]{EPPBalancePerformance, "balance_performance"},
	entry[EPP]{EPPBalancePower, "balance_power"},
	entry[EPP]{EPPPower, "power"},
)

// ParseEPP maps an energy_performance_preference token to its EPP.
func ParseEPP(token string) (EPP, error) { return epps.parse(token) }

// String returns the sysfs token for e.
func (e EPP) String() string { return epps.format(e) }

// AllEPPs returns every known preference.
func AllEPPs() []EPP { return epps.all() }

// Status is the operating mode reported by amd_pstate/status.
type Status uint8

const (
	StatusActive Status = iota + 1
	StatusGuided
	StatusPassive
)

var statuses = newVocabulary("amd-pstate status",
	entry[Status]{StatusActive, "active"},
	entry[Status]{StatusGuided, "guided"},
	entry[Status]{StatusPassive, "passive"},
)

// ParseStatus maps an amd_pstate/status token to its Status.
func ParseStatus(token string) (Status, error) { return statuses.parse(token) }

// String returns the sysfs token for s.
func (s Status) String() string { return statuses.format(s) }

// AllStatuses returns every known status.
func AllStatuses() []Status { return statuses.all() }

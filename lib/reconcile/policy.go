// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"github.com/bureau-foundation/eppd/lib/cpufreq"
	"github.com/bureau-foundation/eppd/lib/profile"
)

// Policy is the governor and EPP every CPU should run under.
type Policy struct {
	Governor cpufreq.Governor
	EPP      cpufreq.EPP
}

var desiredPolicies = map[profile.Profile]Policy{
	profile.PowerSaver:  {Governor: cpufreq.GovernorPowersave, EPP: cpufreq.EPPPower},
	profile.Balanced:    {Governor: cpufreq.GovernorPowersave, EPP: cpufreq.EPPBalancePerformance},
	profile.Performance: {Governor: cpufreq.GovernorPerformance, EPP: cpufreq.EPPPerformance},
}

// DesiredPolicy returns the policy for p. ok is false only for values
// outside the profile vocabulary.
func DesiredPolicy(p profile.Profile) (policy Policy, ok bool) {
	policy, ok = desiredPolicies[p]
	return policy, ok
}

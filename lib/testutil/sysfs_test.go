// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"testing"
	"time"
)

const receiveTimeout = 5 * time.Second

func TestSysfsTreeCPUFreq(t *testing.T) {
	tree := NewSysfsTree(t)
	tree.CPUFreq(2, "amd-pstate-epp", "powersave", "performance powersave", "", "")

	if got := tree.Read("devices/system/cpu/cpu2/cpufreq/scaling_governor"); got != "powersave" {
		t.Errorf("scaling_governor = %q, want powersave", got)
	}
	data, err := os.ReadFile(tree.Path("devices/system/cpu/cpu2/cpufreq/scaling_driver"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "amd-pstate-epp\n" {
		t.Errorf("scaling_driver raw content = %q, want a trailing newline", data)
	}
	if _, err := os.Stat(tree.Path("devices/system/cpu/cpu2/cpufreq/energy_performance_preference")); !os.IsNotExist(err) {
		t.Errorf("empty EPP argument should leave the file absent, stat error = %v", err)
	}
}

func TestRequireReceive(t *testing.T) {
	values := make(chan int, 1)
	values <- 7
	if got := RequireReceive(t, (<-chan int)(values), receiveTimeout); got != 7 {
		t.Errorf("RequireReceive = %d, want 7", got)
	}

	close(values)
	RequireClosed(t, (<-chan int)(values), receiveTimeout)
}

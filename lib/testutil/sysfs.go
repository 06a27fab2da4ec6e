// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// SysfsTree is a synthetic sysfs hierarchy rooted in a temporary
// directory. Paths passed to its methods are relative to the root, in
// the same form the kernel exposes them below /sys.
type SysfsTree struct {
	t    testing.TB
	Root string
}

// NewSysfsTree creates an empty tree in t.TempDir().
func NewSysfsTree(t testing.TB) *SysfsTree {
	t.Helper()
	return &SysfsTree{t: t, Root: t.TempDir()}
}

// Path returns the absolute path of a file in the tree.
func (s *SysfsTree) Path(relative string) string {
	return filepath.Join(s.Root, relative)
}

// Write creates or replaces a file, creating parent directories as
// needed. A trailing newline is appended, as sysfs does.
func (s *SysfsTree) Write(relative, content string) {
	s.t.Helper()
	path := s.Path(relative)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		s.t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0644); err != nil {
		s.t.Fatalf("write %s: %v", path, err)
	}
}

// Read returns the whitespace-trimmed content of a file in the tree.
func (s *SysfsTree) Read(relative string) string {
	s.t.Helper()
	data, err := os.ReadFile(s.Path(relative))
	if err != nil {
		s.t.Fatalf("read %s: %v", relative, err)
	}
	return strings.TrimSpace(string(data))
}

// Remove deletes a file from the tree.
func (s *SysfsTree) Remove(relative string) {
	s.t.Helper()
	if err := os.Remove(s.Path(relative)); err != nil {
		s.t.Fatalf("remove %s: %v", relative, err)
	}
}

// CPUFreq writes the cpufreq attribute files for one CPU. Empty
// arguments leave the corresponding file absent.
//
//	tree.CPUFreq(3, "amd-pstate-epp", "powersave", "performance powersave",
//	    "balance_performance", "default performance balance_performance balance_power power")
func (s *SysfsTree) CPUFreq(cpu int, driver, governor, availableGovernors, epp, availableEPPs string) {
	s.t.Helper()
	base := filepath.Join("devices/system/cpu", "cpu"+strconv.Itoa(cpu), "cpufreq")
	for name, content := range map[string]string{
		"scaling_driver":                           driver,
		"scaling_governor":                         governor,
		"scaling_available_governors":              availableGovernors,
		"energy_performance_preference":            epp,
		"energy_performance_available_preferences": availableEPPs,
	} {
		if content != "" {
			s.Write(filepath.Join(base, name), content)
		}
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cpufreq

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/eppd/lib/cpuset"
)

// DefaultRoot is the sysfs mount point on a live system.
const DefaultRoot = "/sys"

const (
	possibleFile        = "possible"
	amdPstateStatusFile = "amd_pstate/status"

	scalingDriverFile   = "cpufreq/scaling_driver"
	scalingGovernorFile = "cpufreq/scaling_governor"
	availGovernorsFile  = "cpufreq/scaling_available_governors"
	eppFile             = "cpufreq/energy_performance_preference"
	availEPPsFile       = "cpufreq/energy_performance_available_preferences"
)

// Sysfs reads and writes cpufreq attributes below a sysfs root. A
// Sysfs holds no state beyond its root and is safe for concurrent use,
// though concurrent writers to the same CPU will race in the kernel.
type Sysfs struct {
	cpuBase string
}

// New returns a Sysfs rooted at root (normally [DefaultRoot]). Tests
// point root at a synthetic tree.
func New(root string) *Sysfs {
	return &Sysfs{cpuBase: filepath.Join(root, "devices/system/cpu")}
}

// CPUPath returns the path of a per-CPU attribute, relative names
// like "cpufreq/scaling_governor" included.
func (s *Sysfs) CPUPath(cpu cpuset.CPU, attribute string) string {
	return filepath.Join(s.cpuBase, cpu.String(), attribute)
}

// PossibleCPUs reads and parses devices/system/cpu/possible.
func (s *Sysfs) PossibleCPUs() (cpuset.Set, error) {
	path := filepath.Join(s.cpuBase, possibleFile)
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	set, err := cpuset.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// AmdPstateStatus reads the platform-wide amd_pstate operating mode.
func (s *Sysfs) AmdPstateStatus() (Status, error) {
	return readActive(filepath.Join(s.cpuBase, amdPstateStatusFile), statuses)
}

// Driver reads the scaling driver bound to cpu.
func (s *Sysfs) Driver(cpu cpuset.CPU) (Driver, error) {
	return readActive(s.CPUPath(cpu, scalingDriverFile), drivers)
}

// Governor reads the active scaling governor of cpu.
func (s *Sysfs) Governor(cpu cpuset.CPU) (Governor, error) {
	return readActive(s.CPUPath(cpu, scalingGovernorFile), governors)
}

// AvailableGovernors reads the governors cpu accepts.
func (s *Sysfs) AvailableGovernors(cpu cpuset.CPU) (Set[Governor], error) {
	return readAvailable(s.CPUPath(cpu, availGovernorsFile), governors)
}

// SetGovernor writes governor as the active scaling governor of cpu.
func (s *Sysfs) SetGovernor(cpu cpuset.CPU, governor Governor) error {
	return writeActive(s.CPUPath(cpu, scalingGovernorFile), governors, governor)
}

// EPP reads the active energy/performance preference of cpu.
func (s *Sysfs) EPP(cpu cpuset.CPU) (EPP, error) {
	return readActive(s.CPUPath(cpu, eppFile), epps)
}

// AvailableEPPs reads the preferences cpu accepts.
func (s *Sysfs) AvailableEPPs(cpu cpuset.CPU) (Set[EPP], error) {
	return readAvailable(s.CPUPath(cpu, availEPPsFile), epps)
}

// SetEPP writes epp as the active energy/performance preference of cpu.
func (s *Sysfs) SetEPP(cpu cpuset.CPU, epp EPP) error {
	return writeActive(s.CPUPath(cpu, eppFile), epps, epp)
}

// readFile returns the whitespace-trimmed contents of a sysfs file.
func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	return strings.TrimSpace(string(data)), nil
}

// readActive parses a single-token attribute file.
func readActive[T Value](path string, vocab *vocabulary[T]) (T, error) {
	var zero T
	token, err := readFile(path)
	if err != nil {
		return zero, err
	}
	value, err := vocab.parse(token)
	if err != nil {
		return zero, withPath(err, path)
	}
	return value, nil
}

// readAvailable parses a whitespace-separated token list. A single
// unrecognized token fails the whole read.
func readAvailable[T Value](path string, vocab *vocabulary[T]) (Set[T], error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	set := make(Set[T])
	for _, token := range strings.Fields(content) {
		value, err := vocab.parse(token)
		if err != nil {
			return nil, withPath(err, path)
		}
		set[value] = struct{}{}
	}
	return set, nil
}

// writeActive writes the canonical token for value. The file is opened
// without O_CREATE: a missing attribute is an error, not something to
// materialize.
func writeActive[T Value](path string, vocab *vocabulary[T], value T) error {
	token, ok := vocab.tokens[value]
	if !ok {
		return &ParseError{Vocabulary: vocab.name, Token: value.String(), Path: path}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return classifyWriteError(path, err)
	}
	if _, err := file.WriteString(token); err != nil {
		file.Close()
		return classifyWriteError(path, err)
	}
	if err := file.Close(); err != nil {
		return classifyWriteError(path, err)
	}
	return nil
}

func classifyWriteError(path string, err error) error {
	if errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM) {
		return &PermissionError{Path: path, Err: err}
	}
	return &IOError{Op: "write", Path: path, Err: err}
}

func withPath(err error, path string) error {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		parseErr.Path = path
	}
	return err
}

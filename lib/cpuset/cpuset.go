// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cpuset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CPU identifies one logical CPU by its kernel index.
type CPU uint

// String returns the sysfs directory name for the CPU ("cpu3").
func (c CPU) String() string {
	return "cpu" + strconv.FormatUint(uint64(c), 10)
}

// Set is an ordered list of CPUs as produced by [Parse]. It is not
// deduplicated.
type Set []CPU

// Reason classifies why a CPU list failed to parse.
type Reason string

const (
	// ReasonMalformedRange covers empty groups, ranges with an empty
	// side ("3-", "-3"), and groups with more than one hyphen.
	ReasonMalformedRange Reason = "malformed-range"

	// ReasonNonNumeric means a bound was not a non-negative decimal
	// integer.
	ReasonNonNumeric Reason = "non-numeric"

	// ReasonRightLessThanLeft means a range's upper bound was below its
	// lower bound ("7-3").
	ReasonRightLessThanLeft Reason = "right-less-than-left"

	// ReasonOutOfRange means a bound exceeded [MaxIndex].
	ReasonOutOfRange Reason = "out-of-range"
)

// MaxIndex is the largest CPU index Parse accepts. It is well above
// the NR_CPUS limit of any kernel configuration.
const MaxIndex = 1<<16 - 1

// ErrParse is matched (via errors.Is) by every *ParseError.
var ErrParse = errors.New("invalid cpu list")

// ParseError reports the first group of a CPU list that could not be
// parsed.
type ParseError struct {
	Input   string
	Segment string
	Reason  Reason
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid cpu list %q: group %q: %s", e.Input, e.Segment, e.Reason)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Parse expands a CPU list such as "0-3,6,8-11". Leading and trailing
// whitespace (the newline sysfs appends) is ignored.
func Parse(list string) (Set, error) {
	input := strings.TrimSpace(list)

	var set Set
	for _, segment := range strings.Split(input, ",") {
		left, right, reason := parseGroup(segment)
		if reason != "" {
			return nil, &ParseError{Input: list, Segment: segment, Reason: reason}
		}
		for index := left; ; index++ {
			set = append(set, CPU(index))
			if index == right {
				break
			}
		}
	}
	return set, nil
}

// parseGroup parses one comma-separated group into inclusive bounds.
// A single index yields left == right.
func parseGroup(segment string) (left, right uint64, reason Reason) {
	bounds := strings.Split(segment, "-")
	if len(bounds) > 2 {
		return 0, 0, ReasonMalformedRange
	}
	for _, bound := range bounds {
		if bound == "" {
			return 0, 0, ReasonMalformedRange
		}
	}

	left, reason = parseBound(bounds[0])
	if reason != "" {
		return 0, 0, reason
	}
	if len(bounds) == 1 {
		return left, left, ""
	}

	right, reason = parseBound(bounds[1])
	if reason != "" {
		return 0, 0, reason
	}
	if right < left {
		return 0, 0, ReasonRightLessThanLeft
	}
	return left, right, ""
}

func parseBound(bound string) (uint64, Reason) {
	index, err := strconv.ParseUint(bound, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, ReasonOutOfRange
	}
	if err != nil {
		return 0, ReasonNonNumeric
	}
	if index > MaxIndex {
		return 0, ReasonOutOfRange
	}
	return index, ""
}

// Contains reports whether cpu appears anywhere in the set.
func (s Set) Contains(cpu CPU) bool {
	for _, member := range s {
		if member == cpu {
			return true
		}
	}
	return false
}

// String compacts the set back into list notation. Runs of consecutive
// ascending indices collapse into ranges; order and duplicates are
// otherwise kept, so String of a parsed set is a valid input to Parse
// that expands to the same sequence.
func (s Set) String() string {
	var builder strings.Builder
	for start := 0; start < len(s); {
		end := start
		for end+1 < len(s) && s[end+1] == s[end]+1 {
			end++
		}
		if builder.Len() > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatUint(uint64(s[start]), 10))
		if end > start {
			builder.WriteByte('-')
			builder.WriteString(strconv.FormatUint(uint64(s[end]), 10))
		}
		start = end + 1
	}
	return builder.String()
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile defines the desktop power profile vocabulary and the
// narrow contract eppd needs from whatever publishes it: read the
// current profile, and subscribe to changes.
//
// [DBusSource] implements the contract against power-profiles-daemon
// on the system bus. Tests substitute their own [Source].
package profile

import (
	"context"
	"errors"
	"fmt"
)

// Profile is a power profile as published by power-profiles-daemon.
type Profile uint8

const (
	PowerSaver Profile = iota + 1
	Balanced
	Performance
)

var profileTokens = map[Profile]string{
	PowerSaver:  "power-saver",
	Balanced:    "balanced",
	Performance: "performance",
}

// All returns every profile, from lowest to highest power draw.
func All() []Profile {
	return []Profile{PowerSaver, Balanced, Performance}
}

// String returns the token power-profiles-daemon uses for p.
func (p Profile) String() string {
	if token, ok := profileTokens[p]; ok {
		return token
	}
	return fmt.Sprintf("invalid profile (%d)", uint8(p))
}

// ErrParse is matched by *ParseError.
var ErrParse = errors.New("unrecognized power profile")

// ParseError reports a profile token outside the vocabulary. An
// unknown profile is never mapped to a policy by guessing.
type ParseError struct {
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized power profile %q", e.Token)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Parse maps a power-profiles-daemon token to its Profile. Matching is
// exact and case-sensitive.
func Parse(token string) (Profile, error) {
	for profile, known := range profileTokens {
		if token == known {
			return profile, nil
		}
	}
	return 0, &ParseError{Token: token}
}

// Event is one change notification from a Source. Exactly one of
// Profile and Err is meaningful; Raw carries the token as received
// when there was one.
type Event struct {
	Profile Profile
	Raw     string
	Err     error
}

// EventFor parses raw into an Event, recording a parse failure in Err
// rather than dropping the notification.
func EventFor(raw string) Event {
	profile, err := Parse(raw)
	return Event{Profile: profile, Raw: raw, Err: err}
}

// ErrAlreadySubscribed is returned by Subscribe on its second call.
var ErrAlreadySubscribed = errors.New("profile source already subscribed")

// Source reports the active power profile and its changes.
type Source interface {
	// Current reads the profile active right now.
	Current(ctx context.Context) (Profile, error)

	// Subscribe starts delivering change notifications in emission
	// order. The stream is not restartable: it may be requested once,
	// and the channel is closed when the source ends. Duplicate
	// notifications are possible.
	Subscribe(ctx context.Context) (<-chan Event, error)
}

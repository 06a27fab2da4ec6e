// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/eppd/lib/clock"
	"github.com/bureau-foundation/eppd/lib/metrics"
	"github.com/bureau-foundation/eppd/lib/profile"
	"github.com/bureau-foundation/eppd/lib/reconcile"
)

// errSubscriptionEnded is returned by Run when the profile source
// closes its stream. The stream cannot be resumed, so the daemon exits
// and leaves restarting to the service manager.
var errSubscriptionEnded = errors.New("power profile subscription ended")

// Daemon follows the active power profile and applies it. All
// reconciliation happens on the goroutine that calls Run; the engine
// is never shared.
type Daemon struct {
	source  profile.Source
	engine  *reconcile.Engine
	metrics *metrics.Metrics
	clock   clock.Clock
	logger  *slog.Logger

	// startupTimeout bounds Subscribe and the initial Current read.
	startupTimeout time.Duration

	// retryInterval is the delay before re-applying a profile whose
	// pass left faults. Zero disables retries.
	retryInterval time.Duration

	// retry is the armed retry timer, nil when none is pending.
	retry        *clock.Timer
	retryProfile profile.Profile
}

// Run subscribes to profile changes, applies the current profile, and
// then applies every change in the order received. It returns nil when
// ctx is cancelled and an error when startup fails or the
// subscription ends. An unrecognized current profile is not a startup
// failure: Run waits for the next change instead.
func (d *Daemon) Run(ctx context.Context) error {
	// Subscribe before reading Current: a change landing between the
	// two is then queued rather than lost. A duplicate is harmless.
	startupCtx, cancel := context.WithTimeout(ctx, d.startupTimeout)
	events, err := d.source.Subscribe(startupCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribing to power profile changes: %w", err)
	}
	current, err := d.source.Current(startupCtx)
	cancel()
	switch {
	case errors.Is(err, profile.ErrParse):
		// Nothing is applied until the service publishes a profile
		// eppd recognizes.
		d.logger.Warn("current power profile not recognized, waiting for a change", "error", err)
	case err != nil:
		return fmt.Errorf("reading current power profile: %w", err)
	default:
		d.logger.Info("following power profile", "profile", current)
		d.apply(current)
	}
	defer d.cancelRetry()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down")
			return nil

		case event, ok := <-events:
			if !ok {
				return errSubscriptionEnded
			}
			if event.Err != nil {
				d.metrics.RecordEvent(true)
				d.logger.Warn("ignoring power profile notification",
					"raw", event.Raw,
					"error", event.Err,
				)
				continue
			}
			d.metrics.RecordEvent(false)
			d.cancelRetry()
			d.logger.Debug("power profile changed", "profile", event.Profile)
			d.apply(event.Profile)

		case <-d.retryChannel():
			d.retry = nil
			d.metrics.RecordRetry()
			d.logger.Info("retrying power profile", "profile", d.retryProfile)
			d.apply(d.retryProfile)
		}
	}
}

// apply runs one pass and arms the retry timer if it left faults.
func (d *Daemon) apply(p profile.Profile) {
	report := d.engine.Apply(p)
	if report.Complete() || d.retryInterval <= 0 {
		return
	}
	d.retryProfile = p
	d.retry = d.clock.NewTimer(d.retryInterval)
	d.logger.Debug("retry scheduled", "profile", p, "at", d.clock.Now().Add(d.retryInterval))
}

func (d *Daemon) cancelRetry() {
	if d.retry != nil {
		d.retry.Stop()
		d.retry = nil
	}
}

// retryChannel returns the armed timer's channel, or nil (which blocks
// forever in a select) when no retry is pending.
func (d *Daemon) retryChannel() <-chan time.Time {
	if d.retry == nil {
		return nil
	}
	return d.retry.C
}

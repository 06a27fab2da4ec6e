// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
)

// Well-known D-Bus coordinates of power-profiles-daemon. Releases
// before 0.20 only own the net.hadess names; later releases own both.
const (
	HadessName      = "net.hadess.PowerProfiles"
	HadessPath      = "/net/hadess/PowerProfiles"
	HadessInterface = "net.hadess.PowerProfiles"

	UPowerName      = "org.freedesktop.UPower.PowerProfiles"
	UPowerPath      = "/org/freedesktop/UPower/PowerProfiles"
	UPowerInterface = "org.freedesktop.UPower.PowerProfiles"
)

// Service names for [WellKnown].
const (
	ServiceHadess = "hadess"
	ServiceUPower = "upower"
)

// WellKnown returns a system-bus DBusConfig addressing one of the
// identities power-profiles-daemon owns.
func WellKnown(service string) (DBusConfig, error) {
	switch service {
	case ServiceHadess:
		return DBusConfig{Bus: "system", Name: HadessName, Path: HadessPath, Interface: HadessInterface}, nil
	case ServiceUPower:
		return DBusConfig{Bus: "system", Name: UPowerName, Path: UPowerPath, Interface: UPowerInterface}, nil
	}
	return DBusConfig{}, fmt.Errorf("unknown power-profiles-daemon service %q (want %s or %s)", service, ServiceHadess, ServiceUPower)
}

const (
	activeProfileProperty = "ActiveProfile"

	propertiesInterface      = "org.freedesktop.DBus.Properties"
	propertiesGet            = propertiesInterface + ".Get"
	propertiesChangedMember  = "PropertiesChanged"
	propertiesChangedSignal  = propertiesInterface + "." + propertiesChangedMember
	defaultSubscriptionQueue = 16
)

// DBusConfig locates power-profiles-daemon on the bus.
type DBusConfig struct {
	// Bus is "system" (default) or "session".
	Bus string

	Name      string
	Path      string
	Interface string

	// QueueSize bounds the event channel returned by Subscribe. When it
	// is full the translator blocks; notifications are never dropped
	// or reordered.
	QueueSize int
}

// DBusSource reads the ActiveProfile property of power-profiles-daemon
// and follows its PropertiesChanged signals.
type DBusSource struct {
	conn   *dbus.Conn
	object dbus.BusObject
	config DBusConfig
	logger *slog.Logger

	subscribed atomic.Bool
	done       chan struct{}
	closeOnce  sync.Once
}

// DialDBus connects to the configured bus. The context bounds the
// connection handshake only; it does not bound the lifetime of the
// connection. A dial that completes after ctx is done is closed and
// discarded.
func DialDBus(ctx context.Context, config DBusConfig, logger *slog.Logger) (*DBusSource, error) {
	if !dbus.ObjectPath(config.Path).IsValid() {
		return nil, fmt.Errorf("invalid D-Bus object path %q", config.Path)
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaultSubscriptionQueue
	}

	type dialResult struct {
		conn *dbus.Conn
		err  error
	}
	results := make(chan dialResult, 1)
	go func() {
		conn, err := connect(config.Bus)
		results <- dialResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if late := <-results; late.conn != nil {
				late.conn.Close()
			}
		}()
		return nil, fmt.Errorf("connecting to %s bus: %w", busName(config.Bus), ctx.Err())
	case result := <-results:
		if result.err != nil {
			return nil, fmt.Errorf("connecting to %s bus: %w", busName(config.Bus), result.err)
		}
		return newDBusSource(result.conn, result.conn.Object(config.Name, dbus.ObjectPath(config.Path)), config, logger), nil
	}
}

// connect opens a bus connection. godbus closes a connection when the
// context passed through dbus.WithContext ends, so none is passed: the
// connection lives until Close.
func connect(bus string) (*dbus.Conn, error) {
	switch bus {
	case "session":
		return dbus.ConnectSessionBus()
	case "", "system":
		return dbus.ConnectSystemBus()
	}
	return nil, fmt.Errorf("unknown bus %q (want system or session)", bus)
}

func newDBusSource(conn *dbus.Conn, object dbus.BusObject, config DBusConfig, logger *slog.Logger) *DBusSource {
	return &DBusSource{
		conn:   conn,
		object: object,
		config: config,
		logger: logger,
		done:   make(chan struct{}),
	}
}

func busName(bus string) string {
	if bus == "" {
		return "system"
	}
	return bus
}

// Current reads ActiveProfile.
func (s *DBusSource) Current(ctx context.Context) (Profile, error) {
	raw, err := s.readActiveProfile(ctx)
	if err != nil {
		return 0, err
	}
	return Parse(raw)
}

func (s *DBusSource) readActiveProfile(ctx context.Context) (string, error) {
	var value dbus.Variant
	err := s.object.CallWithContext(ctx, propertiesGet, 0, s.config.Interface, activeProfileProperty).Store(&value)
	if err != nil {
		return "", fmt.Errorf("reading %s.%s from %s: %w", s.config.Interface, activeProfileProperty, s.config.Name, err)
	}
	raw, ok := value.Value().(string)
	if !ok {
		return "", fmt.Errorf("%s.%s has type %s, want string", s.config.Interface, activeProfileProperty, value.Signature())
	}
	return raw, nil
}

// Subscribe installs a match rule for PropertiesChanged on the
// profile object and returns the resulting event stream. The stream
// closes when the bus connection ends or Close is called.
func (s *DBusSource) Subscribe(ctx context.Context) (<-chan Event, error) {
	if !s.subscribed.CompareAndSwap(false, true) {
		return nil, ErrAlreadySubscribed
	}

	err := s.conn.AddMatchSignalContext(ctx,
		dbus.WithMatchObjectPath(dbus.ObjectPath(s.config.Path)),
		dbus.WithMatchInterface(propertiesInterface),
		dbus.WithMatchMember(propertiesChangedMember),
		dbus.WithMatchArg(0, s.config.Interface),
	)
	if err != nil {
		return nil, fmt.Errorf("adding PropertiesChanged match for %s: %w", s.config.Path, err)
	}

	signals := make(chan *dbus.Signal, s.config.QueueSize)
	s.conn.Signal(signals)

	events := make(chan Event, s.config.QueueSize)
	go s.translate(signals, events)
	return events, nil
}

// translate turns PropertiesChanged signals into Events, in order.
func (s *DBusSource) translate(signals <-chan *dbus.Signal, events chan<- Event) {
	defer close(events)
	for {
		var signal *dbus.Signal
		select {
		case <-s.done:
			return
		case received, ok := <-signals:
			if !ok {
				return
			}
			signal = received
		}

		if signal.Path != dbus.ObjectPath(s.config.Path) || signal.Name != propertiesChangedSignal {
			continue
		}
		change, err := decodePropertiesChanged(signal.Body, s.config.Interface)
		if err != nil {
			s.logger.Warn("ignoring malformed PropertiesChanged signal", "error", err)
			continue
		}

		var event Event
		switch {
		case change.changed:
			event = EventFor(change.raw)
		case change.invalidated:
			raw, err := s.readActiveProfile(context.Background())
			if err != nil {
				event = Event{Err: err}
			} else {
				event = EventFor(raw)
			}
		default:
			continue
		}

		select {
		case events <- event:
		case <-s.done:
			return
		}
	}
}

// activeProfileChange is the ActiveProfile-relevant part of one
// PropertiesChanged signal.
type activeProfileChange struct {
	raw         string
	changed     bool
	invalidated bool
}

// decodePropertiesChanged extracts ActiveProfile from the body of a
// PropertiesChanged signal: (interface string, changed a{sv},
// invalidated as). Signals for other interfaces decode to a zero
// change.
func decodePropertiesChanged(body []any, iface string) (activeProfileChange, error) {
	var change activeProfileChange
	if len(body) != 3 {
		return change, fmt.Errorf("PropertiesChanged body has %d fields, want 3", len(body))
	}
	name, ok := body[0].(string)
	if !ok {
		return change, errors.New("PropertiesChanged interface name is not a string")
	}
	if name != iface {
		return change, nil
	}
	changed, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return change, errors.New("PropertiesChanged changed properties is not a{sv}")
	}
	invalidated, ok := body[2].([]string)
	if !ok {
		return change, errors.New("PropertiesChanged invalidated properties is not as")
	}

	if value, present := changed[activeProfileProperty]; present {
		raw, ok := value.Value().(string)
		if !ok {
			return change, fmt.Errorf("%s has type %s, want string", activeProfileProperty, value.Signature())
		}
		change.raw = raw
		change.changed = true
		return change, nil
	}
	change.invalidated = slices.Contains(invalidated, activeProfileProperty)
	return change, nil
}

// Close ends the event stream and closes the bus connection.
func (s *DBusSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			err = s.conn.Close()
		}
	})
	return err
}

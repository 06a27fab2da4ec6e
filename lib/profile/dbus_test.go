// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/bureau-foundation/eppd/lib/testutil"
)

const receiveTimeout = 5 * time.Second

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeObject answers Properties.Get with value, or fails every call
// with err when it is set.
type fakeObject struct {
	dbus.BusObject

	mu      sync.Mutex
	value   any
	err     error
	methods []string
	args    [][]any
}

func (o *fakeObject) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.methods = append(o.methods, method)
	o.args = append(o.args, args)
	if o.err != nil {
		return &dbus.Call{Err: o.err}
	}
	return &dbus.Call{Body: []any{dbus.MakeVariant(o.value)}}
}

func (o *fakeObject) set(value any, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.value = value
	o.err = err
}

func (o *fakeObject) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.methods)
}

func newTestSource(object dbus.BusObject) *DBusSource {
	config, _ := WellKnown(ServiceHadess)
	config.QueueSize = 1
	return newDBusSource(nil, object, config, discardLogger())
}

func changedSignal(raw string) *dbus.Signal {
	return &dbus.Signal{
		Path: HadessPath,
		Name: propertiesChangedSignal,
		Body: []any{HadessInterface, map[string]dbus.Variant{
			activeProfileProperty: dbus.MakeVariant(raw),
		}, []string{}},
	}
}

func invalidatedSignal() *dbus.Signal {
	return &dbus.Signal{
		Path: HadessPath,
		Name: propertiesChangedSignal,
		Body: []any{HadessInterface, map[string]dbus.Variant{}, []string{activeProfileProperty}},
	}
}

func TestCurrentReadsActiveProfile(t *testing.T) {
	object := &fakeObject{value: "balanced"}
	source := newTestSource(object)

	current, err := source.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current != Balanced {
		t.Errorf("Current = %v, want balanced", current)
	}
	if len(object.methods) != 1 || object.methods[0] != propertiesGet {
		t.Fatalf("calls = %v, want one %s", object.methods, propertiesGet)
	}
	if want := []any{HadessInterface, activeProfileProperty}; !slices.Equal(object.args[0], want) {
		t.Errorf("Get args = %v, want %v", object.args[0], want)
	}
}

func TestCurrentErrors(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		err       error
		wantParse bool
	}{
		{name: "unknown token", value: "turbo", wantParse: true},
		{name: "wrong type", value: uint32(2)},
		{name: "call failed", err: errors.New("name has no owner")},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			source := newTestSource(&fakeObject{value: test.value, err: test.err})
			_, err := source.Current(context.Background())
			if err == nil {
				t.Fatal("Current = nil error")
			}
			if errors.Is(err, ErrParse) != test.wantParse {
				t.Errorf("Current error = %v, ErrParse match = %v, want %v", err, errors.Is(err, ErrParse), test.wantParse)
			}
		})
	}
}

func TestTranslateDeliversInOrderWithoutDropping(t *testing.T) {
	source := newTestSource(&fakeObject{})
	signals := make(chan *dbus.Signal)
	events := make(chan Event, 1)
	go source.translate(signals, events)

	var want []string
	for i := 0; i < 12; i++ {
		want = append(want, All()[i%3].String())
	}
	fed := make(chan struct{})
	go func() {
		defer close(fed)
		for _, raw := range want {
			signals <- changedSignal(raw)
		}
		close(signals)
	}()

	// Nothing is read yet, so the translator must be holding the
	// backlog rather than discarding it.
	select {
	case <-fed:
		t.Fatal("translator accepted every signal with a full event queue")
	case <-time.After(50 * time.Millisecond):
	}

	var got []string
	for range want {
		event := testutil.RequireReceive(t, (<-chan Event)(events), receiveTimeout, "event %d", len(got))
		if event.Err != nil {
			t.Fatalf("event %d: %v", len(got), event.Err)
		}
		got = append(got, event.Profile.String())
	}
	if !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	testutil.RequireClosed(t, (<-chan Event)(events), receiveTimeout, "events after the signal channel closed")
}

func TestTranslateRereadsInvalidatedProfile(t *testing.T) {
	object := &fakeObject{value: "power-saver"}
	source := newTestSource(object)
	signals := make(chan *dbus.Signal, 2)
	events := make(chan Event, 2)
	go source.translate(signals, events)

	signals <- invalidatedSignal()
	event := testutil.RequireReceive(t, (<-chan Event)(events), receiveTimeout, "event after invalidation")
	if event.Err != nil || event.Profile != PowerSaver {
		t.Errorf("event = %+v, want power-saver", event)
	}
	if object.callCount() != 1 {
		t.Errorf("Properties.Get calls = %d, want 1", object.callCount())
	}

	object.set(nil, errors.New("service went away"))
	signals <- invalidatedSignal()
	event = testutil.RequireReceive(t, (<-chan Event)(events), receiveTimeout, "event after failed re-read")
	if event.Err == nil {
		t.Fatalf("event = %+v, want a read error", event)
	}
	if errors.Is(event.Err, ErrParse) {
		t.Errorf("read failure reported as a parse error: %v", event.Err)
	}
	close(signals)
}

func TestTranslateIgnoresUnrelatedSignals(t *testing.T) {
	object := &fakeObject{value: "balanced"}
	source := newTestSource(object)
	signals := make(chan *dbus.Signal, 8)
	events := make(chan Event, 8)
	go source.translate(signals, events)

	otherPath := changedSignal("power-saver")
	otherPath.Path = UPowerPath
	otherMember := changedSignal("power-saver")
	otherMember.Name = "org.freedesktop.DBus.NameOwnerChanged"
	otherInterface := changedSignal("power-saver")
	otherInterface.Body[0] = "org.freedesktop.UPower"
	malformed := changedSignal("power-saver")
	malformed.Body = malformed.Body[:1]
	otherProperty := &dbus.Signal{
		Path: HadessPath,
		Name: propertiesChangedSignal,
		Body: []any{HadessInterface, map[string]dbus.Variant{"PerformanceDegraded": dbus.MakeVariant("")}, []string{}},
	}

	for _, signal := range []*dbus.Signal{otherPath, otherMember, otherInterface, malformed, otherProperty, changedSignal("performance")} {
		signals <- signal
	}
	close(signals)

	event := testutil.RequireReceive(t, (<-chan Event)(events), receiveTimeout, "first relevant event")
	if event.Profile != Performance {
		t.Errorf("first event = %+v, want performance", event)
	}
	testutil.RequireClosed(t, (<-chan Event)(events), receiveTimeout, "events after the last signal")
	if object.callCount() != 0 {
		t.Errorf("Properties.Get calls = %d, want 0", object.callCount())
	}
}

func TestCloseEndsEventStream(t *testing.T) {
	source := newTestSource(&fakeObject{})
	signals := make(chan *dbus.Signal)
	events := make(chan Event, 1)
	go source.translate(signals, events)

	if err := source.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	testutil.RequireClosed(t, (<-chan Event)(events), receiveTimeout, "events after Close")
	if err := source.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestWellKnown(t *testing.T) {
	hadess, err := WellKnown(ServiceHadess)
	if err != nil {
		t.Fatalf("WellKnown(hadess): %v", err)
	}
	if hadess.Name != HadessName || hadess.Path != HadessPath || hadess.Interface != HadessInterface || hadess.Bus != "system" {
		t.Errorf("WellKnown(hadess) = %+v", hadess)
	}

	upower, err := WellKnown(ServiceUPower)
	if err != nil {
		t.Fatalf("WellKnown(upower): %v", err)
	}
	if upower.Name != UPowerName || upower.Path != UPowerPath || upower.Interface != UPowerInterface {
		t.Errorf("WellKnown(upower) = %+v", upower)
	}

	if _, err := WellKnown("tuned"); err == nil {
		t.Error("WellKnown(tuned) = nil error")
	}
}

func TestDialDBusRejectsInvalidPath(t *testing.T) {
	_, err := DialDBus(context.Background(), DBusConfig{Path: "net/hadess"}, discardLogger())
	if err == nil {
		t.Fatal("DialDBus with a relative path = nil error")
	}
}

func TestDialDBusUnknownBus(t *testing.T) {
	config, _ := WellKnown(ServiceHadess)
	config.Bus = "user"
	_, err := DialDBus(context.Background(), config, discardLogger())
	if err == nil {
		t.Fatal("DialDBus on an unknown bus = nil error")
	}
}

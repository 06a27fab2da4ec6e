// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/bureau-foundation/eppd/lib/testutil"
)

const busConfig = `<!DOCTYPE busconfig PUBLIC "-//freedesktop//DTD D-BUS Bus Configuration 1.0//EN"
 "http://www.freedesktop.org/standards/dbus/1.0/busconfig.dtd">
<busconfig>
  <type>session</type>
  <listen>unix:path=%s</listen>
  <policy context="default">
    <allow send_destination="*" eavesdrop="true"/>
    <allow eavesdrop="true"/>
    <allow own="*"/>
  </policy>
</busconfig>
`

// startSessionBus runs a private dbus-daemon and points the session
// bus address at it for the rest of the test.
func startSessionBus(t *testing.T) string {
	t.Helper()
	daemonPath, err := exec.LookPath("dbus-daemon")
	if err != nil {
		t.Skip("dbus-daemon not installed")
	}

	directory := t.TempDir()
	configPath := filepath.Join(directory, "bus.conf")
	config := fmt.Sprintf(busConfig, filepath.Join(directory, "bus"))
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	cmd := exec.Command(daemonPath, "--config-file="+configPath, "--nofork", "--print-address")
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting dbus-daemon: %v", err)
	}
	t.Cleanup(func() {
		cmd.Process.Kill()
		cmd.Wait()
	})

	address, err := bufio.NewReader(stdout).ReadString('\n')
	if err != nil {
		t.Fatalf("reading dbus-daemon address: %v (stderr: %s)", err, stderr.String())
	}
	address = strings.TrimSpace(address)
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", address)
	return address
}

// profileService owns the net.hadess name on the test bus and answers
// Properties.Get for ActiveProfile.
type profileService struct {
	conn *dbus.Conn

	mu     sync.Mutex
	active string
}

func (s *profileService) Get(iface, property string) (dbus.Variant, *dbus.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if iface != HadessInterface || property != activeProfileProperty {
		return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("no property %s.%s", iface, property))
	}
	return dbus.MakeVariant(s.active), nil
}

func (s *profileService) setActive(active string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *profileService) emit(t *testing.T, changed map[string]dbus.Variant, invalidated []string) {
	t.Helper()
	if err := s.conn.Emit(HadessPath, propertiesChangedSignal, HadessInterface, changed, invalidated); err != nil {
		t.Fatalf("emitting PropertiesChanged: %v", err)
	}
}

func startProfileService(t *testing.T, address, active string) *profileService {
	t.Helper()
	conn, err := dbus.Connect(address)
	if err != nil {
		t.Fatalf("connecting profile service: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	service := &profileService{conn: conn, active: active}
	if err := conn.Export(service, HadessPath, propertiesInterface); err != nil {
		t.Fatalf("exporting profile service: %v", err)
	}
	reply, err := conn.RequestName(HadessName, dbus.NameFlagDoNotQueue)
	if err != nil || reply != dbus.RequestNameReplyPrimaryOwner {
		t.Fatalf("requesting %s: reply %v, error %v", HadessName, reply, err)
	}
	return service
}

func TestDBusSourceFollowsProfileService(t *testing.T) {
	address := startSessionBus(t)
	service := startProfileService(t, address, "balanced")

	config, _ := WellKnown(ServiceHadess)
	config.Bus = "session"
	config.QueueSize = 4

	// The daemon cancels the dial context as soon as the dial returns.
	dialCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	source, err := DialDBus(dialCtx, config, discardLogger())
	cancel()
	if err != nil {
		t.Fatalf("DialDBus: %v", err)
	}
	t.Cleanup(func() { source.Close() })

	ctx := context.Background()
	events, err := source.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe after the dial context ended: %v", err)
	}
	if !source.conn.Connected() {
		t.Fatal("connection closed when the dial context ended")
	}
	if _, err := source.Subscribe(ctx); !errors.Is(err, ErrAlreadySubscribed) {
		t.Errorf("second Subscribe error = %v, want ErrAlreadySubscribed", err)
	}

	current, err := source.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current != Balanced {
		t.Errorf("Current = %v, want balanced", current)
	}

	service.setActive("performance")
	service.emit(t, map[string]dbus.Variant{activeProfileProperty: dbus.MakeVariant("performance")}, []string{})
	event := testutil.RequireReceive(t, events, receiveTimeout, "event for the changed profile")
	if event.Err != nil || event.Profile != Performance {
		t.Errorf("event = %+v, want performance", event)
	}

	service.setActive("power-saver")
	service.emit(t, map[string]dbus.Variant{}, []string{activeProfileProperty})
	event = testutil.RequireReceive(t, events, receiveTimeout, "event for the invalidated profile")
	if event.Err != nil || event.Profile != PowerSaver {
		t.Errorf("event = %+v, want power-saver", event)
	}

	if err := source.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	testutil.RequireClosed(t, events, receiveTimeout, "events after Close")
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the file [Load] reads.
const EnvironmentVariable = "EPPD_CONFIG"

// Config is the complete eppd configuration.
type Config struct {
	// SysfsRoot is where sysfs is mounted. Default: /sys
	SysfsRoot string `yaml:"sysfs_root"`

	// Log configures the process logger.
	Log LogConfig `yaml:"log"`

	// DBus locates power-profiles-daemon.
	DBus DBusConfig `yaml:"dbus"`

	// StartupTimeout bounds connecting to the bus and subscribing.
	// Default: 10s
	StartupTimeout time.Duration `yaml:"startup_timeout"`

	// RetryInterval is how long to wait before re-applying a profile
	// that left some CPU out of line. Zero disables retries.
	// Default: 30s
	RetryInterval time.Duration `yaml:"retry_interval"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level"`

	// Format is one of auto, json, text. auto picks text on a terminal
	// and JSON otherwise. Default: auto
	Format string `yaml:"format"`
}

// DBusConfig locates power-profiles-daemon on the bus.
type DBusConfig struct {
	// Bus is system or session. Default: system
	Bus string `yaml:"bus"`

	// Service selects the well-known identity of power-profiles-daemon:
	// hadess (owned by every release) or upower (0.20 and later).
	// Default: hadess
	Service string `yaml:"service"`

	// Name, Path, and Interface override the service's coordinates
	// when set.
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	Interface string `yaml:"interface"`

	// QueueSize bounds the notification queue. Default: 16
	QueueSize int `yaml:"queue_size"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address to serve /metrics on, such as
	// 127.0.0.1:9105. Empty disables the endpoint.
	Listen string `yaml:"listen"`
}

// Default returns the configuration of a stock system.
func Default() *Config {
	return &Config{
		SysfsRoot: "/sys",
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		DBus: DBusConfig{
			Bus:       "system",
			Service:   "hadess",
			QueueSize: 16,
		},
		StartupTimeout: 10 * time.Second,
		RetryInterval:  30 * time.Second,
	}
}

// Load loads the file named by EPPD_CONFIG, or returns [Default] when
// the variable is unset or empty.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads path over [Default]. Keys absent from the file keep
// their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// An empty file decodes to io.EOF and leaves the defaults.
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "json", "text"}
	buses      = []string{"system", "session"}
	services   = []string{"hadess", "upower"}
)

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.SysfsRoot == "" {
		errs = append(errs, errors.New("sysfs_root is required"))
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q must be one of: %v", c.Log.Level, logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format %q must be one of: %v", c.Log.Format, logFormats))
	}

	if !slices.Contains(buses, c.DBus.Bus) {
		errs = append(errs, fmt.Errorf("dbus.bus %q must be one of: %v", c.DBus.Bus, buses))
	}
	if !slices.Contains(services, c.DBus.Service) {
		errs = append(errs, fmt.Errorf("dbus.service %q must be one of: %v", c.DBus.Service, services))
	}
	if c.DBus.Path != "" && c.DBus.Path[0] != '/' {
		errs = append(errs, fmt.Errorf("dbus.path %q must be an absolute object path", c.DBus.Path))
	}
	if c.DBus.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("dbus.queue_size must be positive, got %d", c.DBus.QueueSize))
	}

	if c.StartupTimeout <= 0 {
		errs = append(errs, fmt.Errorf("startup_timeout must be positive, got %s", c.StartupTimeout))
	}
	if c.RetryInterval < 0 {
		errs = append(errs, fmt.Errorf("retry_interval must not be negative, got %s", c.RetryInterval))
	}

	if c.Metrics.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
			errs = append(errs, fmt.Errorf("metrics.listen: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Eppd keeps the cpufreq governor and energy/performance preference of
// every CPU in line with the power profile selected through
// power-profiles-daemon, on machines driven by amd-pstate in EPP mode.
//
// On startup:
//  1. Loads configuration (--config, EPPD_CONFIG, or built-in defaults).
//  2. Verifies amd-pstate is active and every CPU uses amd-pstate-epp.
//     Nothing is written on a machine that fails this check.
//  3. Connects to the bus and subscribes to ActiveProfile changes.
//  4. Applies the current profile, then every change as it arrives.
//
// With --info it prints the platform state and exits without writing.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/eppd/lib/clock"
	"github.com/bureau-foundation/eppd/lib/config"
	"github.com/bureau-foundation/eppd/lib/cpufreq"
	"github.com/bureau-foundation/eppd/lib/metrics"
	"github.com/bureau-foundation/eppd/lib/platform"
	"github.com/bureau-foundation/eppd/lib/process"
	"github.com/bureau-foundation/eppd/lib/profile"
	"github.com/bureau-foundation/eppd/lib/reconcile"
	"github.com/bureau-foundation/eppd/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

// options holds the command-line flags. Flags that are set override
// the corresponding configuration keys.
type options struct {
	configPath    string
	info          bool
	showVersion   bool
	logLevel      string
	logFormat     string
	metricsListen string
}

func parseFlags(arguments []string) (*options, *pflag.FlagSet, error) {
	var opts options
	flagSet := pflag.NewFlagSet("eppd", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to the YAML configuration file (default: $"+config.EnvironmentVariable+", else built-in defaults)")
	flagSet.BoolVar(&opts.info, "info", false, "print P-State status, power profile, and per-CPU policy, then exit")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn, or error (overrides log.level)")
	flagSet.StringVar(&opts.logFormat, "log-format", "", "auto, json, or text (overrides log.format)")
	flagSet.StringVar(&opts.metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address (overrides metrics.listen)")
	if err := flagSet.Parse(arguments); err != nil {
		return nil, nil, err
	}
	if flagSet.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	return &opts, flagSet, nil
}

// loadConfig resolves the configuration and applies flag overrides.
func loadConfig(opts *options, flagSet *pflag.FlagSet) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flagSet.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flagSet.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if flagSet.Changed("metrics-listen") {
		cfg.Metrics.Listen = opts.metricsListen
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run() error {
	opts, flagSet, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if opts.showVersion {
		fmt.Printf("eppd %s\n", version.Full())
		return nil
	}

	cfg, err := loadConfig(opts, flagSet)
	if err != nil {
		return err
	}

	logger, err := newLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sysfs := cpufreq.New(cfg.SysfsRoot)
	dbusConfig, err := dbusConfigFor(cfg.DBus)
	if err != nil {
		return err
	}

	if opts.info {
		return runInfo(ctx, cfg, sysfs, dbusConfig, logger)
	}

	dial := func(ctx context.Context) (closableSource, error) {
		source, err := profile.DialDBus(ctx, dbusConfig, logger)
		if err != nil {
			return nil, err
		}
		return source, nil
	}
	return runDaemon(ctx, cfg, sysfs, dial, clock.Real(), logger)
}

// dbusConfigFor resolves the configured service to bus coordinates.
// Explicit name, path, and interface keys override the service's.
func dbusConfigFor(cfg config.DBusConfig) (profile.DBusConfig, error) {
	dbusConfig, err := profile.WellKnown(cfg.Service)
	if err != nil {
		return profile.DBusConfig{}, err
	}
	dbusConfig.Bus = cfg.Bus
	dbusConfig.QueueSize = cfg.QueueSize
	if cfg.Name != "" {
		dbusConfig.Name = cfg.Name
	}
	if cfg.Path != "" {
		dbusConfig.Path = cfg.Path
	}
	if cfg.Interface != "" {
		dbusConfig.Interface = cfg.Interface
	}
	return dbusConfig, nil
}

// closableSource is a profile.Source holding a connection.
type closableSource interface {
	profile.Source
	Close() error
}

// runDaemon verifies the platform, connects to the profile source, and
// runs the daemon (plus the metrics server, if configured) until ctx
// is done or either fails. Nothing is written to sysfs unless the
// platform check passes.
func runDaemon(ctx context.Context, cfg *config.Config, sysfs *cpufreq.Sysfs, dial func(context.Context) (closableSource, error), clk clock.Clock, logger *slog.Logger) error {
	if err := platform.Verify(sysfs); err != nil {
		return err
	}
	logger.Info("platform verified", "sysfs_root", cfg.SysfsRoot, "version", version.Short())

	dialCtx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	source, err := dial(dialCtx)
	cancel()
	if err != nil {
		return err
	}
	defer source.Close()

	registry := metrics.New()
	daemon := &Daemon{
		source:         source,
		engine:         reconcile.New(sysfs, logger, registry),
		metrics:        registry,
		clock:          clk,
		logger:         logger,
		startupTimeout: cfg.StartupTimeout,
		retryInterval:  cfg.RetryInterval,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if cfg.Metrics.Listen != "" {
		if err := startMetricsServer(groupCtx, group, cfg.Metrics.Listen, registry, logger); err != nil {
			return err
		}
	}
	group.Go(func() error {
		return daemon.Run(groupCtx)
	})
	return group.Wait()
}

// runInfo prints the platform report. A bus that cannot be reached
// is reported in the output rather than failing the command.
func runInfo(ctx context.Context, cfg *config.Config, sysfs *cpufreq.Sysfs, dbusConfig profile.DBusConfig, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	defer cancel()

	var source profile.Source
	dbusSource, err := profile.DialDBus(ctx, dbusConfig, logger)
	if err != nil {
		logger.Warn("power profile unavailable", "error", err)
	} else {
		defer dbusSource.Close()
		source = dbusSource
	}
	return printInfo(ctx, os.Stdout, sysfs, source)
}

// startMetricsServer binds listen and serves /metrics until ctx is
// done. Binding happens before return so an unusable address fails
// startup.
func startMetricsServer(ctx context.Context, group *errgroup.Group, listen string, registry *metrics.Metrics, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	group.Go(func() error {
		logger.Info("serving metrics", "address", listener.Addr().String())
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return nil
}

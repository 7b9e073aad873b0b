package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sessionkit/internal/config"
	"github.com/felixgeelhaar/sessionkit/internal/credentials"
	"github.com/felixgeelhaar/sessionkit/internal/history"
	"github.com/felixgeelhaar/sessionkit/internal/log"
	"github.com/felixgeelhaar/sessionkit/internal/metrics"
	"github.com/felixgeelhaar/sessionkit/internal/platform"
	"github.com/felixgeelhaar/sessionkit/internal/telemetry"
	"github.com/felixgeelhaar/sessionkit/internal/version"
	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

const telemetryShutdownTimeout = 5 * time.Second

// app holds everything a session command needs.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	history  *history.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	ctrl     *session.Controller

	closers []func() error
}

// getConfigPath returns the --config flag or the default path.
func getConfigPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}

// loadConfig loads the configuration file and environment overrides.
func loadConfig() (*config.Config, string, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, ConfigLoadError(path, err)
	}
	return cfg, path, nil
}

// newLogger builds the logger from cfg and the logging flags. Logs go to the
// command's error stream.
func newLogger(cmd *cobra.Command, cfg *config.Config) *log.Logger {
	level, format := cfg.Logging.Level, cfg.Logging.Format
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}

	lcfg := log.FromSettings(level, format, debug)
	lcfg.AddSource = debug
	lcfg.Output = log.NewOutput(cmd.ErrOrStderr())
	lcfg.ServiceName = "sessionkit"
	lcfg.ServiceVersion = version.GetInfo().Version
	return log.New(lcfg)
}

// newApp wires configuration, credential storage, the HTTP transport,
// tracing, metrics and history into a session controller.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: newLogger(cmd, cfg)}
	log.SetDefaultLogger(a.logger)

	store, closeStore, err := credentials.Open(cfg.CredentialsOptions())
	if err != nil {
		return nil, CredentialStoreError(cfg.Credentials.Backend, err)
	}
	a.closers = append(a.closers, closeStore)

	info := version.GetInfo()
	client := platform.NewClient(cfg.API.URL,
		platform.WithPrefix(cfg.API.Prefix),
		platform.WithTimeout(cfg.API.Timeout),
		platform.WithUserAgent(info.UserAgent()),
		platform.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
	)
	var transport session.Transport = platform.NewTransport(client, store,
		platform.WithTransportLogger(a.logger.Slog()))

	if cfg.Telemetry.Enabled {
		tcfg := telemetry.ExporterConfig(cfg.Telemetry.Endpoint, cfg.Telemetry.Insecure)
		tcfg.ServiceVersion = info.Version
		shutdown, err := telemetry.InitProvider(cmd.Context(), tcfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
			defer cancel()
			return shutdown(ctx)
		})
		transport = telemetry.NewTracingTransport(transport, nil)
	}

	a.registry, a.metrics = metrics.NewRegistry()

	opts := []session.Option{
		session.WithLogger(a.logger.Slog()),
		session.WithObserver(a.metrics),
		session.WithOperationTimeout(cfg.Session.OperationTimeout),
	}

	if cfg.History.Enabled {
		hs, err := history.Open(cfg.History.Path)
		if err != nil {
			a.logger.Warn("session history unavailable", "path", cfg.History.Path, "error", err)
		} else {
			a.history = hs
			a.closers = append(a.closers, hs.Close)
			opts = append(opts, session.WithEventHandler(history.NewRecorder(hs, a.logger.Slog())))
		}
	}

	ctrl, err := session.New(transport, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	ctrl.Subscribe(a.metrics.ObserveSnapshot)
	a.ctrl = ctrl

	a.logger.Debug("session controller ready",
		"api", cfg.API.URL,
		"credentials", cfg.Credentials.Backend,
		"history", a.history != nil,
		"telemetry", cfg.Telemetry.Enabled,
	)
	return a, nil
}

// restore loads the stored session and logs what was found.
func (a *app) restore(ctx context.Context) session.Snapshot {
	snap := a.ctrl.Restore(ctx)
	if id, ok := snap.Session.Identity(); ok {
		a.logger.Debug("restored session", "user_id", id.ID, "onboarding", snap.Session.Onboarding().String())
	} else {
		a.logger.Debug("no stored session")
	}
	return snap
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

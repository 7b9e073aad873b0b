package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sessionkit/internal/metrics"
	"github.com/felixgeelhaar/sessionkit/internal/tui"
)

var authWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the session live in the terminal",
	Long: `Show the session and every transition as it happens.

Press l to sign out and q to quit. With --metrics-addr the session metrics
are served for Prometheus while the view is open.`,
	Args: cobra.NoArgs,
	RunE: runAuthWatch,
}

var watchMetricsAddr string

func init() {
	authWatchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (default from config)")

	authCmd.AddCommand(authWatchCmd)
}

func runAuthWatch(cmd *cobra.Command, args []string) error {
	if !tui.IsInteractive() {
		return NewErrorWithSuggestions("auth watch needs an interactive terminal", tui.ErrNotInteractive,
			"Show the session once: sessionkit auth status",
		)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	addr := watchMetricsAddr
	if addr == "" {
		addr = a.cfg.Metrics.Addr
	}
	if addr != "" {
		stop, err := serveMetrics(addr, a)
		if err != nil {
			return err
		}
		defer stop()
	}

	// the view shows the restore while it runs
	go a.restore(ctx)

	return tui.Watch(ctx, a.ctrl, tui.Actions{
		Logout: func() error {
			snap, err := a.ctrl.Logout(ctx)
			if err != nil {
				return err
			}
			if snap.LastError != nil {
				return snap.LastError
			}
			return nil
		},
	})
}

// serveMetrics starts the metrics endpoint and returns a function stopping it.
func serveMetrics(addr string, a *app) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, NewErrorWithSuggestions("Failed to start the metrics endpoint", err,
			"Pick a free address: --metrics-addr 127.0.0.1:9464",
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics endpoint stopped", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sessionkit/internal/credentials"
	"github.com/felixgeelhaar/sessionkit/internal/health"
	"github.com/felixgeelhaar/sessionkit/internal/history"
	"github.com/felixgeelhaar/sessionkit/internal/platform"
	"github.com/felixgeelhaar/sessionkit/internal/tui"
	"github.com/felixgeelhaar/sessionkit/internal/version"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the backend, credentials store and history",
	Long: `Run diagnostics for everything a session depends on.

Checks include:
  • Auth backend reachability
  • Credentials store access
  • History database access (when enabled)`,
	Example: `  sessionkit doctor
  sessionkit doctor --json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var (
	doctorJSON    bool
	doctorTimeout time.Duration
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output the report as JSON")
	doctorCmd.Flags().DurationVar(&doctorTimeout, "timeout", health.DefaultTimeout, "timeout per check")

	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	manager := health.NewManager().WithTimeout(doctorTimeout)

	client := platform.NewClient(cfg.API.URL,
		platform.WithPrefix(cfg.API.Prefix),
		platform.WithTimeout(cfg.API.Timeout),
		platform.WithUserAgent(version.GetInfo().UserAgent()),
	)
	manager.AddChecker(health.NewBackendChecker(client, cfg.API.URL))

	store, closeStore, err := credentials.Open(cfg.CredentialsOptions())
	if err != nil {
		return CredentialStoreError(cfg.Credentials.Backend, err)
	}
	defer closeStore()
	manager.AddChecker(health.NewCredentialsChecker(store, cfg.Credentials.Backend))

	if cfg.History.Enabled {
		hs, err := history.Open(cfg.History.Path)
		if err != nil {
			manager.AddChecker(unavailableChecker{name: "history-db", err: err})
		} else {
			defer hs.Close()
			manager.AddChecker(health.NewHistoryChecker(hs))
		}
	}

	report := manager.Run(cmd.Context())
	out := cmd.OutOrStdout()

	if doctorJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		printReport(out, report, tui.PlainStyles())
	}

	if report.Status == health.StatusUnhealthy {
		return NewErrorWithSuggestions("Some checks failed", nil,
			"Check the backend URL: sessionkit config get api.url",
			"Check the credentials section: sessionkit config get credentials",
		)
	}
	return nil
}

func printReport(out io.Writer, report health.Report, styles tui.Styles) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "%-18s %s %s\n", check.Name, statusBadge(check.Status, styles), check.Message)
		if errMsg := check.Err(); errMsg != "" {
			fmt.Fprintf(out, "%-18s %s\n", "", styles.Muted.Render(errMsg))
		}
	}
	fmt.Fprintf(out, "\nOverall: %s\n", statusBadge(report.Status, styles))
}

func statusBadge(status health.Status, styles tui.Styles) string {
	switch status {
	case health.StatusHealthy:
		return styles.Success.Render("✓ " + status.String())
	case health.StatusDegraded:
		return styles.Warning.Render("! " + status.String())
	default:
		return styles.Error.Render("✗ " + status.String())
	}
}

// unavailableChecker reports a dependency that could not be opened.
type unavailableChecker struct {
	name string
	err  error
}

func (c unavailableChecker) Name() string { return c.name }

func (c unavailableChecker) Check(ctx context.Context) *health.Result {
	return health.Degraded("could not open").WithError(c.err)
}

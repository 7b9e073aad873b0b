package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sessionkit/internal/history"
)

var authHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent session transitions",
	Long: `List the most recent logins, registrations, logouts and restores
recorded on this machine, newest first.`,
	Args: cobra.NoArgs,
	RunE: runAuthHistory,
}

var (
	historyLimit int
	historyJSON  bool
	historyPrune int
)

func init() {
	authHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", history.DefaultLimit, "number of entries to show")
	authHistoryCmd.Flags().BoolVar(&historyJSON, "json", false, "output entries as JSON")
	authHistoryCmd.Flags().IntVar(&historyPrune, "prune", 0, "delete all but the newest N entries")

	authCmd.AddCommand(authHistoryCmd)
}

func runAuthHistory(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return NewErrorWithSuggestions("Session history is disabled", nil,
			"Enable it: set history.enabled to true in the config file",
		)
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if historyPrune > 0 {
		removed, err := store.Prune(ctx, historyPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d entries\n", removed)
		return nil
	}

	entries, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		if entries == nil {
			entries = []history.Entry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No session history yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tOPERATION\tOUTCOME\tUSER\tDETAIL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.RecordedAt.Local().Format(time.DateTime),
			e.Operation,
			e.Outcome,
			historyUser(e),
			historyDetail(e),
		)
	}
	return w.Flush()
}

func historyUser(e history.Entry) string {
	switch {
	case e.Email != "":
		return e.Email
	case e.UserID != "":
		return e.UserID
	default:
		return "-"
	}
}

func historyDetail(e history.Entry) string {
	if e.ErrorKind != "" {
		return fmt.Sprintf("%s: %s", e.ErrorKind, e.ErrorMessage)
	}
	return e.Elapsed.Round(time.Millisecond).String()
}

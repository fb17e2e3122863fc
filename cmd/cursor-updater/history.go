package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/smykla-skalski/cursor-updater/internal/history"
)

const defaultHistoryLimit = 20

var (
	historyLimit     int
	historyFailed    bool
	historyOperation string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past updater runs",
	Long: `Show past updater runs, oldest first.

Runs are recorded in $XDG_STATE_HOME/cursor-updater/history.jsonl.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", defaultHistoryLimit, "Show at most this many recent runs (0 = all)")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "Only show failed runs")
	historyCmd.Flags().StringVar(&historyOperation, "operation", "", "Only show one operation: update, check, rollback or prune")
}

func runHistory(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	filter := history.Filter{Operation: historyOperation, Limit: historyLimit}

	if historyFailed {
		success := false
		filter.Success = &success
	}

	entries, err := a.recorder.Query(filter)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		a.printf("No runs recorded\n")

		return nil
	}

	rows := make([][]string, 0, len(entries))

	for _, e := range entries {
		status := a.theme.Status("ok", e.Outcome)
		if !e.Success {
			status = a.theme.Status("error", e.Outcome)
		}

		rows = append(rows, []string{
			e.Timestamp.Local().Format(time.DateTime),
			e.Operation,
			status,
			versionChange(e),
			e.Error,
		})
	}

	a.printf("%s\n", renderTable([]string{"When", "Operation", "Outcome", "Version", "Error"}, rows))

	return nil
}

func versionChange(e history.Entry) string {
	switch {
	case e.From == "" && e.To == "":
		return ""
	case e.From == "":
		return e.To
	default:
		return e.From + " -> " + e.To
	}
}

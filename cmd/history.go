package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/inovacc/orgclone/internal/application"
	"github.com/inovacc/orgclone/internal/store"
	"github.com/spf13/cobra"
)

const shortIDLen = 8

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show previous batch runs",
		Long: `Show previous batch runs, newest first.

With a run ID (or a unique prefix of one), show every repository of that run
with its outcome.

Examples:
  orgclone history
  orgclone history --limit 50
  orgclone history 3f2a9c1d`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to show (0 for all)")

	return cmd
}

// openHistory opens the run history database in the application directory
func openHistory() (store.Store, error) {
	path, err := application.HistoryPath()
	if err != nil {
		return nil, err
	}

	db, err := store.NewBolt(path)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	db, err := openHistory()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		run, err := db.GetRun(args[0])
		if err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				return fmt.Errorf("no run matches %q", args[0])
			}

			return err
		}

		printRun(out, run)

		return nil
	}

	runs, err := db.ListRuns(limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	printRuns(out, runs)

	return nil
}

func printRuns(w io.Writer, runs []store.Run) {
	headers := []string{"ID", "Started", "Duration", "Root", "Transport", "Cloned", "Skipped", "Failed"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			truncateString(run.ID, shortIDLen),
			run.StartedAt.Local().Format(time.DateTime),
			run.Duration.Round(time.Millisecond).String(),
			truncateString(run.Root, 40),
			run.Transport,
			strconv.Itoa(run.Succeeded),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
		})
	}

	_, _ = fmt.Fprintln(w, renderTable(headers, rows, aligns))
}

func printRun(w io.Writer, run *store.Run) {
	_, _ = fmt.Fprintf(w, "Run:       %s\n", run.ID)
	_, _ = fmt.Fprintf(w, "Started:   %s\n", run.StartedAt.Local().Format(time.DateTime))
	_, _ = fmt.Fprintf(w, "Duration:  %s\n", run.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "Root:      %s\n", run.Root)
	_, _ = fmt.Fprintf(w, "Transport: %s (parallel: %d)\n", run.Transport, run.Parallel)
	_, _ = fmt.Fprintf(w, "Outcomes:  %d cloned, %d skipped, %d failed\n\n", run.Succeeded, run.Skipped, run.Failed)

	if len(run.Outcomes) == 0 {
		return
	}

	headers := []string{"Status", "URL", "Folder", "Detail"}

	rows := make([][]string, 0, len(run.Outcomes))
	for _, o := range run.Outcomes {
		detail := o.Reason
		if o.Error != "" {
			detail = o.Error
		}

		rows = append(rows, []string{o.Status, o.URL, o.Folder, truncateString(detail, 60)})
	}

	_, _ = fmt.Fprintln(w, renderTable(headers, rows, nil))
}

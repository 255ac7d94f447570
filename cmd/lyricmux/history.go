package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lyricmux/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(ctx.configValue())
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintf(out, "No runs recorded in %s\n", store.Path())
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format(historyTimeLayout),
					filepath.Base(run.AudioDir),
					fmt.Sprintf("%d", run.Processed),
					fmt.Sprintf("%d", run.Skipped),
					fmt.Sprintf("%d", run.Failed),
					yesNo(run.DryRun),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Audio", "Processed", "Skipped", "Failed", "Dry run"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-file outcomes for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(ctx.configValue())
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			runID := strings.TrimSpace(args[0])
			run, err := store.GetRun(cmd.Context(), runID)
			if err != nil {
				return fmt.Errorf("load run: %w", err)
			}
			if run == nil {
				return fmt.Errorf("run %s not found", runID)
			}
			files, err := store.ListFiles(cmd.Context(), runID)
			if err != nil {
				return fmt.Errorf("list run files: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:       %s\n", run.ID)
			fmt.Fprintf(out, "Started:   %s\n", run.StartedAt.Local().Format(historyTimeLayout))
			if run.FinishedAt.IsZero() {
				fmt.Fprintln(out, "Finished:  (not recorded)")
			} else {
				fmt.Fprintf(out, "Finished:  %s\n", run.FinishedAt.Local().Format(historyTimeLayout))
			}
			fmt.Fprintf(out, "Audio:     %s\n", run.AudioDir)
			fmt.Fprintf(out, "Lyrics:    %s\n", run.LyricsDir)
			if run.CoverDir != "" {
				fmt.Fprintf(out, "Covers:    %s\n", run.CoverDir)
			} else {
				fmt.Fprintln(out, "Covers:    (disabled)")
			}
			fmt.Fprintf(out, "Encoding:  %s\n", run.Encoding)
			fmt.Fprintf(out, "Dry run:   %s\n", yesNo(run.DryRun))
			if run.AccelRequested {
				fmt.Fprintf(out, "Accel:     %s\n", run.AccelDetail)
			}
			fmt.Fprintf(out, "Totals:    %d processed, %d skipped, %d failed of %d\n",
				run.Processed, run.Skipped, run.Failed, run.Total)

			if len(files) == 0 {
				fmt.Fprintln(out, "No file records")
				return nil
			}

			rows := make([][]string, 0, len(files))
			for _, rec := range files {
				rows = append(rows, []string{
					filepath.Base(rec.Path),
					string(rec.Outcome),
					rec.Variant,
					rec.Detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Outcome", "Variant", "Detail"},
				rows,
				nil,
			))
			return nil
		},
	}
}

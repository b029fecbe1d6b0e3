package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"imgutil/internal/batch"
	"imgutil/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the journal of past batch runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))

	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit     int
		operation string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := history.Filter{Limit: limit}
			if strings.TrimSpace(operation) != "" {
				op, err := batch.ParseOperation(operation)
				if err != nil {
					return err
				}
				filter.Operation = op
			}
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if jsonOut {
					views := make([]runView, 0, len(runs))
					for _, run := range runs {
						views = append(views, newRunView(run))
					}
					return writeJSON(cmd, views)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Started", "Operation", "Files", "OK", "Failed", "Duration", "Source"},
					buildRunRows(runs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().StringVarP(&operation, "operation", "o", "", "Only show rename, resize, or convert runs")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one run with its failed files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, newRunView(run))
				}
				out := cmd.OutOrStdout()
				rows := [][]string{
					{"ID", run.ID},
					{"Operation", string(run.Operation)},
					{"Source", run.SourceDir},
					{"Destination", run.DestinationDir},
					{"Started", run.StartedAt.Local().Format("2006-01-02 15:04:05")},
					{"Duration", run.Duration().Round(time.Millisecond).String()},
					{"Files", strconv.Itoa(run.Total)},
					{"Succeeded", strconv.Itoa(run.Succeeded)},
					{"Failed", strconv.Itoa(run.Failed)},
					{"Skipped", strconv.Itoa(run.Skipped)},
					{"Cancelled", yesNo(run.Cancelled)},
					{"Read", humanBytes(run.InputBytes)},
					{"Written", humanBytes(run.OutputBytes)},
					{"Result", run.Message},
				}
				fmt.Fprintln(out, renderKeyValue("Run", rows, alignLeft))
				if len(run.Failures) > 0 {
					failRows := make([][]string, 0, len(run.Failures))
					for _, f := range run.Failures {
						failRows = append(failRows, []string{strconv.Itoa(f.Index + 1), filepath.Base(f.Source), f.Error})
					}
					fmt.Fprintln(out, renderTable([]string{"#", "File", "Error"}, failRows, []columnAlignment{alignRight, alignLeft, alignLeft}))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a given age",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs older than %s\n", removed, formatAge(olderThan))
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age threshold, e.g. 720h")
	return cmd
}

func buildRunRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			formatRunOperation(run),
			strconv.Itoa(run.Total),
			strconv.Itoa(run.Succeeded),
			strconv.Itoa(run.Failed),
			run.Duration().Round(time.Second).String(),
			run.SourceDir,
		})
	}
	return rows
}

func formatRunOperation(run history.Run) string {
	label := string(run.Operation)
	if run.Cancelled {
		label += " (cancelled)"
	}
	return label
}

func formatAge(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	return fmt.Sprintf("%dd", days)
}

type runView struct {
	ID          string        `json:"id"`
	Operation   string        `json:"operation"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Total       int           `json:"total"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	Cancelled   bool          `json:"cancelled"`
	InputBytes  int64         `json:"input_bytes"`
	OutputBytes int64         `json:"output_bytes"`
	Message     string        `json:"message"`
	Failures    []failureView `json:"failures,omitempty"`
}

type failureView struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
	Error  string `json:"error"`
}

func newRunView(run history.Run) runView {
	view := runView{
		ID:          run.ID,
		Operation:   string(run.Operation),
		Source:      run.SourceDir,
		Destination: run.DestinationDir,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		Total:       run.Total,
		Succeeded:   run.Succeeded,
		Failed:      run.Failed,
		Skipped:     run.Skipped,
		Cancelled:   run.Cancelled,
		InputBytes:  run.InputBytes,
		OutputBytes: run.OutputBytes,
		Message:     run.Message,
	}
	for _, f := range run.Failures {
		view.Failures = append(view.Failures, failureView{Index: f.Index, Source: f.Source, Error: f.Error})
	}
	return view
}

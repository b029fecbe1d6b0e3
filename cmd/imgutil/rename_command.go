package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"imgutil/internal/batch"
	"imgutil/internal/config"
	"imgutil/internal/rename"
	"imgutil/internal/textutil"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var (
		flags    batchFlags
		pattern  string
		listPath string
		start    int
		pad      int
		caseName string
		dryRun   bool
		verify   bool
	)

	cmd := &cobra.Command{
		Use:   "rename SRC DEST",
		Short: "Copy or move files into DEST under new names",
		Long: `Rename every image in SRC into DEST.

Names come from --pattern or from --list. A pattern may use {n} (sequence
number), {name} (original name), {parent} (source folder), and {date} (EXIF
date taken, falling back to modification time). A pattern without tokens is
numbered as <pattern>_<n>. A list file holds one name per line, or
"old|new" pairs; it must have exactly one line per source file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if pattern != "" && listPath != "" {
				return fmt.Errorf("--pattern and --list are mutually exclusive")
			}

			opts := rename.Options{
				Pattern:    pattern,
				StartIndex: cfg.Rename.StartIndex,
				PadWidth:   cfg.Rename.PadWidth,
			}
			if cmd.Flags().Changed("start") {
				opts.StartIndex = start
			}
			if cmd.Flags().Changed("pad") {
				opts.PadWidth = pad
			}
			if !cmd.Flags().Changed("case") {
				caseName = cfg.Rename.Case
			}
			if opts.Case, err = textutil.ParseCase(caseName); err != nil {
				return err
			}
			if listPath != "" {
				path, err := config.ExpandPath(listPath)
				if err != nil {
					return fmt.Errorf("resolve list path: %w", err)
				}
				if opts.Entries, err = rename.LoadList(path); err != nil {
					return err
				}
			} else {
				if opts.Pattern == "" {
					opts.Pattern = rename.DefaultPattern
				}
				if err := rename.ValidatePattern(opts.Pattern); err != nil {
					return err
				}
			}

			req := batchRequest{
				operation: batch.OperationRename,
				sourceDir: args[0],
				destDir:   args[1],
				distinct:  true,
				flags:     &flags,
				build: func(_ context.Context, items []batch.Item, dest string, _ *slog.Logger) (batch.Job, error) {
					plan, err := rename.BuildPlan(items, dest, opts)
					if err != nil {
						return nil, err
					}
					return plan.Job(rename.ExecOptions{Move: flags.move, Overwrite: flags.overwrite, Verify: verify}), nil
				},
			}
			if dryRun {
				req.preview = func(out io.Writer, items []batch.Item, dest string) error {
					plan, err := rename.BuildPlan(items, dest, opts)
					if err != nil {
						return err
					}
					if flags.jsonOut {
						return writeJSON(cmd, planView(plan))
					}
					for _, line := range plan.Preview() {
						fmt.Fprintln(out, line)
					}
					fmt.Fprintf(out, "%d files would be renamed (dry run)\n", len(plan.Pairs))
					return nil
				}
			}
			return runBatch(cmd, ctx, req)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Name pattern, e.g. \"holiday_{n}\" (default \"renamed\")")
	cmd.Flags().StringVarP(&listPath, "list", "l", "", "Text file with one new name (or old|new pair) per line")
	cmd.Flags().IntVar(&start, "start", 1, "First sequence number for {n}")
	cmd.Flags().IntVar(&pad, "pad", 0, "Zero-pad {n} to this width")
	cmd.Flags().StringVar(&caseName, "case", "", "Case transform: lower, upper, title")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the plan without touching any file")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check size and SHA256 of every copy")
	return cmd
}

type planEntry struct {
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Error       string `json:"error,omitempty"`
}

func planView(plan *rename.Plan) []planEntry {
	entries := make([]planEntry, 0, len(plan.Pairs))
	for _, pair := range plan.Pairs {
		entry := planEntry{Source: pair.Item.Source, Destination: pair.Destination}
		if pair.Err != nil {
			entry.Error = pair.Err.Error()
		}
		entries = append(entries, entry)
	}
	return entries
}

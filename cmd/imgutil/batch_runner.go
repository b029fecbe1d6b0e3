package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"imgutil/internal/batch"
	"imgutil/internal/config"
	"imgutil/internal/history"
	"imgutil/internal/logging"
	"imgutil/internal/notifications"
	"imgutil/internal/preflight"
	"imgutil/internal/progress"
	"imgutil/internal/services"
)

// incompleteError marks a run that finished with failed or skipped files.
// The summary has already been printed; main only reports the message.
type incompleteError struct {
	message string
}

func (e *incompleteError) Error() string { return e.message }

// batchFlags are shared by rename, resize, and convert.
type batchFlags struct {
	workers    int
	recursive  bool
	move       bool
	overwrite  bool
	jsonOut    bool
	noProgress bool
	extensions []string
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Maximum files processed concurrently (default from config)")
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "Include files in subdirectories")
	cmd.Flags().BoolVar(&f.move, "move", false, "Delete each source file after its output is written")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Replace existing destination files")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print the summary as JSON")
	cmd.Flags().BoolVar(&f.noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().StringSliceVar(&f.extensions, "ext", nil, "File extensions to include (default from config)")
}

// resolve fills unset flags from the [batch] config section.
func (f *batchFlags) resolve(cmd *cobra.Command, cfg *config.Config) {
	if !cmd.Flags().Changed("workers") {
		f.workers = cfg.Batch.Workers
	}
	if !cmd.Flags().Changed("recursive") {
		f.recursive = cfg.Batch.Recursive
	}
	if !cmd.Flags().Changed("move") {
		f.move = cfg.Batch.Move
	}
	if !cmd.Flags().Changed("overwrite") {
		f.overwrite = cfg.Batch.Overwrite
	}
	if !cmd.Flags().Changed("ext") {
		f.extensions = cfg.Batch.Extensions
	}
}

// batchRequest describes one batch command invocation.
type batchRequest struct {
	operation batch.Operation
	sourceDir string
	destDir   string
	// distinct requires source and destination to differ.
	distinct bool
	flags    *batchFlags
	// build returns the job for the discovered items. It runs after the
	// destination is prepared and before the lock is taken.
	build func(ctx context.Context, items []batch.Item, dest string, logger *slog.Logger) (batch.Job, error)
	// preview, when set, prints the plan and stops before any file is touched.
	preview func(out io.Writer, items []batch.Item, dest string) error
}

func runBatch(cmd *cobra.Command, ctx *commandContext, req batchRequest) (err error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	req.flags.resolve(cmd, cfg)

	stderr := cmd.ErrOrStderr()
	showBar := !req.flags.noProgress && !req.flags.jsonOut && req.preview == nil && shouldColorize(stderr)
	logger, closeLog := ctx.logger(showBar)
	defer func() { _ = closeLog() }()
	notifier := notifications.NewService(cfg)

	defer func() {
		var incomplete *incompleteError
		if err == nil || errors.As(err, &incomplete) || services.IsCancellation(err) {
			return
		}
		if pubErr := notifier.Publish(context.WithoutCancel(cmd.Context()), notifications.EventError, notifications.Payload{
			"context": string(req.operation),
			"error":   err,
		}); pubErr != nil {
			logging.WarnWithContext(logger, "error notification failed", "notification_failed", logging.Error(pubErr))
		}
	}()

	source, err := config.ExpandPath(req.sourceDir)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	dest, err := config.ExpandPath(req.destDir)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}

	items, err := batch.Discover(source, batch.DiscoverOptions{
		Recursive:  req.flags.recursive,
		Extensions: req.flags.extensions,
	})
	if err != nil {
		return err
	}

	if req.preview != nil {
		return req.preview(cmd.OutOrStdout(), items, dest)
	}

	if check := preflight.CheckDestination(dest); !check.Passed {
		return services.Wrap(services.ErrValidation, string(req.operation), "destination", check.Detail, nil)
	}
	if err := batch.PrepareDestination(source, dest, req.distinct); err != nil {
		return err
	}

	job, err := req.build(cmd.Context(), items, dest, logger)
	if err != nil {
		return err
	}

	lock, err := batch.LockDestination(cfg.LockDir(), dest)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := progress.NewBus(logger)
	if showBar && len(items) > 0 {
		bar := newProgressBar(stderr, len(items), string(req.operation))
		unsubscribe := bus.Subscribe(func(evt progress.Event) {
			switch evt.Kind {
			case progress.KindProgress:
				_ = bar.Set(evt.Completed)
			case progress.KindCompleted:
				_ = bar.Finish()
			}
		})
		defer unsubscribe()
	}

	summary, err := batch.Run(runCtx, items, job, batch.Options{
		Workers:        req.flags.workers,
		Operation:      req.operation,
		SourceDir:      source,
		DestinationDir: dest,
		Bus:            bus,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	recordHistory(cmd.Context(), cfg, summary, logger)
	if pubErr := notifier.Publish(context.WithoutCancel(cmd.Context()), notifications.SummaryEvent(summary), notifications.SummaryPayload(summary)); pubErr != nil {
		logging.WarnWithContext(logger, "batch notification failed", "notification_failed",
			logging.Error(pubErr),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}

	if req.flags.jsonOut {
		if err := writeJSON(cmd, newSummaryView(summary)); err != nil {
			return err
		}
	} else {
		renderSummary(cmd.OutOrStdout(), summary)
	}

	if !summary.OK() && summary.Total > 0 {
		return &incompleteError{message: summary.Message()}
	}
	return nil
}

func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// recordHistory journals the run and prunes entries past retention. Journal
// failures are logged; they never fail the batch.
func recordHistory(ctx context.Context, cfg *config.Config, summary *batch.Summary, logger *slog.Logger) {
	if !cfg.History.Enabled {
		return
	}
	ctx = context.WithoutCancel(ctx)
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not journaled"),
		)
		return
	}
	defer store.Close()

	if _, err := store.Record(ctx, summary); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not journaled"),
		)
		return
	}
	if cfg.History.RetentionDays > 0 {
		cutoff := time.Now().Add(-time.Duration(cfg.History.RetentionDays) * 24 * time.Hour)
		if removed, err := store.Prune(ctx, cutoff); err != nil {
			logging.WarnWithContext(logger, "history prune failed", "history_prune_failed", logging.Error(err))
		} else if removed > 0 {
			logger.Debug("history pruned", logging.Int64("removed", removed))
		}
	}
}

func renderSummary(out io.Writer, summary *batch.Summary) {
	in, written := summary.Bytes()
	rows := [][]string{
		{"Batch", shortID(summary.BatchID)},
		{"Operation", string(summary.Operation)},
		{"Files", fmt.Sprintf("%d", summary.Total)},
		{"Succeeded", fmt.Sprintf("%d", summary.Succeeded)},
		{"Failed", fmt.Sprintf("%d", summary.Failed)},
		{"Skipped", fmt.Sprintf("%d", summary.Skipped)},
		{"Read", humanBytes(in)},
		{"Written", humanBytes(written)},
		{"Duration", summary.Duration().Round(time.Millisecond).String()},
	}
	fmt.Fprintln(out, renderKeyValue("Summary", rows, alignRight))

	if failures := summary.Failures(); len(failures) > 0 {
		failRows := make([][]string, 0, len(failures))
		for _, f := range failures {
			msg := ""
			if f.Err != nil {
				msg = f.Err.Error()
			}
			failRows = append(failRows, []string{fmt.Sprintf("%d", f.Index+1), filepath.Base(f.Item.Source), msg})
		}
		fmt.Fprintln(out, renderTable([]string{"#", "File", "Error"}, failRows, []columnAlignment{alignRight, alignLeft, alignLeft}))
	}
	if summary.OK() || summary.Total == 0 {
		fmt.Fprintln(out, summary.Message())
	}
}

type summaryView struct {
	BatchID     string     `json:"batch_id"`
	Operation   string     `json:"operation"`
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	Total       int        `json:"total"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	Skipped     int        `json:"skipped"`
	Cancelled   bool       `json:"cancelled"`
	DurationMS  int64      `json:"duration_ms"`
	Message     string     `json:"message"`
	Files       []fileView `json:"files"`
}

type fileView struct {
	Index       int    `json:"index"`
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	InputBytes  int64  `json:"input_bytes,omitempty"`
	OutputBytes int64  `json:"output_bytes,omitempty"`
}

func newSummaryView(summary *batch.Summary) summaryView {
	view := summaryView{
		BatchID:     summary.BatchID,
		Operation:   string(summary.Operation),
		Source:      summary.SourceDir,
		Destination: summary.DestinationDir,
		Total:       summary.Total,
		Succeeded:   summary.Succeeded,
		Failed:      summary.Failed,
		Skipped:     summary.Skipped,
		Cancelled:   summary.Cancelled,
		DurationMS:  summary.Duration().Milliseconds(),
		Message:     summary.Message(),
		Files:       make([]fileView, 0, len(summary.Results)),
	}
	for _, r := range summary.Results {
		fv := fileView{
			Index:       r.Index,
			Source:      r.Item.Source,
			Destination: r.Destination,
			Status:      string(r.Status),
			InputBytes:  r.InputBytes,
			OutputBytes: r.OutputBytes,
		}
		if r.Err != nil {
			fv.Error = r.Err.Error()
		}
		view.Files = append(view.Files, fv)
	}
	return view
}

func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}

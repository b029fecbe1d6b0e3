package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"imgutil/internal/logging"
	"imgutil/internal/progress"
	"imgutil/internal/services"
)

// DefaultWorkers is the parallelism used when Options.Workers is not set.
const DefaultWorkers = 5

// Options configures one batch run.
type Options struct {
	Workers        int
	BatchID        string
	Operation      Operation
	SourceDir      string
	DestinationDir string
	Bus            *progress.Bus
	Logger         *slog.Logger
}

// Run applies job to every item with at most Options.Workers jobs in flight.
// Per-item failures are recorded in the returned Summary; Run itself only
// fails on invalid arguments. Cancelling ctx stops dispatch, and items that
// never started are recorded as skipped.
func Run(ctx context.Context, items []Item, job Job, opts Options) (*Summary, error) {
	if job == nil {
		return nil, services.Wrap(services.ErrValidation, "batch", "run", "job is required", nil)
	}
	if opts.Operation == "" {
		return nil, services.Wrap(services.ErrValidation, "batch", "run", "operation is required", nil)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	batchID := opts.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}

	ctx = services.WithBatchID(ctx, batchID)
	ctx = services.WithOperation(ctx, string(opts.Operation))
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "batch"))

	summary := &Summary{
		BatchID:        batchID,
		Operation:      opts.Operation,
		SourceDir:      opts.SourceDir,
		DestinationDir: opts.DestinationDir,
		Started:        time.Now(),
		Total:          len(items),
		Results:        make([]FileResult, len(items)),
	}
	for i, item := range items {
		summary.Results[i] = FileResult{Item: item, Status: StatusSkipped}
	}

	publish := func(evt progress.Event) {
		evt.BatchID = batchID
		evt.Operation = string(opts.Operation)
		evt.Total = len(items)
		opts.Bus.Publish(evt)
	}
	sampler := logging.NewProgressSampler(10)
	tracker := progress.NewTracker(len(items), func(s progress.Snapshot) {
		publish(progress.Event{Kind: progress.KindProgress, Percent: s.Percent, Completed: s.Completed})
		if sampler.ShouldLog(s.Percent, string(opts.Operation)) {
			logger.Info("batch progress",
				logging.Int("percent", s.Percent),
				logging.Int("completed", s.Completed),
				logging.Int("total", s.Total),
				logging.String(logging.FieldEventType, "batch_progress"),
			)
		}
	})

	logger.Info("batch started",
		logging.Int("files", len(items)),
		logging.Int("workers", workers),
		logging.String("source", opts.SourceDir),
		logging.String("destination", opts.DestinationDir),
		logging.String(logging.FieldEventType, "batch_started"),
	)
	publish(progress.Event{Kind: progress.KindStarted})
	tracker.Start()

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := runOne(ctx, items[i], job, logger)
			summary.Results[i] = res
			tracker.Done()
			if res.Status == StatusFailed {
				snap := tracker.Snapshot()
				publish(progress.Event{
					Kind:      progress.KindFileFailed,
					File:      res.Item.Source,
					Err:       res.Err,
					Completed: snap.Completed,
					Percent:   snap.Percent,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	summary.Finished = time.Now()
	for _, r := range summary.Results {
		switch r.Status {
		case StatusSucceeded:
			summary.Succeeded++
		case StatusFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
	}
	// A signal that lands after the last item finished leaves nothing undone.
	summary.Cancelled = ctx.Err() != nil && summary.Skipped > 0

	snap := tracker.Snapshot()
	publish(progress.Event{Kind: progress.KindCompleted, Percent: snap.Percent, Completed: snap.Completed, Summary: summary})

	attrs := []logging.Attr{
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("elapsed", summary.Duration()),
		logging.String(logging.FieldEventType, "batch_completed"),
	}
	if summary.OK() || summary.Total == 0 {
		logger.Info("batch completed", logging.Args(attrs...)...)
	} else {
		logging.WarnWithContext(logger, "batch completed with problems", "batch_completed",
			append(attrs,
				logging.Bool("cancelled", summary.Cancelled),
				logging.String(logging.FieldErrorHint, "run imgutil history show "+batchID+" for per-file errors"),
				logging.String(logging.FieldImpact, "some files were not written"),
			)...,
		)
	}
	return summary, nil
}

func runOne(ctx context.Context, item Item, job Job, logger *slog.Logger) (fr FileResult) {
	fr = FileResult{Item: item}
	started := time.Now()
	fileCtx := services.WithFile(ctx, item.Source)

	defer func() {
		if r := recover(); r != nil {
			fr.Status = StatusFailed
			fr.Err = fmt.Errorf("panic while processing %s: %v", item.Source, r)
		}
		fr.Duration = time.Since(started)
		logFileResult(logger, fr)
	}()

	res, err := job(fileCtx, item)
	fr.Result = res
	switch {
	case err == nil:
		fr.Status = StatusSucceeded
	case ctx.Err() != nil && (services.IsCancellation(err) || errors.Is(err, context.DeadlineExceeded)):
		fr.Status = StatusSkipped
		fr.Err = err
	default:
		fr.Status = StatusFailed
		fr.Err = err
	}
	return fr
}

func logFileResult(logger *slog.Logger, fr FileResult) {
	attrs := append(logging.FileAttrs(fr.Index, fr.Item.Source, fr.Destination), logging.Duration("elapsed", fr.Duration))
	switch fr.Status {
	case StatusSucceeded:
		logger.Debug("file processed", logging.Args(append(attrs,
			logging.Bytes("input", fr.InputBytes),
			logging.Bytes("output", fr.OutputBytes),
		)...)...)
	case StatusSkipped:
		logger.Debug("file skipped", logging.Args(append(attrs, logging.Error(fr.Err))...)...)
	default:
		logging.WarnWithContext(logger, "file failed", "file_failed",
			append(attrs,
				logging.Error(fr.Err),
				logging.String("error_kind", services.Classify(fr.Err)),
				logging.String(logging.FieldImpact, "file was not written; batch continues"),
			)...,
		)
	}
}

package batch_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"imgutil/internal/batch"
	"imgutil/internal/progress"
)

func makeItems(n int) []batch.Item {
	items := make([]batch.Item, n)
	for i := range items {
		items[i] = batch.Item{Index: i, Source: fmt.Sprintf("/src/%03d.png", i)}
	}
	return items
}

type recorder struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recorder) handle(evt progress.Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func (r *recorder) percents() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, evt := range r.events {
		if evt.Kind == progress.KindProgress {
			out = append(out, evt.Percent)
		}
	}
	return out
}

func (r *recorder) count(kind progress.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, evt := range r.events {
		if evt.Kind == kind {
			n++
		}
	}
	return n
}

func TestRunCollectsFailuresAndContinues(t *testing.T) {
	bus := progress.NewBus(nil)
	rec := &recorder{}
	bus.Subscribe(rec.handle)

	items := makeItems(10)
	job := func(_ context.Context, item batch.Item) (batch.Result, error) {
		if item.Index%3 == 0 {
			return batch.Result{}, errors.New("corrupt image")
		}
		return batch.Result{Destination: strings.Replace(item.Source, "/src/", "/dst/", 1), InputBytes: 10, OutputBytes: 5}, nil
	}

	summary, err := batch.Run(context.Background(), items, job, batch.Options{Workers: 3, Operation: batch.OperationResize, Bus: bus})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 10 || summary.Failed != 4 || summary.Succeeded != 6 || summary.Skipped != 0 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.Succeeded+summary.Failed+summary.Skipped != summary.Total {
		t.Fatal("counts do not add up")
	}
	for i, r := range summary.Results {
		if r.Index != i {
			t.Fatalf("results out of order at %d: %d", i, r.Index)
		}
	}
	if got := summary.Message(); got != "4 error(s) occurred" {
		t.Fatalf("unexpected message %q", got)
	}
	if len(summary.Errors()) != 4 || !strings.Contains(summary.Errors()[0], "/src/000.png: corrupt image") {
		t.Fatalf("unexpected errors: %v", summary.Errors())
	}
	in, out := summary.Bytes()
	if in != 60 || out != 30 {
		t.Fatalf("unexpected byte totals: %d %d", in, out)
	}
	if summary.BatchID == "" {
		t.Fatal("expected generated batch id")
	}

	if rec.count(progress.KindStarted) != 1 || rec.count(progress.KindCompleted) != 1 {
		t.Fatal("expected exactly one started and one completed event")
	}
	if rec.count(progress.KindFileFailed) != 4 {
		t.Fatalf("expected 4 file_failed events, got %d", rec.count(progress.KindFileFailed))
	}
	percents := rec.percents()
	for i := 1; i < len(percents); i++ {
		if percents[i] <= percents[i-1] {
			t.Fatalf("percent not strictly increasing: %v", percents)
		}
	}
	if percents[len(percents)-1] != 100 {
		t.Fatalf("expected final percent 100, got %v", percents)
	}
}

func TestRunRespectsWorkerLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	job := func(context.Context, batch.Item) (batch.Result, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return batch.Result{}, nil
	}

	summary, err := batch.Run(context.Background(), makeItems(30), job, batch.Options{Workers: 4, Operation: batch.OperationConvert})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.OK() {
		t.Fatalf("expected ok summary: %s", summary.Message())
	}
	if peak.Load() > 4 {
		t.Fatalf("observed %d concurrent jobs, limit 4", peak.Load())
	}
	if summary.Message() != "Successfully converted all files" {
		t.Fatalf("unexpected message %q", summary.Message())
	}
}

func TestRunCancellationSkipsUndispatched(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var started atomic.Int32
	job := func(ctx context.Context, item batch.Item) (batch.Result, error) {
		if started.Add(1) == 2 {
			cancel()
		}
		<-ctx.Done()
		return batch.Result{}, ctx.Err()
	}

	summary, err := batch.Run(ctx, makeItems(20), job, batch.Options{Workers: 2, Operation: batch.OperationRename})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.Cancelled {
		t.Fatal("expected summary to be marked cancelled")
	}
	if summary.Skipped < 18 {
		t.Fatalf("expected undispatched items to be skipped, got %+v", summary)
	}
	if summary.Succeeded+summary.Failed+summary.Skipped != summary.Total {
		t.Fatal("counts do not add up")
	}
	if summary.OK() {
		t.Fatal("cancelled summary must not be OK")
	}
}

func TestRunLateCancellationIsNotCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var done atomic.Int32
	job := func(ctx context.Context, item batch.Item) (batch.Result, error) {
		if done.Add(1) == 2 {
			cancel()
		}
		return batch.Result{Destination: item.Source + ".out"}, nil
	}

	summary, err := batch.Run(ctx, makeItems(2), job, batch.Options{Workers: 1, Operation: batch.OperationResize})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Cancelled || summary.Skipped != 0 || summary.Succeeded != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !summary.OK() || summary.Message() != "Successfully resized all files" {
		t.Fatalf("finished batch must be OK, got %q", summary.Message())
	}
}

func TestRunFailuresCarrySourcePath(t *testing.T) {
	bus := progress.NewBus(nil)
	rec := &recorder{}
	bus.Subscribe(rec.handle)

	job := func(_ context.Context, item batch.Item) (batch.Result, error) {
		return batch.Result{}, errors.New("unreadable")
	}
	summary, err := batch.Run(context.Background(), makeItems(1), job, batch.Options{Operation: batch.OperationConvert, Bus: bus})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := summary.Errors(); len(got) != 1 || got[0] != "/src/000.png: unreadable" {
		t.Fatalf("unexpected errors %v", got)
	}
	if failures := summary.Failures(); len(failures) != 1 || failures[0].Item.Source != "/src/000.png" {
		t.Fatalf("unexpected failures %+v", failures)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var file string
	for _, evt := range rec.events {
		if evt.Kind == progress.KindFileFailed {
			file = evt.File
		}
	}
	if file != "/src/000.png" {
		t.Fatalf("expected file_failed event for the source, got %q", file)
	}
}

func TestRunEmptyBatch(t *testing.T) {
	bus := progress.NewBus(nil)
	rec := &recorder{}
	bus.Subscribe(rec.handle)

	summary, err := batch.Run(context.Background(), nil, func(context.Context, batch.Item) (batch.Result, error) {
		t.Fatal("job must not run")
		return batch.Result{}, nil
	}, batch.Options{Operation: batch.OperationRename, Bus: bus, BatchID: "empty"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 0 || summary.BatchID != "empty" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := rec.percents(); len(got) != 1 || got[0] != 100 {
		t.Fatalf("expected single 100%% progress event, got %v", got)
	}
	if rec.count(progress.KindStarted) != 1 || rec.count(progress.KindCompleted) != 1 {
		t.Fatal("expected started and completed events")
	}
	if summary.Message() != "No files to process" {
		t.Fatalf("unexpected message %q", summary.Message())
	}
}

func TestRunRecoversPanickingJob(t *testing.T) {
	job := func(_ context.Context, item batch.Item) (batch.Result, error) {
		if item.Index == 1 {
			panic("decoder exploded")
		}
		return batch.Result{}, nil
	}
	summary, err := batch.Run(context.Background(), makeItems(3), job, batch.Options{Operation: batch.OperationResize})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 || summary.Results[1].Status != batch.StatusFailed {
		t.Fatalf("expected panicking item to fail: %+v", summary.Results)
	}
	if !strings.Contains(summary.Results[1].Err.Error(), "decoder exploded") {
		t.Fatalf("unexpected error: %v", summary.Results[1].Err)
	}
}

func TestRunRejectsInvalidArguments(t *testing.T) {
	if _, err := batch.Run(context.Background(), makeItems(1), nil, batch.Options{Operation: batch.OperationRename}); err == nil {
		t.Fatal("expected error for nil job")
	}
	noop := func(context.Context, batch.Item) (batch.Result, error) { return batch.Result{}, nil }
	if _, err := batch.Run(context.Background(), makeItems(1), noop, batch.Options{}); err == nil {
		t.Fatal("expected error for missing operation")
	}
}

func TestParseOperation(t *testing.T) {
	op, err := batch.ParseOperation(" Resize ")
	if err != nil || op != batch.OperationResize {
		t.Fatalf("unexpected parse result: %v %v", op, err)
	}
	if _, err := batch.ParseOperation("delete"); err == nil {
		t.Fatal("expected error for unknown operation")
	}
}

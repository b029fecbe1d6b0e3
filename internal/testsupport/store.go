package testsupport

import (
	"context"
	"errors"
	"testing"
	"time"

	"imgutil/internal/batch"
	"imgutil/internal/config"
	"imgutil/internal/history"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun journals a synthetic summary with the given counts.
func RecordRun(t testing.TB, store *history.Store, id string, op batch.Operation, started time.Time, succeeded, failed int) history.Run {
	t.Helper()

	summary := &batch.Summary{
		BatchID:   id,
		Operation: op,
		SourceDir: "/src",
		Started:   started,
		Finished:  started.Add(time.Second),
		Total:     succeeded + failed,
		Succeeded: succeeded,
		Failed:    failed,
	}
	for i := 0; i < succeeded+failed; i++ {
		r := batch.FileResult{Item: batch.Item{Index: i, Source: "/src/file.png"}, Status: batch.StatusSucceeded}
		if i >= succeeded {
			r.Status = batch.StatusFailed
			r.Err = errBoom
		}
		summary.Results = append(summary.Results, r)
	}
	run, err := store.Record(context.Background(), summary)
	if err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return run
}

var errBoom = errors.New("boom")

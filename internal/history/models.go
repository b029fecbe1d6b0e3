package history

import (
	"time"

	"imgutil/internal/batch"
)

// Run is one journaled batch.
type Run struct {
	ID             string
	Operation      batch.Operation
	SourceDir      string
	DestinationDir string
	StartedAt      time.Time
	FinishedAt     time.Time
	Total          int
	Succeeded      int
	Failed         int
	Skipped        int
	Cancelled      bool
	InputBytes     int64
	OutputBytes    int64
	Message        string
	Failures       []Failure
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failure is one file that failed inside a run.
type Failure struct {
	Index       int
	Source      string
	Destination string
	Error       string
}

// Filter narrows List results. Zero values match everything; Limit <= 0
// returns every run.
type Filter struct {
	Operation batch.Operation
	Limit     int
}

// FromSummary converts a finished batch summary into a journal row.
func FromSummary(summary *batch.Summary) Run {
	in, out := summary.Bytes()
	run := Run{
		ID:             summary.BatchID,
		Operation:      summary.Operation,
		SourceDir:      summary.SourceDir,
		DestinationDir: summary.DestinationDir,
		StartedAt:      summary.Started.UTC(),
		FinishedAt:     summary.Finished.UTC(),
		Total:          summary.Total,
		Succeeded:      summary.Succeeded,
		Failed:         summary.Failed,
		Skipped:        summary.Skipped,
		Cancelled:      summary.Cancelled,
		InputBytes:     in,
		OutputBytes:    out,
		Message:        summary.Message(),
	}
	for _, f := range summary.Failures() {
		failure := Failure{Index: f.Index, Source: f.Item.Source, Destination: f.Destination}
		if f.Err != nil {
			failure.Error = f.Err.Error()
		}
		run.Failures = append(run.Failures, failure)
	}
	return run
}

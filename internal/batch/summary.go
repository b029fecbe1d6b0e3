package batch

import (
	"fmt"
	"time"
)

// Summary aggregates the outcome of one batch run.
type Summary struct {
	BatchID        string
	Operation      Operation
	SourceDir      string
	DestinationDir string
	Started        time.Time
	Finished       time.Time
	Total          int
	Succeeded      int
	Failed         int
	Skipped        int
	Cancelled      bool
	Results        []FileResult
}

// OK reports whether every item succeeded and the run was not cancelled.
func (s *Summary) OK() bool {
	return s != nil && !s.Cancelled && s.Failed == 0 && s.Skipped == 0
}

// Duration is the wall time of the run.
func (s *Summary) Duration() time.Duration {
	if s == nil || s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}

// Errors lists "<source>: <error>" for every failed item in index order.
func (s *Summary) Errors() []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, r := range s.Results {
		if r.Status == StatusFailed && r.Err != nil {
			out = append(out, fmt.Sprintf("%s: %v", r.Item.Source, r.Err))
		}
	}
	return out
}

// Failures returns the failed file results.
func (s *Summary) Failures() []FileResult {
	if s == nil {
		return nil
	}
	var out []FileResult
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			out = append(out, r)
		}
	}
	return out
}

// Bytes returns the summed input and output sizes of succeeded items.
func (s *Summary) Bytes() (in, out int64) {
	if s == nil {
		return 0, 0
	}
	for _, r := range s.Results {
		if r.Status == StatusSucceeded {
			in += r.InputBytes
			out += r.OutputBytes
		}
	}
	return in, out
}

// Message renders the one-line outcome shown to the operator.
func (s *Summary) Message() string {
	if s == nil {
		return ""
	}
	switch {
	case s.Cancelled:
		return fmt.Sprintf("Cancelled after %d of %d files; %d error(s) occurred", s.Succeeded+s.Failed, s.Total, s.Failed)
	case s.Failed > 0:
		return fmt.Sprintf("%d error(s) occurred", s.Failed)
	case s.Total == 0:
		return "No files to process"
	default:
		return fmt.Sprintf("Successfully %s all files", s.Operation.pastTense())
	}
}

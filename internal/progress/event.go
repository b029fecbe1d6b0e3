package progress

import "time"

// EventKind identifies the lifecycle point an Event describes.
type EventKind string

const (
	KindStarted    EventKind = "started"
	KindProgress   EventKind = "progress"
	KindFileFailed EventKind = "file_failed"
	KindCompleted  EventKind = "completed"
)

// Event is a single progress notification for a batch run.
type Event struct {
	Sequence  uint64
	Timestamp time.Time
	Kind      EventKind
	BatchID   string
	Operation string
	Percent   int
	Completed int
	Total     int
	File      string
	Err       error
	// Summary is set on completed events and holds the batch summary.
	Summary any
}

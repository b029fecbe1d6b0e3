package batch

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Operation names the transformation a batch applies.
type Operation string

const (
	OperationRename  Operation = "rename"
	OperationResize  Operation = "resize"
	OperationConvert Operation = "convert"
)

// ParseOperation validates an operation name.
func ParseOperation(value string) (Operation, error) {
	switch op := Operation(strings.ToLower(strings.TrimSpace(value))); op {
	case OperationRename, OperationResize, OperationConvert:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operation %q", value)
	}
}

func (o Operation) pastTense() string {
	switch o {
	case OperationRename:
		return "renamed"
	case OperationResize:
		return "resized"
	case OperationConvert:
		return "converted"
	default:
		return "processed"
	}
}

// Item is one file in sorted discovery order. Index is 0-based.
type Item struct {
	Index  int
	Source string
}

// Result describes what a job produced for one item. The source path lives
// on the Item.
type Result struct {
	Destination string
	InputBytes  int64
	OutputBytes int64
}

// Job transforms a single item. Returning an error marks the item failed; the
// batch continues with the remaining items.
type Job func(ctx context.Context, item Item) (Result, error)

// Status is the terminal state of one item.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// FileResult is the outcome recorded for one item.
type FileResult struct {
	Item
	Result
	Status   Status
	Err      error
	Duration time.Duration
}

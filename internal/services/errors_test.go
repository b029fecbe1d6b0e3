package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"imgutil/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "convert", "ffmpeg", "encode failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"convert", "ffmpeg", "encode failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "operation failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrValidation, "rename", "plan", "bad", nil), "validation"},
		{services.Wrap(services.ErrConfiguration, "convert", "", "", nil), "configuration"},
		{services.Wrap(services.ErrNotFound, "history", "get", "", nil), "not_found"},
		{services.Wrap(services.ErrExternalTool, "ffmpeg", "", "", nil), "external_tool"},
		{fmt.Errorf("copy: %w", context.Canceled), "cancelled"},
		{fmt.Errorf("encode: %w", context.DeadlineExceeded), "timeout"},
		{errors.New("disk full"), "failed"},
	}
	for _, tt := range tests {
		if got := services.Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestIsCancellation(t *testing.T) {
	if !services.IsCancellation(fmt.Errorf("wrap: %w", context.Canceled)) {
		t.Fatal("expected context.Canceled to count as cancellation")
	}
	if !services.IsCancellation(services.Wrap(services.ErrCancelled, "batch", "", "", nil)) {
		t.Fatal("expected ErrCancelled to count as cancellation")
	}
	if services.IsCancellation(errors.New("io")) {
		t.Fatal("unexpected cancellation for plain error")
	}
}

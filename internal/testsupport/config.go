package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"imgutil/internal/config"
)

// ConfigOption adjusts a test configuration after the temp layout exists.
type ConfigOption func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns defaults rooted in a fresh temp directory: state and logs
// live under it, history is on and notifications are off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Notifications.NtfyTopic = ""
	cfg.History.Enabled = true
	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	return &cfg
}

// BaseDir returns the temp directory NewConfig created.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WithNtfyTopic points notifications at topic, typically an httptest URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
	}
}

// WithWorkers fixes the batch worker count.
func WithWorkers(n int) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Batch.Workers = n
	}
}

// WithStubbedBinaries puts no-op executables named names (ffmpeg when empty)
// first on PATH for the rest of the test.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, base string, _ *config.Config) {
		t.Helper()
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := filepath.Join(base, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// Package logging assembles structured slog loggers and formatting helpers used
// across imgutil.
//
// It owns the console and JSON handlers, routes CLI output to stderr while
// mirroring it into the configured log file, and exposes context-aware helpers
// so batch workers tag log lines with batch IDs, operations, and file paths
// without threading attributes by hand. A no-op logger is provided for tests
// and wiring code that cannot fail.
package logging

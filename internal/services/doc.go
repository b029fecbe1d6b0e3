// Package services defines shared utilities consumed by the batch operations
// and the external tools they drive.
//
// Key responsibilities:
//   - Context helpers that stamp batch IDs, operation names, and the file in
//     flight so log lines can be correlated across workers.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent between the CLI, history, and notifications.
//
// Use these helpers when wiring new operations so error handling and
// observability stay uniform.
package services

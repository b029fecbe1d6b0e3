// Package notifications pushes batch outcomes to ntfy.
//
// Publish takes an Event and a free-form Payload. Events disabled in
// config.toml, and completed batches smaller than notifications.min_files,
// are dropped before any request is made. Without a topic the service is a
// no-op.
package notifications

// Package progress carries batch progress from worker goroutines to whoever
// is watching: the CLI progress bar, the log sampler, and notifications.
//
// Bus is a synchronous in-process publish/subscribe hub. Tracker counts
// completions and reports a percent only when it strictly increases, so
// subscribers never observe progress moving backwards.
package progress

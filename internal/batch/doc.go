// Package batch runs one per-file job over a set of discovered files with a
// bounded number of concurrent workers.
//
// Discover produces a deterministic, sorted list of items. Run fans the items
// out through an errgroup capped at Options.Workers, collects per-file
// outcomes into a Summary instead of aborting on the first failure, and
// publishes started/progress/file_failed/completed events on a progress.Bus.
// LockDestination keeps two imgutil processes from writing into the same
// destination directory at once.
package batch

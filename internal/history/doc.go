// Package history keeps a SQLite journal of completed batch runs and the
// per-file failures they produced.
//
// Each run is stored once it finishes, so listing the journal never sees a
// partially written run. The schema is versioned; a database written by a
// different version is rejected with ErrSchemaMismatch rather than migrated.
package history

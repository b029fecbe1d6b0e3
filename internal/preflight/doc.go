// Package preflight provides readiness checks for the filesystem paths and
// external binaries imgutil depends on.
//
// Batch commands call CheckDestination before touching any file so a
// read-only or missing output directory fails the run up front. The
// "imgutil status" command uses RunAll and CheckSystemDeps to display health.
package preflight

// Package textutil holds the filename sanitising and case transforms used by
// the rename planner.
package textutil

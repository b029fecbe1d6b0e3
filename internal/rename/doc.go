// Package rename plans and applies batch renames.
//
// A Plan maps every discovered source file to its destination name before any
// file is touched, either from a pattern with tokens or from a list file.
// The plan's Job then copies or moves each file under the batch runner.
package rename

// Package trace provides the foundational types shared by every chainstat package.
//
// This package contains the Trace value type, the error taxonomy, and the canonical
// JSON encoding used for content digests and golden snapshots. All other internal
// packages import trace; trace imports nothing internal.
//
// Key design constraints:
//   - The first axis of a Trace is always the iteration axis
//   - A Trace is a value: every accessor returns data the caller may mutate freely
//   - Parameter names are NFC-normalized before they are used as keys
//   - All values are finite; NaN and Inf are rejected at construction
package trace

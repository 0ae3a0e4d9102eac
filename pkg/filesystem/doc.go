// Package filesystem provides low-level filesystem helpers used by the
// Applier: atomic file replacement.
package filesystem

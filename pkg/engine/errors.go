package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a stable, programmatically-matchable discriminant for the error
// taxonomy the core exposes. It is deliberately small and closed: every
// engine operation that can fail returns an error whose Kind() is one of
// these values (or wraps one with github.com/pkg/errors, which preserves the
// underlying error for errors.As).
type Kind string

const (
	KindPath      Kind = "path"
	KindDecode    Kind = "decode"
	KindTransform Kind = "transform"
	KindIO        Kind = "io"
	KindLedger    Kind = "ledger"
	KindReconcile Kind = "reconcile"
	KindAggregate Kind = "aggregate"
)

// KindError is implemented by every typed error in this package.
type KindError interface {
	error
	Kind() Kind
}

// PathError reports a failure in path construction or validation.
type PathError struct {
	Reason string
	Path   string
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

func (e *PathError) Kind() Kind { return KindPath }

// PathNotAbsolute indicates that a value was expected to be rooted but
// wasn't.
func PathNotAbsolute(path string) error {
	return &PathError{Reason: "path is not absolute", Path: path}
}

// PathNotRelative indicates that a value was expected to be relative but
// wasn't.
func PathNotRelative(path string) error {
	return &PathError{Reason: "path is not relative", Path: path}
}

// InvalidPathPrefix indicates that a path could not be stripped of an
// expected prefix.
func InvalidPathPrefix(path, prefix string) error {
	return &PathError{Reason: fmt.Sprintf("path does not have prefix %q", prefix), Path: path}
}

// DuplicateTarget indicates that two or more source entries decoded to the
// same destination-relative path.
type DuplicateTarget struct {
	Target string
	Paths  []string
}

func (e *DuplicateTarget) Error() string {
	return fmt.Sprintf("multiple source entries decode to destination path %q: %v", e.Target, e.Paths)
}

func (e *DuplicateTarget) Kind() Kind { return KindPath }

// UnsupportedFileType indicates that the Source Reader encountered an entry
// kind it does not model (device, socket, FIFO, etc.).
type UnsupportedFileType struct {
	Path string
}

func (e *UnsupportedFileType) Error() string {
	return fmt.Sprintf("unsupported file type at %q", e.Path)
}

func (e *UnsupportedFileType) Kind() Kind { return KindPath }

// DecodeError indicates that the Attribute Decoder encountered a filename it
// could not unambiguously decode.
type DecodeError struct {
	Name   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode %q: %s", e.Name, e.Reason)
}

func (e *DecodeError) Kind() Kind { return KindDecode }

// DecryptionError indicates that none of the supplied identities could
// decrypt a ciphertext.
type DecryptionError struct {
	Reason string
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: %s", e.Reason)
}

func (e *DecryptionError) Kind() Kind { return KindTransform }

// RenderError indicates that template rendering failed.
type RenderError struct {
	Location string
	Message  string
}

func (e *RenderError) Error() string {
	if e.Location == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

func (e *RenderError) Kind() Kind { return KindTransform }

// IOError wraps a filesystem operation failure with the path and operation
// name that produced it.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Kind() Kind { return KindIO }

func (e *IOError) Unwrap() error { return e.Err }

// WrapIO constructs an IOError, wrapping err with stack context via
// github.com/pkg/errors so that the failure site is preserved in diagnostics.
func WrapIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&IOError{Op: op, Path: path, Err: err})
}

// LedgerError reports a failure opening, reading, writing, or decoding the
// persistent ledger.
type LedgerError struct {
	Reason string
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger error: %s", e.Reason)
}

func (e *LedgerError) Kind() Kind { return KindLedger }

// ReconcileError reports a kind mismatch the reconciler could not resolve
// without an explicit caller override.
type ReconcileError struct {
	Path   string
	Reason string
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("cannot reconcile %q: %s", e.Path, e.Reason)
}

func (e *ReconcileError) Kind() Kind { return KindReconcile }

// AggregateError holds one or more per-entry errors produced by a parallel
// phase (Source Reader enumeration, Target State construction). It is
// returned instead of the first error encountered so that a single failing
// entry never hides others failing concurrently.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred, first: %v", len(e.Errors), e.Errors[0])
}

func (e *AggregateError) Kind() Kind { return KindAggregate }

// NewAggregateError builds an AggregateError from a slice of errors,
// dropping nils. It returns nil if no non-nil errors remain.
func NewAggregateError(errs []error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	return &AggregateError{Errors: nonNil}
}

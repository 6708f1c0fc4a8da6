// Package errs defines the error taxonomy shared by every stage of the
// engine (GraphBuilder, AnchorSiteBuilder, KBestEngine, DAnchorEngine,
// FingerprintLedger, Codec) and maps it onto the CLI exit codes.
//
// Kinds:
//
//	InputError        - missing or malformed extract, POI, or anchor file.
//	SchemaError       - parquet schema does not match the canonical definitions.
//	InvariantViolation - duplicate anchor id, self-loop left in CSR, etc.
//	BudgetExceeded    - candidate cost saturated; recovered by clamping, not fatal. It has
//	                    no Kind value: csrgraph clamps saturated edge seconds silently,
//	                    and saturations are not counted.
//	Cancelled         - cooperative cancellation; clean exit, no partial output.
//	IOError           - write failure during rename; partial temp file deleted.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error for exit-code mapping and logging.
type Kind int

const (
	// KindFatal is the catch-all for unclassified runtime failures.
	KindFatal Kind = iota
	// KindInput marks a missing or malformed input file.
	KindInput
	// KindSchema marks a parquet schema mismatch.
	KindSchema
	// KindInvariant marks a violated data invariant.
	KindInvariant
	// KindCancelled marks cooperative cancellation.
	KindCancelled
	// KindIO marks a write/rename failure.
	KindIO
)

// Error wraps an underlying cause with a Kind and the record or path that
// triggered it, so CLI drivers can report "{path/record}: {cause}" and pick
// an exit code without re-parsing the message.
type Error struct {
	Kind   Kind
	Where  string // offending path or record id; empty if not applicable
	Cause  error
}

func (e *Error) Error() string {
	if e.Where == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %s", e.Where, e.Cause.Error())
}

func (e *Error) Unwrap() error { return e.Cause }

// Input builds an InputError for the given path/record and cause.
func Input(where string, cause error) error {
	return &Error{Kind: KindInput, Where: where, Cause: cause}
}

// Schema builds a SchemaError.
func Schema(where string, cause error) error {
	return &Error{Kind: KindSchema, Where: where, Cause: cause}
}

// Invariant builds an InvariantViolation.
func Invariant(where string, cause error) error {
	return &Error{Kind: KindInvariant, Where: where, Cause: cause}
}

// Invariantf is Invariant with a formatted cause.
func Invariantf(where, format string, a ...any) error {
	return &Error{Kind: KindInvariant, Where: where, Cause: fmt.Errorf(format, a...)}
}

// IO builds an IOError.
func IO(where string, cause error) error {
	return &Error{Kind: KindIO, Where: where, Cause: cause}
}

// Cancelled wraps context.Canceled (or an equivalent) as a Cancelled error.
func Cancelled(cause error) error {
	return &Error{Kind: KindCancelled, Cause: cause}
}

// ExitCode maps an error returned by a CLI driver to the process exit code:
// 0 success, 2 bad input, 3 invariant violation, 1 everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindInput, KindSchema:
			return 2
		case KindInvariant:
			return 3
		case KindCancelled:
			return 1
		}
	}
	return 1
}

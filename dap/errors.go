// Package dap holds the error kinds shared by
// every component of the document array profile pipeline: refcatalog,
// pfpview, dapbuilder, dapindex, and the cmd/dap CLI.
package dap

import "errors"

// ErrorKind values are wrapped into every fatal error returned by this
// module's packages, so callers can classify a failure with errors.Is
// without parsing message text.
var (
	// ErrInputMissing: a named file could not be opened.
	ErrInputMissing = errors.New("input missing")
	// ErrInputShape: a file's size, magic, or header disagrees with
	// what its format requires.
	ErrInputShape = errors.New("input shape")
	// ErrInvariantViolation: an internal assertion failed; the input
	// that produced it is assumed corrupt.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrIoFailure: a read or write returned a short count or an
	// unexpected error.
	ErrIoFailure = errors.New("io failure")
)

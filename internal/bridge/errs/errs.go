// Package errs defines the error taxonomy shared by the bridge withdrawal
// pipeline. Every failure aborts the current run; none of these are retried
// internally.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrFormat marks malformed input: a bad address encoding, an out-of-range
	// amount or an invalid signature recovery parameter.
	ErrFormat = errors.New("format error")

	// ErrEstimation marks a gas estimation failure reported by the RPC node.
	ErrEstimation = errors.New("gas estimation failed")

	// ErrRPC marks any other chain RPC failure.
	ErrRPC = errors.New("rpc failure")

	// ErrMismatch marks a failed post-signing sender verification. It points
	// at a signing or encoding bug and must never be swallowed.
	ErrMismatch = errors.New("sender mismatch")

	// ErrCancelled marks a run aborted by context cancellation or timeout.
	ErrCancelled = errors.New("cancelled")
)

// Wrap tags err with kind and a short context message. The returned error
// matches both kind and err via errors.Is, so callers can branch on the
// taxonomy without losing the underlying cause.
func Wrap(kind error, err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", msg, kind, err)
}

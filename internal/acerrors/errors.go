// Package acerrors defines the module's sentinel error kinds. Every boundary
// wraps one of these with fmt.Errorf("...: %w", ...) so callers can recover
// the kind with errors.Is.
package acerrors

import "errors"

var (
	// ErrInvalidRequest: unknown action, malformed payload, or a value
	// outside global sanity bounds before clamping.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnknownRoom: operation on a room that has never been init-ed.
	ErrUnknownRoom = errors.New("unknown room")

	// ErrPersistenceFailure: the Detail Recorder's backend failed. Logged
	// and swallowed by the scheduler loop; in-memory state stays correct.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrInvariantViolation: service set exceeded its cap, or a room
	// appeared in both the service and wait sets. Fatal for the tick only.
	ErrInvariantViolation = errors.New("internal invariant violation")
)

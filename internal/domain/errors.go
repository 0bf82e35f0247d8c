package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount rejects negative or non-finite monetary input.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrIllegalTransition is returned when the requested edge is not in the
	// booking lifecycle graph. The booking is left untouched.
	ErrIllegalTransition = errors.New("illegal booking transition")
	// ErrConcurrentModification signals a lost status-guarded update race.
	// Callers surface it so the UI can refresh; it is never retried blindly.
	ErrConcurrentModification = errors.New("booking modified concurrently")
	// ErrBelowThreshold rejects a payout run under the configured minimum.
	ErrBelowThreshold = errors.New("pending balance below payout threshold")
	// ErrUnauthorized means the actor lacks the role for this transition.
	ErrUnauthorized = errors.New("actor not authorized for this action")
	// ErrNotFound covers missing bookings, experiences and partner codes.
	ErrNotFound = errors.New("record not found")
)

// GatewayError wraps a payment provider failure. Retryable errors (timeouts)
// may be retried with the same idempotent gateway call; permanent ones
// (declines, malformed callbacks) are surfaced as a failed payment.
type GatewayError struct {
	Op        string
	Retryable bool
	Err       error
}

func (e *GatewayError) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("gateway %s: %s: %v", e.Op, kind, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NewGatewayError tags err as a gateway failure for operation op.
func NewGatewayError(op string, retryable bool, err error) *GatewayError {
	return &GatewayError{Op: op, Retryable: retryable, Err: err}
}

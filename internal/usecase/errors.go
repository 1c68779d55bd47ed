package usecase

import (
	"fmt"

	"pressing-booking/pkg/utils"
)

// State conflict codes surfaced verbatim to callers. These are business-rule
// outcomes, not bugs, and are never retried.
const (
	ConflictInvalidTransition        = "invalid_transition"
	ConflictAlreadyCancelled         = "already_cancelled"
	ConflictCancellationWindowClosed = "cancellation_window_closed"
	ConflictNoCreditsRemaining       = "no_credits_remaining"
	ConflictImmutableBooking         = "immutable_booking"
	ConflictPaymentNotConfirmed      = "payment_not_confirmed"
	ConflictAddressInUse             = "address_in_use"
)

// ValidationError covers malformed or out-of-range input. 400, never retried.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, utils.FormatValidationErrors(e.Fields))
	}
	return e.Message
}

func newValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// AuthorizationError covers "not owner" and "not authenticated". 401/403.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// StateConflictError covers illegal state machine outcomes. 409-equivalent.
type StateConflictError struct {
	Code    string
	Message string
}

func (e *StateConflictError) Error() string { return e.Message }

// NotFoundError covers absent resources. 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// TransientError wraps storage or network hiccups. 500, safe to retry with
// backoff, internal detail never leaks to the client.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

func transient(err error) *TransientError {
	return &TransientError{Err: err}
}

// ExternalServiceError wraps a payment, identity or notification collaborator
// failure. Fatal for payment verification, swallowed for notification dispatch.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

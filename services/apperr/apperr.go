// Package apperr defines the failures the reservation engine reports to its
// callers. Every failure carries a Kind that tells the front end how to
// treat it and a stable Code that errors.Is matches on.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindTransient     Kind = "transient"
	KindNotification  Kind = "notification"
)

// Error is a named failure.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so a message-specific copy made
// by With still satisfies errors.Is(err, ErrOverlap).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrAlreadyRegistered = &Error{Kind: KindConflict, Code: "already_registered", Message: "this identity is already registered as a provider"}
	ErrUnauthorized      = &Error{Kind: KindAuthorization, Code: "unauthorized", Message: "only registered and active providers can do this"}
	ErrNotOwned          = &Error{Kind: KindAuthorization, Code: "not_owned", Message: "service not found or not yours"}
	ErrNotFound          = &Error{Kind: KindNotFound, Code: "not_found", Message: "not found"}
	ErrInvalidInput      = &Error{Kind: KindValidation, Code: "invalid_input", Message: "invalid input"}
	ErrPastStartTime     = &Error{Kind: KindValidation, Code: "past_start_time", Message: "slots cannot start in the past"}
	ErrDuplicateStart    = &Error{Kind: KindConflict, Code: "duplicate_start", Message: "a slot with this start time already exists"}
	ErrOverlap           = &Error{Kind: KindConflict, Code: "overlap", Message: "slot overlaps an existing slot"}
	ErrSlotUnavailable   = &Error{Kind: KindConflict, Code: "slot_unavailable", Message: "this slot is already taken or no longer available"}
	ErrStoreUnavailable  = &Error{Kind: KindTransient, Code: "store_unavailable", Message: "temporary failure, please try again later"}
	ErrNotifyFailed      = &Error{Kind: KindNotification, Code: "notify_failed", Message: "notification could not be delivered"}
)

// With returns a copy of base carrying a more specific message.
func With(base *Error, format string, args ...any) error {
	return &Error{Kind: base.Kind, Code: base.Code, Message: fmt.Sprintf(format, args...)}
}

// Invalid is shorthand for an InvalidInput failure with a corrective hint.
func Invalid(format string, args ...any) error {
	return With(ErrInvalidInput, format, args...)
}

// Transient wraps an underlying store failure. The cause stays reachable
// through errors.Unwrap for logging but is never shown to callers.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindTransient, Code: ErrStoreUnavailable.Code, Message: ErrStoreUnavailable.Message, Err: err}
}

// KindOf reports the kind of err. Errors that are not *Error count as
// transient.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindTransient
}

// Public returns the code and message safe to show to the caller.
func Public(err error) (code, message string) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code, ae.Message
	}
	return ErrStoreUnavailable.Code, ErrStoreUnavailable.Message
}

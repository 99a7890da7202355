package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindNotFound         ErrorKind = "NotFound"
	KindDuplicateKey     ErrorKind = "DuplicateKey"
	KindInvalidState     ErrorKind = "InvalidState"
	KindCapacityExceeded ErrorKind = "CapacityExceeded"
	KindConflict         ErrorKind = "Conflict"
	KindUnauthorized     ErrorKind = "Unauthorized"
	KindForbidden        ErrorKind = "Forbidden"
	KindValidation       ErrorKind = "Validation"
	KindInternal         ErrorKind = "Internal"
)

// Error is the failure type returned by every service. Message is safe to show
// to clients; Err carries the underlying cause when there is one.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
	// Details is rendered next to the message, e.g. the reservations blocking a delete.
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrDuplicateKey     = &Error{Kind: KindDuplicateKey}
	ErrInvalidState     = &Error{Kind: KindInvalidState}
	ErrCapacityExceeded = &Error{Kind: KindCapacityExceeded}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrInternal         = &Error{Kind: KindInternal}
)

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func notFound(message string) *Error {
	return newError(KindNotFound, message, nil)
}

func validation(err error) *Error {
	return newError(KindValidation, err.Error(), nil)
}

func internal(message string, err error) *Error {
	return newError(KindInternal, message, err)
}

// storeError classifies a store failure: record-not-found becomes NotFound with
// notFoundMsg, anything else Internal with internalMsg.
func storeError(err error, notFoundMsg, internalMsg string) *Error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(notFoundMsg)
	}
	return internal(internalMsg, err)
}

// KindOf returns the kind of err, Internal for errors not produced by this package.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// Package apperr defines the typed failures returned by the domain layers.
// Every error carries a stable Kind that the HTTP layer maps to a status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable, client-visible error category.
type Kind string

const (
	KindUnauthenticated  Kind = "Unauthenticated"
	KindInsufficientRole Kind = "InsufficientRole"
	KindNotOwner         Kind = "NotOwner"
	KindNotFound         Kind = "NotFound"
	KindInvalidParent    Kind = "InvalidParent"
	KindSelfParent       Kind = "SelfParent"
	KindHasPosts         Kind = "HasPosts"
	KindValidationFailed Kind = "ValidationFailed"
	KindStoreUnavailable Kind = "StoreUnavailable"
)

// Error is a domain failure with an optional payload.
type Error struct {
	Kind    Kind
	Message string
	// Count is the number of referencing posts for HasPosts.
	Count int
	// Fields maps field names to messages for ValidationFailed.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInsufficientRole, KindNotOwner:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidParent, KindSelfParent, KindHasPosts, KindValidationFailed:
		return http.StatusBadRequest
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func InsufficientRole(msg string) *Error {
	return &Error{Kind: KindInsufficientRole, Message: msg}
}

func NotOwner(msg string) *Error {
	return &Error{Kind: KindNotOwner, Message: msg}
}

// NotFound reports a missing record, e.g. NotFound("category").
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func InvalidParent(msg string) *Error {
	return &Error{Kind: KindInvalidParent, Message: msg}
}

func SelfParent() *Error {
	return &Error{Kind: KindSelfParent, Message: "category cannot be its own parent"}
}

// HasPosts reports that a category is still referenced by count posts.
func HasPosts(count int) *Error {
	return &Error{
		Kind:    KindHasPosts,
		Message: fmt.Sprintf("category has %d associated posts; use force=true to delete anyway", count),
		Count:   count,
	}
}

// Validation reports per-field input problems.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidationFailed, Message: "validation failed", Fields: fields}
}

// Invalid is shorthand for a single-field validation failure.
func Invalid(field, msg string) *Error {
	return Validation(map[string]string{field: msg})
}

// StoreUnavailable wraps a persistence failure.
func StoreUnavailable(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: "storage is unavailable", Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

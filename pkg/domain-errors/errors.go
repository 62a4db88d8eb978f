// Package derrors provides coded domain errors.
//
// Services return these so transports can map failures to status codes
// without string matching, and so tests can assert on the failure kind
// rather than on message text. Stores do not use this package directly;
// they return pkg/platform/sentinel errors which services translate here.
package derrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// Generic codes.
	CodeInvalidInput       Code = "invalid_input"
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"

	// Relationship pipeline rejections.
	CodeInvalidKinshipType    Code = "invalid_kinship_type"
	CodeSelfRelation          Code = "self_relation_not_allowed"
	CodeDuplicateParentRole   Code = "duplicate_parent_role"
	CodeDuplicateRelationship Code = "duplicate_relationship"

	// CodeOwnership covers both "record does not exist" and "record belongs
	// to another tenant". The two cases are deliberately indistinguishable
	// so responses never leak cross-tenant existence.
	CodeOwnership Code = "ownership_violation"

	// CodeInvalidParameter rejects malformed duplicate-scan parameters
	// (threshold outside [0,100], non-positive limit).
	CodeInvalidParameter Code = "invalid_parameter"
)

// Error is a domain error with a stable code and human-readable message.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New constructs a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is/errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, wrapped: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.wrapped
		de = nil
	}
	return false
}

// CodeOf returns the outermost domain error code, or CodeInternal when err
// is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost domain error message, or an empty string
// when err is not a domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

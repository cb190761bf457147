// Package errors carries the coded errors returned across the combat core.
// Callers branch on the code with the Is* predicates; the message is for
// logs and players.
package errors

import (
	"errors"
	"fmt"
	"maps"
)

// Code categorizes an Error
type Code string

const (
	CodeUnknown            Code = "unknown"
	CodeInvalidArgument    Code = "invalid_argument" // malformed input or record
	CodeNotFound           Code = "not_found"        // combatant, action or encounter lookup
	CodeAlreadyExists      Code = "already_exists"   // registered twice
	CodeNotYourTurn        Code = "not_your_turn"    // acting outside the actor's turn
	CodeFailedPrecondition Code = "failed_precondition"
	CodeInternal           Code = "internal"
	CodeUnavailable        Code = "unavailable" // a store or sink could not be reached
	CodeValidation         Code = "validation"  // a legal request the battlefield refuses
)

// Error is a coded error with optional cause and metadata
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap exposes the cause to errors.Is and errors.As
func (e *Error) Unwrap() error { return e.Cause }

// WithMeta attaches a key to the error and returns it
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func newf(code Code, format string, args ...any) *Error {
	return newError(code, fmt.Sprintf(format, args...))
}

// Wrap adds context to err. A wrapped *Error keeps its code and metadata;
// anything else becomes CodeUnknown. Wrap(nil) is nil.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	out := &Error{Code: CodeUnknown, Message: message, Cause: err}
	if inner, ok := as(err); ok {
		out.Code = inner.Code
		out.Meta = maps.Clone(inner.Meta)
	}
	return out
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps err and forces the code
func WrapWithCode(err error, code Code, message string) *Error {
	wrapped := Wrap(err, message)
	if wrapped != nil {
		wrapped.Code = code
	}
	return wrapped
}

func NotFoundf(format string, args ...any) *Error { return newf(CodeNotFound, format, args...) }

func InvalidArgument(message string) *Error { return newError(CodeInvalidArgument, message) }

func InvalidArgumentf(format string, args ...any) *Error {
	return newf(CodeInvalidArgument, format, args...)
}

func AlreadyExistsf(format string, args ...any) *Error {
	return newf(CodeAlreadyExists, format, args...)
}

func Internalf(format string, args ...any) *Error { return newf(CodeInternal, format, args...) }

// NotYourTurn is returned when actorID acts while someone else is up
func NotYourTurn(actorID string) *Error {
	return newf(CodeNotYourTurn, "not %s's turn", actorID).WithMeta("actor_id", actorID)
}

// FailedPreconditionf reports an encounter in the wrong lifecycle state
func FailedPreconditionf(format string, args ...any) *Error {
	return newf(CodeFailedPrecondition, format, args...)
}

// Unavailable wraps a store or sink failure
func Unavailable(err error, message string) *Error {
	return WrapWithCode(err, CodeUnavailable, message)
}

func Validationf(format string, args ...any) *Error { return newf(CodeValidation, format, args...) }

func as(err error) (*Error, bool) {
	var coded *Error
	ok := errors.As(err, &coded)
	return coded, ok
}

// Is reports whether err, or anything it wraps, is an *Error with code
func Is(err error, code Code) bool {
	coded, ok := as(err)
	return ok && coded.Code == code
}

func IsNotFound(err error) bool           { return Is(err, CodeNotFound) }
func IsInvalidArgument(err error) bool    { return Is(err, CodeInvalidArgument) }
func IsAlreadyExists(err error) bool      { return Is(err, CodeAlreadyExists) }
func IsNotYourTurn(err error) bool        { return Is(err, CodeNotYourTurn) }
func IsFailedPrecondition(err error) bool { return Is(err, CodeFailedPrecondition) }
func IsValidation(err error) bool         { return Is(err, CodeValidation) }

// GetMeta returns the metadata of the outermost *Error in err
func GetMeta(err error) map[string]any {
	if coded, ok := as(err); ok {
		return coded.Meta
	}
	return nil
}

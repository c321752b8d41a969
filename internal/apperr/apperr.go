// Package apperr defines the small set of error kinds callers must branch
// on, covering the engine driver and provider adapter contracts. Every
// other error in this codebase stays a plain wrapped fmt.Errorf, matching
// the rest of the services package.
package apperr

import "errors"

// Kind identifies one of the branchable error categories.
type Kind string

const (
	KindEngineFailure Kind = "engine_failure"
	KindEngineTimeout Kind = "engine_timeout"
	KindUserNotFound  Kind = "user_not_found"
	KindRateLimited   Kind = "rate_limited"
	KindTransient     Kind = "transient"
	KindFatal         Kind = "fatal"
)

// Error is a typed error carrying a Kind plus the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Msg: msg, Err: cause}
}

func EngineFailure(msg string, cause error) *Error { return newError(KindEngineFailure, msg, cause) }
func EngineTimeout(msg string, cause error) *Error { return newError(KindEngineTimeout, msg, cause) }
func UserNotFound(msg string, cause error) *Error  { return newError(KindUserNotFound, msg, cause) }
func RateLimited(msg string, cause error) *Error   { return newError(KindRateLimited, msg, cause) }
func Transient(msg string, cause error) *Error     { return newError(KindTransient, msg, cause) }
func Fatal(msg string, cause error) *Error         { return newError(KindFatal, msg, cause) }

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, k Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == k
	}
	return false
}

// KindOf extracts the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

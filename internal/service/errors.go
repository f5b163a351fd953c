package service

import (
	"errors"
	"fmt"
	"time"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindBusinessRule
	KindInvalidFormat
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindBusinessRule:
		return "business_rule"
	case KindInvalidFormat:
		return "invalid_format"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func newError(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Validation(msg string) error    { return newError(KindValidation, msg) }
func NotFound(msg string) error      { return newError(KindNotFound, msg) }
func Forbidden(msg string) error     { return newError(KindForbidden, msg) }
func Conflict(msg string) error      { return newError(KindConflict, msg) }
func BusinessRule(msg string) error  { return newError(KindBusinessRule, msg) }
func InvalidFormat(msg string) error { return newError(KindInvalidFormat, msg) }

// KindOf reports KindInternal for anything that is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Internal wraps store and infrastructure failures with op while letting
// classified errors through untouched.
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

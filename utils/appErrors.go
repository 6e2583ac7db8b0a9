package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies failures for the HTTP boundary.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// AppError is an error whose message is safe to return to the client.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...interface{}) error {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) error {
	return newError(KindValidation, format, args...)
}

func Unauthenticatedf(format string, args ...interface{}) error {
	return newError(KindUnauthenticated, format, args...)
}

func Forbiddenf(format string, args ...interface{}) error {
	return newError(KindAuthorization, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return newError(KindNotFound, format, args...)
}

func Conflictf(format string, args ...interface{}) error {
	return newError(KindConflict, format, args...)
}

// AsValidation tags err as a validation failure, keeping its message.
func AsValidation(err error) error {
	if err == nil {
		return nil
	}
	return &AppError{Kind: KindValidation, Message: err.Error(), Err: err}
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// PublicMessage returns the client-facing message for err. Internal errors
// never leak their text.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}

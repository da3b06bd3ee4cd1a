package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindRetryable   ErrorKind = "retryable"
	KindGateway     ErrorKind = "gateway"
	KindInternal    ErrorKind = "internal"
	KindStorage     ErrorKind = "storage"
	KindUnreachable ErrorKind = "unreachable"
)

// Error carries a machine-readable kind next to a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
	// EstimatedTime is the suggested wait in seconds, set for KindRetryable.
	EstimatedTime float64
	Err           error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err, or KindInternal for untyped errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

func NewStorageError(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

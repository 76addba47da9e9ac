package domain

import (
	"errors"
	"fmt"
)

type FailureKind string

const (
	// FailureNotFound: the service does not recognize the character or realm.
	FailureNotFound FailureKind = "not_found"
	// FailureService: timeout, network failure, or a non-2xx other than 404.
	FailureService FailureKind = "service_error"
	// FailureMalformed: the response parsed but lacks required fields.
	FailureMalformed FailureKind = "malformed_response"
	// FailureContract: the run matrix broke its completeness postcondition.
	// Always an internal bug, never a user error.
	FailureContract FailureKind = "contract_violation"
)

// Error is the typed failure carried from fetch and aggregation stages up to
// the pipeline driver.
type Error struct {
	Kind    FailureKind
	Message string
	Err     error
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

func NewError(kind FailureKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind FailureKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Errorf(kind FailureKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf classifies err. Errors outside the taxonomy (including context
// deadline expiry on a fetch) count as service errors.
func KindOf(err error) FailureKind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return FailureService
}

func IsKind(err error, kind FailureKind) bool {
	return KindOf(err) == kind
}

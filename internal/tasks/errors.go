package tasks

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is malformed input rejected before any remote call.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

func invalidValue(field, value string, allowed []string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: "must be one of " + strings.Join(allowed, ", "),
	}
}

// NotFoundError is a lookup that found nothing (identity, task).
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// RemoteError is a failed call to the task store or its malformed response.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Error kinds reported in results.
const (
	KindValidation = "validation"
	KindNotFound   = "not_found"
	KindRemote     = "remote"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return KindNotFound
	}
	return KindRemote
}

package apperr

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when the GitHub publish target is missing
// required settings. Callers should prompt for configuration rather than retry.
var ErrInvalidConfig = errors.New("github configuration is incomplete")

// NotFoundError indicates the requested resource does not exist, either in the
// local post store or in the remote repository.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NotFound constructs a NotFoundError for the named resource.
func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// TransportError carries the status and response body of a failed remote call.
// Status is 0 when the request never produced an HTTP response.
type TransportError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// DecodeError indicates remote file content could not be decoded
// (malformed base64 or invalid UTF-8).
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Unknown wraps an unexpected error with the operation that produced it.
func Unknown(op string, err error) error {
	return fmt.Errorf("%s: unexpected error: %w", op, err)
}

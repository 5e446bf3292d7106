package errors

import (
	"errors"
	"fmt"
)

var (
	ErrStudentNotFound       = errors.New("student not found")
	ErrQueueFull             = errors.New("submission queue is full")
	ErrItemNotFound          = errors.New("submission item not found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrEndpointNotConfigured = errors.New("submission endpoint not configured")
	ErrInvalidFileFormat     = errors.New("invalid file format")
	ErrHeaderNotFound        = errors.New("roster header row not found")
	ErrInvalidResponse       = errors.New("invalid response from submission endpoint")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// TransportError marks a failure to reach the endpoint or read its reply.
type TransportError struct {
	Err     error
	Message string
}

func (e TransportError) Error() string {
	return fmt.Sprintf("transport error: %s - %s", e.Message, e.Err.Error())
}

func (e TransportError) Unwrap() error {
	return e.Err
}

func NewTransportError(err error, message string) error {
	return TransportError{
		Err:     err,
		Message: message,
	}
}

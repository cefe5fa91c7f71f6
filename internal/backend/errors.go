package backend

import (
	"errors"
	"fmt"
)

// ApplicationError is returned when the backend handled the request but
// reported a failure of its own (success:false, or an error detail).
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// TransportError wraps network failures, unexpected status codes and
// undecodable responses. Op names the backend call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsApplicationError reports whether err carries a backend-reported failure.
func IsApplicationError(err error) bool {
	var appErr *ApplicationError
	return errors.As(err, &appErr)
}

// IsTransportError reports whether err is a transport or decode failure.
func IsTransportError(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrStatus marks a response outside the 2xx range.
	ErrStatus = errors.New("transport: unexpected status")
	// ErrNotJSON marks a response body that does not parse as JSON.
	ErrNotJSON = errors.New("transport: response is not JSON")
)

// Error is the single failure type returned by Client.Do.
type Error struct {
	Method string
	Path   string
	// Status is zero when no response was received.
	Status int
	Body   []byte
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Status != 0 {
		return fmt.Sprintf("transport: %s %s: status %d: %v", e.Method, e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("transport: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusCode returns the HTTP status of the failed response, or zero.
func (e *Error) StatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}

// IsError reports whether err carries a transport failure.
func IsError(err error) bool {
	var target *Error
	return errors.As(err, &target)
}

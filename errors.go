package manna

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or record failed validation.
	ErrValidation = errors.New("validation error")

	// ErrBlankInput indicates an attempt to send a message with no visible text.
	ErrBlankInput = errors.New("message is blank")

	// ErrInFlight indicates an assistant reply is still pending or streaming.
	ErrInFlight = errors.New("assistant reply in progress")

	// ErrNotInFlight indicates a reply mutation with no reply in progress.
	ErrNotInFlight = errors.New("no assistant reply in progress")

	// ErrStreamNotReady indicates Reply() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrNoResponseBody indicates a successful response that carried no body.
	ErrNoResponseBody = errors.New("no response body")

	// ErrSignedOut indicates an operation that requires a signed-in member.
	ErrSignedOut = errors.New("sign in required")

	// ErrForbidden indicates the signed-in member's role is too low.
	ErrForbidden = errors.New("insufficient role")

	// ErrNotFound indicates a missing record.
	ErrNotFound = errors.New("not found")
)

// TransportError is a chat request the server answered with a non-success
// status. No assistant reply exists for it.
type TransportError struct {
	StatusCode int
	Message    string // server-supplied, may be empty
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("chat request failed with status %d", e.StatusCode)
}

// StreamError is a failure after the reply started streaming. The reply keeps
// the content received before the failure.
type StreamError struct {
	Partial string
	Err     error
}

func (e *StreamError) Error() string {
	return "reply interrupted: " + e.Err.Error()
}

func (e *StreamError) Unwrap() error { return e.Err }

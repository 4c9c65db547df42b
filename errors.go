package microbus

import (
	"errors"
	"fmt"
)

// Sentinel errors for the bus and loop.
var (
	// ErrNilHandler is returned when a nil handler is passed to Subscribe.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrNotFunc is returned when a Subscribe handler is not a function.
	ErrNotFunc = errors.New("handler must be a function")

	// ErrBadHandlerShape is returned when a handler function has results
	// other than a single trailing error.
	ErrBadHandlerShape = errors.New("handler may return nothing or a single error")

	// ErrSignatureMismatch is returned when argument types do not match the
	// signature fixed by an event's first subscriber.
	ErrSignatureMismatch = errors.New("argument types do not match event signature")

	// ErrLoopStopped is returned when Enqueue is called after Stop.
	ErrLoopStopped = errors.New("event loop is stopped")

	// ErrQueueFull is returned by a bounded loop when its queue is at capacity.
	ErrQueueFull = errors.New("event queue is full")
)

// SignatureError reports a mismatch between an event's fixed signature and
// the signature offered at subscribe or trigger time.
type SignatureError struct {
	// Event is the event name whose signature was violated.
	Event string

	// Want is the signature fixed by the event's first subscriber.
	Want Signature

	// Got is the offending signature.
	Got Signature
}

// Error implements the error interface.
func (e *SignatureError) Error() string {
	return fmt.Sprintf("event %q: signature mismatch: want %s, got %s", e.Event, e.Want, e.Got)
}

// Is allows errors.Is to match SignatureError with ErrSignatureMismatch.
func (e *SignatureError) Is(target error) bool {
	return target == ErrSignatureMismatch
}

// HandlerError wraps an error returned by a subscribed handler with the
// event name and subscription that produced it.
type HandlerError struct {
	// Event is the event name being triggered.
	Event string

	// SubscriptionID is the id of the subscription whose handler failed.
	SubscriptionID int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler error for subscription %d on event %q: %v", e.SubscriptionID, e.Event, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

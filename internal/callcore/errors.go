package callcore

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrAlreadyInitialized is returned by Init when called twice on the same Core.
	ErrAlreadyInitialized = errors.New("callcore: already initialized")

	// ErrNotInitialized is returned by Submit/Shutdown before Init has succeeded.
	ErrNotInitialized = errors.New("callcore: not initialized")

	// ErrNilSink is returned by Init when the VoIP sink is nil.
	ErrNilSink = errors.New("callcore: voip sink is nil")

	// ErrNilCallback is returned by Init when the application callback is nil.
	ErrNilCallback = errors.New("callcore: app callback is nil")

	// ErrInvalidConfig is returned by Init when Config fails validation.
	ErrInvalidConfig = errors.New("callcore: invalid config")

	// ErrShutdown is returned by Submit after Shutdown has been called.
	ErrShutdown = errors.New("callcore: core is shut down")
)

// ProtocolViolationError records an event arriving in a state where it
// is not defined by the transition table. The core logs it at error
// level, emits a ProtocolError callback, and leaves the Call in its
// current state rather than crashing.
type ProtocolViolationError struct {
	CallID uint32
	ReqID  uint32
	State  CallState
	Event  string
}

// Error returns the error message.
func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("protocol violation: call=%d req=%d event=%s not valid in state %s",
		e.CallID, e.ReqID, e.Event, e.State)
}

// CorrelationError records an inbound message whose req_id/call_id
// does not resolve to a known Call. The message is stale: it is logged
// and dropped, and never reaches the application.
type CorrelationError struct {
	ReqID  uint32
	CallID uint32
	Event  string
	Reason string
}

// Error returns the error message.
func (e *CorrelationError) Error() string {
	return fmt.Sprintf("correlation failure: req=%d call=%d event=%s: %s",
		e.ReqID, e.CallID, e.Event, e.Reason)
}

package callcore

import "fmt"

// ForwardMessage is the closed tagged union of messages flowing from
// the application into the core and on to VoIP. Concrete types are
// InitiateCallRequest, DropRequest, and PlayFileRequest; the set is
// closed by the unexported isForward marker so no outside package can
// add a new variant: dispatch is by structural match, one handler
// branch per variant, with no open extensibility.
type ForwardMessage interface {
	isForward()
	// ReqID returns the request id carried by this message.
	ReqID() uint32
}

// InitiateCallRequest asks VoIP to place a call to party.
type InitiateCallRequest struct {
	ReqIDVal uint32
	Party    string
}

func (InitiateCallRequest) isForward()      {}
func (r InitiateCallRequest) ReqID() uint32 { return r.ReqIDVal }

// DropRequest asks VoIP to tear down call_id (0 if not yet known).
type DropRequest struct {
	ReqIDVal uint32
	CallID   uint32
}

func (DropRequest) isForward()      {}
func (r DropRequest) ReqID() uint32 { return r.ReqIDVal }

// PlayFileRequest asks VoIP to play filename into call_id.
type PlayFileRequest struct {
	ReqIDVal uint32
	CallID   uint32
	Filename string
}

func (PlayFileRequest) isForward()      {}
func (r PlayFileRequest) ReqID() uint32 { return r.ReqIDVal }

// CallbackMessage is the closed tagged union of messages flowing from
// VoIP into the core and on to the application.
type CallbackMessage interface {
	isCallback()
}

// InitiateCallResponse acknowledges an InitiateCallRequest with a freshly minted call_id.
type InitiateCallResponse struct {
	ReqID  uint32
	CallID uint32
}

func (InitiateCallResponse) isCallback() {}

// ErrorResponse reports a request-scoped error.
type ErrorResponse struct {
	ReqID uint32
	Descr string
}

func (ErrorResponse) isCallback() {}

// RejectResponse reports a request-scoped rejection (e.g. busy dialer, full queue).
type RejectResponse struct {
	ReqID uint32
	Descr string
}

func (RejectResponse) isCallback() {}

// DropResponse confirms a DropRequest completed.
type DropResponse struct {
	ReqID uint32
}

func (DropResponse) isCallback() {}

// PlayFileResponse confirms a PlayFileRequest completed.
type PlayFileResponse struct {
	ReqID uint32
}

func (PlayFileResponse) isCallback() {}

// Dialing reports that the far end is being dialed.
type Dialing struct {
	CallID uint32
}

func (Dialing) isCallback() {}

// Ringing reports a provisional ringing indication.
type Ringing struct {
	CallID uint32
}

func (Ringing) isCallback() {}

// Connected reports that the call was answered.
type Connected struct {
	CallID uint32
}

func (Connected) isCallback() {}

// FailedType classifies why a call failed to connect.
type FailedType int

const (
	// FailedGeneric is an unclassified failure.
	FailedGeneric FailedType = iota
	// FailedRefused means the far end actively refused the call.
	FailedRefused
	// FailedBusy means the far end was busy.
	FailedBusy
	// FailedNoAnswer means the far end never answered.
	FailedNoAnswer
)

// String returns the human-readable name of the failure type.
func (t FailedType) String() string {
	switch t {
	case FailedGeneric:
		return "FAILED"
	case FailedRefused:
		return "REFUSED"
	case FailedBusy:
		return "BUSY"
	case FailedNoAnswer:
		return "NOANSWER"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Failed reports that a call could not be connected, or died while waiting to connect.
type Failed struct {
	CallID    uint32
	Type      FailedType
	ErrorCode int
	Descr     string
}

func (Failed) isCallback() {}

// ConnectionLost reports that an established call dropped unexpectedly.
type ConnectionLost struct {
	CallID    uint32
	ErrorCode int
	Descr     string
}

func (ConnectionLost) isCallback() {}

// DtmfTone reports a DTMF digit received on an established call.
type DtmfTone struct {
	CallID uint32
	Tone   rune
}

func (DtmfTone) isCallback() {}

// CallDuration reports elapsed seconds on an established call. It is
// informational; the controller does not act on it.
type CallDuration struct {
	CallID  uint32
	Seconds uint32
}

func (CallDuration) isCallback() {}

// ProtocolError is emitted to the application when an event arrives
// that is not valid in the Call's current state. The Call is left in
// place rather than torn down; the application decides what to do.
type ProtocolError struct {
	CallID uint32
	ReqID  uint32
	State  CallState
	Event  string
}

func (ProtocolError) isCallback() {}

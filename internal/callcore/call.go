package callcore

import "fmt"

// call is the per-call state machine. It is owned
// exclusively by Core; every method here runs under Core's single
// coarse lock and returns the at-most-one forward message
// and at-most-one callback message the transition produces, plus
// whether the Call has reached DONE. Handlers never call out to
// VoipSink/AppCallback themselves — Core does that after the lock
// accounting is settled, keeping call.go free of I/O.
type call struct {
	party  string
	state  CallState
	callID uint32

	// initReqID is the req_id of the InitiateCallRequest that created
	// this Call. It never changes and is the admission-accounting key
	// for as long as callID is unset (see Core.cleanupTerminal).
	initReqID uint32

	// currentReqID is the single outstanding request id on this Call;
	// at most one may be in flight at a time. Zero means none.
	currentReqID uint32

	// pendingDropReqID records a drop's req_id while the Call is
	// cancelled but the drop has not yet been forwarded (WICR) or not
	// yet resolved (WC/C/CB), so it can be validated/emitted later.
	pendingDropReqID uint32

	// pendingPlayReqID records the play req_id a drop superseded in
	// CONNECTED_BUSY, so the play's late response can still be
	// correlated and absorbed.
	pendingPlayReqID uint32
}

// transitionResult carries the effect of handling one event: at most
// one outbound forward, at most one application callback, and whether
// the Call reached DONE. indexReqID/unindexReqID ask Core to keep or
// release an extra req_id correlation beyond the current one.
type transitionResult struct {
	forward      ForwardMessage
	callback     CallbackMessage
	terminal     bool
	indexReqID   uint32
	unindexReqID uint32
}

func protoViolation(callID, reqID uint32, state CallState, event string) transitionResult {
	return transitionResult{
		callback: ProtocolError{CallID: callID, ReqID: reqID, State: state, Event: event},
	}
}

// newCall creates a Call in IDLE, representing a request the admission
// controller has accepted but not necessarily dispatched yet (it may
// sit in the pending FIFO queue if max_active_calls is already
// saturated). dispatch must be called once a slot is available to
// move it into WAITING_INITIATE_CALL_RESP and obtain the forward
// message.
func newCall(reqID uint32, party string) *call {
	return &call{
		party:     party,
		state:     StateIdle,
		initReqID: reqID,
	}
}

// dispatch moves an IDLE Call into WAITING_INITIATE_CALL_RESP and
// returns the InitiateCallRequest to forward to VoIP.
func (c *call) dispatch() ForwardMessage {
	c.currentReqID = c.initReqID
	c.state = StateWaitingInitiateResp
	return InitiateCallRequest{ReqIDVal: c.initReqID, Party: c.party}
}

// handleDropRequest applies a DropRequest whose target Call has
// already been resolved by Core (either by call_id lookup, or by the
// call_id==0 pending-initiate correlation rule in core.go).
func (c *call) handleDropRequest(dropReqID uint32) transitionResult {
	switch c.state {
	case StateIdle:
		c.state = StateDone
		return transitionResult{callback: DropResponse{ReqID: dropReqID}, terminal: true}

	case StateWaitingInitiateResp:
		c.pendingDropReqID = dropReqID
		c.state = StateCancelledInWICR
		return transitionResult{}

	case StateWaitingConnected:
		c.pendingDropReqID = dropReqID
		c.currentReqID = dropReqID
		c.state = StateCancelledInWC
		return transitionResult{forward: DropRequest{ReqIDVal: dropReqID, CallID: c.callID}}

	case StateConnected:
		c.pendingDropReqID = dropReqID
		c.currentReqID = dropReqID
		c.state = StateCancelledInC
		return transitionResult{forward: DropRequest{ReqIDVal: dropReqID, CallID: c.callID}}

	case StateConnectedBusy:
		c.pendingPlayReqID = c.currentReqID
		c.pendingDropReqID = dropReqID
		c.currentReqID = dropReqID
		c.state = StateCancelledInCB
		return transitionResult{
			forward:    DropRequest{ReqIDVal: dropReqID, CallID: c.callID},
			indexReqID: c.pendingPlayReqID,
		}

	case StateCancelledInWICR, StateCancelledInWC, StateCancelledInC, StateCancelledInCB, StateWrongConnected:
		// A drop is already in flight for this Call: the new drop is a
		// duplicate cancellation attempt, rejected synchronously so
		// that one DropRequest yields exactly one DropResponse.
		return transitionResult{callback: RejectResponse{
			ReqID: dropReqID,
			Descr: fmt.Sprintf("drop already in flight, req_id=%d", c.pendingDropReqID),
		}}

	default: // StateDone - unreachable via Core (the Call is removed from the maps at DONE)
		return protoViolation(c.callID, dropReqID, c.state, "DropRequest")
	}
}

// handlePlayFileRequest applies a PlayFileRequest for an already
// resolved (by call_id) Call.
func (c *call) handlePlayFileRequest(reqID uint32) transitionResult {
	switch c.state {
	case StateConnected:
		c.currentReqID = reqID
		c.state = StateConnectedBusy
		return transitionResult{forward: PlayFileRequest{ReqIDVal: reqID, CallID: c.callID}}

	case StateConnectedBusy:
		return transitionResult{callback: RejectResponse{
			ReqID: reqID,
			Descr: fmt.Sprintf("play already in flight, req_id=%d", c.currentReqID),
		}}

	default:
		return protoViolation(c.callID, reqID, c.state, "PlayFileRequest")
	}
}

// handleInitiateCallResponse applies InitiateCallResponse(req_id, call_id).
func (c *call) handleInitiateCallResponse(reqID, callID uint32) transitionResult {
	switch c.state {
	case StateWaitingInitiateResp:
		if reqID != c.currentReqID {
			return protoViolation(callID, reqID, c.state, "InitiateCallResponse")
		}
		c.currentReqID = 0
		c.callID = callID
		c.state = StateWaitingConnected
		return transitionResult{callback: InitiateCallResponse{ReqID: reqID, CallID: callID}}

	case StateCancelledInWICR:
		c.callID = callID
		dropReqID := c.pendingDropReqID
		c.currentReqID = dropReqID
		c.state = StateCancelledInWC
		return transitionResult{forward: DropRequest{ReqIDVal: dropReqID, CallID: callID}}

	default:
		return protoViolation(callID, reqID, c.state, "InitiateCallResponse")
	}
}

// handleErrorOrReject applies ErrorResponse/RejectResponse(req_id, descr).
func (c *call) handleErrorOrReject(reqID uint32, descr string, reject bool) transitionResult {
	makeResp := func() CallbackMessage {
		if reject {
			return RejectResponse{ReqID: reqID, Descr: descr}
		}
		return ErrorResponse{ReqID: reqID, Descr: descr}
	}

	switch c.state {
	case StateWaitingInitiateResp:
		if reqID != c.currentReqID {
			return protoViolation(c.callID, reqID, c.state, "Error/RejectResponse")
		}
		c.state = StateDone
		return transitionResult{callback: makeResp(), terminal: true}

	case StateCancelledInWICR:
		// The late response only matters insofar as it lets the
		// cancelled Call terminate; the app only ever learns the drop
		// completed.
		c.state = StateDone
		return transitionResult{callback: DropResponse{ReqID: c.pendingDropReqID}, terminal: true}

	case StateConnectedBusy:
		if reqID != c.currentReqID {
			return protoViolation(c.callID, reqID, c.state, "ErrorResponse")
		}
		c.currentReqID = 0
		c.state = StateConnected
		return transitionResult{callback: makeResp()}

	case StateCancelledInCB:
		// The play's outcome no longer matters once a drop is in
		// flight; absorb it and keep waiting on the drop.
		absorbed := c.pendingPlayReqID
		c.pendingPlayReqID = 0
		c.state = StateCancelledInC
		return transitionResult{unindexReqID: absorbed}

	default:
		return protoViolation(c.callID, reqID, c.state, "Error/RejectResponse")
	}
}

// handleDropResponse applies DropResponse(req_id).
func (c *call) handleDropResponse(reqID uint32) transitionResult {
	switch c.state {
	case StateCancelledInWICR:
		c.state = StateDone
		return transitionResult{callback: DropResponse{ReqID: c.pendingDropReqID}, terminal: true}

	case StateCancelledInWC, StateCancelledInC, StateCancelledInCB:
		if reqID != c.currentReqID {
			return protoViolation(c.callID, reqID, c.state, "DropResponse")
		}
		c.state = StateDone
		return transitionResult{callback: DropResponse{ReqID: reqID}, terminal: true}

	default:
		return protoViolation(c.callID, reqID, c.state, "DropResponse")
	}
}

// handlePlayFileResponse applies PlayFileResponse(req_id).
func (c *call) handlePlayFileResponse(reqID uint32) transitionResult {
	switch c.state {
	case StateConnectedBusy:
		if reqID != c.currentReqID {
			return protoViolation(c.callID, reqID, c.state, "PlayFileResponse")
		}
		c.currentReqID = 0
		c.state = StateConnected
		return transitionResult{callback: PlayFileResponse{ReqID: reqID}}

	case StateCancelledInCB:
		absorbed := c.pendingPlayReqID
		c.pendingPlayReqID = 0
		c.state = StateCancelledInC
		return transitionResult{unindexReqID: absorbed}

	default:
		return protoViolation(c.callID, reqID, c.state, "PlayFileResponse")
	}
}

// handleDialingOrRinging applies Dialing/Ringing(call_id); progress
// indications are logged only and never change state. After a
// cancellation they are simply late, like a late DtmfTone, and are
// absorbed rather than flagged.
func (c *call) handleDialingOrRinging(event string) transitionResult {
	switch c.state {
	case StateWaitingConnected,
		StateCancelledInWC, StateCancelledInC, StateCancelledInCB, StateWrongConnected:
		return transitionResult{}
	default:
		return protoViolation(c.callID, 0, c.state, event)
	}
}

// handleConnected applies Connected(call_id).
func (c *call) handleConnected() transitionResult {
	switch c.state {
	case StateWaitingConnected:
		c.state = StateConnected
		return transitionResult{callback: Connected{CallID: c.callID}}

	case StateCancelledInWC:
		c.state = StateWrongConnected
		return transitionResult{}

	default:
		return protoViolation(c.callID, 0, c.state, "Connected")
	}
}

// handleFailed applies Failed(call_id, type, errorcode, descr).
func (c *call) handleFailed(failType FailedType, errorCode int, descr string) transitionResult {
	switch c.state {
	case StateWaitingConnected:
		c.state = StateDone
		return transitionResult{
			callback: Failed{CallID: c.callID, Type: failType, ErrorCode: errorCode, Descr: descr},
			terminal: true,
		}

	case StateCancelledInWC:
		c.state = StateDone
		return transitionResult{callback: DropResponse{ReqID: c.pendingDropReqID}, terminal: true}

	default:
		return protoViolation(c.callID, 0, c.state, "Failed")
	}
}

// handleConnectionLost applies ConnectionLost(call_id, errorcode, descr).
func (c *call) handleConnectionLost(errorCode int, descr string) transitionResult {
	switch c.state {
	case StateConnected, StateConnectedBusy:
		c.state = StateDone
		return transitionResult{
			callback: ConnectionLost{CallID: c.callID, ErrorCode: errorCode, Descr: descr},
			terminal: true,
		}

	case StateWrongConnected, StateCancelledInC, StateCancelledInCB:
		c.state = StateDone
		return transitionResult{callback: DropResponse{ReqID: c.pendingDropReqID}, terminal: true}

	default:
		return protoViolation(c.callID, 0, c.state, "ConnectionLost")
	}
}

// handleDtmfTone applies DtmfTone(call_id, tone). Outside CONNECTED/
// CONNECTED_BUSY the tone is silently absorbed: a tone arriving after
// cancellation produces no application callback and is not treated as
// a protocol violation, it is simply late.
func (c *call) handleDtmfTone(tone rune) transitionResult {
	if c.state == StateConnected || c.state == StateConnectedBusy {
		return transitionResult{callback: DtmfTone{CallID: c.callID, Tone: tone}}
	}
	return transitionResult{}
}

// handleCallDuration applies CallDuration(call_id, seconds). Forwarded
// verbatim while connected; dropped otherwise, since a call has no
// business receiving duration updates before connecting or after DONE.
func (c *call) handleCallDuration(seconds uint32) transitionResult {
	if c.state == StateConnected || c.state == StateConnectedBusy {
		return transitionResult{callback: CallDuration{CallID: c.callID, Seconds: seconds}}
	}
	return transitionResult{}
}

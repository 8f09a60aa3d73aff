package callcore

import "testing"

func TestCallHappyPath(t *testing.T) {
	cl := newCall(1, "alice")
	if cl.state != StateIdle {
		t.Fatalf("newCall state = %s, want IDLE", cl.state)
	}

	fwd := cl.dispatch()
	if _, ok := fwd.(InitiateCallRequest); !ok {
		t.Fatalf("dispatch() forward = %T, want InitiateCallRequest", fwd)
	}
	if cl.state != StateWaitingInitiateResp {
		t.Fatalf("state after dispatch = %s, want WAITING_INITIATE_CALL_RESP", cl.state)
	}

	res := cl.handleInitiateCallResponse(1, 100)
	if cl.state != StateWaitingConnected {
		t.Fatalf("state after InitiateCallResponse = %s, want WAITING_CONNECTED", cl.state)
	}
	if _, ok := res.callback.(InitiateCallResponse); !ok {
		t.Fatalf("callback = %T, want InitiateCallResponse", res.callback)
	}

	res = cl.handleConnected()
	if cl.state != StateConnected {
		t.Fatalf("state after Connected = %s, want CONNECTED", cl.state)
	}
	if _, ok := res.callback.(Connected); !ok {
		t.Fatalf("callback = %T, want Connected", res.callback)
	}

	res = cl.handlePlayFileRequest(2)
	if cl.state != StateConnectedBusy {
		t.Fatalf("state after PlayFileRequest = %s, want CONNECTED_BUSY", cl.state)
	}
	if _, ok := res.forward.(PlayFileRequest); !ok {
		t.Fatalf("forward = %T, want PlayFileRequest", res.forward)
	}

	res = cl.handlePlayFileResponse(2)
	if cl.state != StateConnected {
		t.Fatalf("state after PlayFileResponse = %s, want CONNECTED", cl.state)
	}

	res = cl.handleDropRequest(3)
	if cl.state != StateCancelledInC {
		t.Fatalf("state after DropRequest = %s, want CANCELLED_IN_C", cl.state)
	}
	if _, ok := res.forward.(DropRequest); !ok {
		t.Fatalf("forward = %T, want DropRequest", res.forward)
	}

	res = cl.handleDropResponse(3)
	if !res.terminal || cl.state != StateDone {
		t.Fatalf("state after DropResponse = %s (terminal=%v), want DONE", cl.state, res.terminal)
	}
}

func TestCallCancelBeforeInitiateResponse(t *testing.T) {
	cl := newCall(1, "alice")
	cl.dispatch()

	res := cl.handleDropRequest(2)
	if cl.state != StateCancelledInWICR {
		t.Fatalf("state after drop in WICR = %s, want CANCELLED_IN_WICR", cl.state)
	}
	if res.forward != nil {
		t.Fatalf("drop in WICR must not forward yet, got %T", res.forward)
	}

	res = cl.handleInitiateCallResponse(1, 200)
	if cl.state != StateCancelledInWC {
		t.Fatalf("state after late InitiateCallResponse = %s, want CANCELLED_IN_WC", cl.state)
	}
	fwd, ok := res.forward.(DropRequest)
	if !ok {
		t.Fatalf("forward = %T, want DropRequest", res.forward)
	}
	if fwd.ReqIDVal != 2 || fwd.CallID != 200 {
		t.Fatalf("forwarded drop = %+v, want {ReqIDVal:2 CallID:200}", fwd)
	}

	res = cl.handleDropResponse(2)
	if !res.terminal || cl.state != StateDone {
		t.Fatalf("state after DropResponse = %s, want DONE", cl.state)
	}
	if _, ok := res.callback.(DropResponse); !ok {
		t.Fatalf("callback = %T, want DropResponse", res.callback)
	}
}

func TestCallWrongConnected(t *testing.T) {
	cl := newCall(1, "alice")
	cl.dispatch()
	cl.handleInitiateCallResponse(1, 300)

	res := cl.handleDropRequest(2)
	if cl.state != StateCancelledInWC {
		t.Fatalf("state after drop = %s, want CANCELLED_IN_WC", cl.state)
	}
	if _, ok := res.forward.(DropRequest); !ok {
		t.Fatalf("forward = %T, want DropRequest", res.forward)
	}

	res = cl.handleConnected()
	if cl.state != StateWrongConnected {
		t.Fatalf("state after race Connected = %s, want WRONG_CONNECTED", cl.state)
	}
	if res.callback != nil || res.forward != nil {
		t.Fatalf("wrong-connected transition must be silent, got %+v", res)
	}

	res = cl.handleConnectionLost(500, "peer hung up")
	if !res.terminal || cl.state != StateDone {
		t.Fatalf("state after ConnectionLost = %s, want DONE", cl.state)
	}
	if dr, ok := res.callback.(DropResponse); !ok || dr.ReqID != 2 {
		t.Fatalf("callback = %+v, want DropResponse{ReqID:2}", res.callback)
	}
}

func TestCallPlayRejectedWhileBusy(t *testing.T) {
	cl := newCall(1, "alice")
	cl.dispatch()
	cl.handleInitiateCallResponse(1, 100)
	cl.handleConnected()
	cl.handlePlayFileRequest(2)

	res := cl.handlePlayFileRequest(3)
	if cl.state != StateConnectedBusy {
		t.Fatalf("state after second play request = %s, want CONNECTED_BUSY unchanged", cl.state)
	}
	rej, ok := res.callback.(RejectResponse)
	if !ok || rej.ReqID != 3 {
		t.Fatalf("callback = %+v, want RejectResponse{ReqID:3}", res.callback)
	}
	if res.forward != nil {
		t.Fatalf("rejected play must not forward, got %T", res.forward)
	}
}

func TestCallDtmfAbsorbedAfterCancellation(t *testing.T) {
	cl := newCall(1, "alice")
	cl.dispatch()
	cl.handleInitiateCallResponse(1, 100)
	cl.handleConnected()

	res := cl.handleDtmfTone('*')
	if tone, ok := res.callback.(DtmfTone); !ok || tone.Tone != '*' {
		t.Fatalf("callback = %+v, want DtmfTone{'*'} while CONNECTED", res.callback)
	}

	cl.handleDropRequest(2)
	if cl.state != StateCancelledInC {
		t.Fatalf("state = %s, want CANCELLED_IN_C", cl.state)
	}

	res = cl.handleDtmfTone('*')
	if res.callback != nil || res.forward != nil {
		t.Fatalf("tone in CANCELLED_IN_C must be silently absorbed, got %+v", res)
	}
}

func TestCallDropWhileBusyAbsorbsPlayOutcome(t *testing.T) {
	cl := newCall(1, "alice")
	cl.dispatch()
	cl.handleInitiateCallResponse(1, 100)
	cl.handleConnected()
	cl.handlePlayFileRequest(2)

	res := cl.handleDropRequest(3)
	if cl.state != StateCancelledInCB {
		t.Fatalf("state after drop in CONNECTED_BUSY = %s, want CANCELLED_IN_CB", cl.state)
	}
	if _, ok := res.forward.(DropRequest); !ok {
		t.Fatalf("forward = %T, want DropRequest", res.forward)
	}

	// The pending play's outcome is absorbed, whether success or error.
	res = cl.handleErrorOrReject(2, "stream died", false)
	if res.callback != nil || res.forward != nil {
		t.Fatalf("play outcome after drop must be absorbed, got %+v", res)
	}
	if cl.state != StateCancelledInC {
		t.Fatalf("state = %s, want CANCELLED_IN_C", cl.state)
	}

	res = cl.handleDropResponse(3)
	if !res.terminal || cl.state != StateDone {
		t.Fatalf("state after DropResponse = %s (terminal=%v), want DONE", cl.state, res.terminal)
	}
	if dr, ok := res.callback.(DropResponse); !ok || dr.ReqID != 3 {
		t.Fatalf("callback = %+v, want DropResponse{ReqID:3}", res.callback)
	}
}

func TestCallLateRingingAbsorbedAfterCancel(t *testing.T) {
	cl := newCall(1, "alice")
	cl.dispatch()
	cl.handleInitiateCallResponse(1, 100)
	cl.handleDropRequest(2)

	res := cl.handleDialingOrRinging("Ringing")
	if res.callback != nil || res.forward != nil {
		t.Fatalf("ringing after cancellation must be absorbed, got %+v", res)
	}
	if cl.state != StateCancelledInWC {
		t.Fatalf("state = %s, want CANCELLED_IN_WC unchanged", cl.state)
	}
}

func TestCallProtocolViolation(t *testing.T) {
	cl := newCall(1, "alice")
	cl.dispatch()

	res := cl.handlePlayFileResponse(99)
	pe, ok := res.callback.(ProtocolError)
	if !ok {
		t.Fatalf("callback = %T, want ProtocolError", res.callback)
	}
	if pe.Event != "PlayFileResponse" || pe.State != StateWaitingInitiateResp {
		t.Fatalf("ProtocolError = %+v, unexpected fields", pe)
	}
	if cl.state != StateWaitingInitiateResp {
		t.Fatalf("state changed after protocol violation: %s", cl.state)
	}
}

package callcore

import "testing"

// TestScenarioHappyPath walks a call through initiate, connect, play,
// and drop.
func TestScenarioHappyPath(t *testing.T) {
	core, sink, app := newTestCore(t, Config{MaxActiveCalls: 1})

	core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"})
	core.Notify(InitiateCallResponse{ReqID: 1, CallID: 100})
	core.Notify(Dialing{CallID: 100})
	core.Notify(Ringing{CallID: 100})
	core.Notify(Connected{CallID: 100})

	wantSoFar := []CallbackMessage{
		InitiateCallResponse{ReqID: 1, CallID: 100},
		Connected{CallID: 100},
	}
	assertDelivered(t, app, wantSoFar)

	core.Submit(PlayFileRequest{ReqIDVal: 2, CallID: 100, Filename: "hello.wav"})
	core.Notify(PlayFileResponse{ReqID: 2})
	assertDelivered(t, app, append(wantSoFar, PlayFileResponse{ReqID: 2}))

	core.Submit(DropRequest{ReqIDVal: 3, CallID: 100})
	core.Notify(DropResponse{ReqID: 3})
	assertDelivered(t, app, append(wantSoFar, PlayFileResponse{ReqID: 2}, DropResponse{ReqID: 3}))

	if len(sink.forwarded) != 3 {
		t.Fatalf("forwarded = %d messages, want 3 (initiate, play, drop)", len(sink.forwarded))
	}
}

// TestScenarioCancelBeforeInitiateResponse drops a call before the
// initiate response arrives: the drop must be re-issued against the
// late-arriving call_id and the app sees only the DropResponse.
func TestScenarioCancelBeforeInitiateResponse(t *testing.T) {
	core, sink, app := newTestCore(t, Config{MaxActiveCalls: 2})

	core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"})
	core.Submit(DropRequest{ReqIDVal: 2, CallID: 0})
	core.Notify(InitiateCallResponse{ReqID: 1, CallID: 200})

	forwardedDrop := false
	for _, f := range sink.forwarded {
		if dr, ok := f.(DropRequest); ok && dr.ReqIDVal == 2 && dr.CallID == 200 {
			forwardedDrop = true
		}
	}
	if !forwardedDrop {
		t.Fatalf("forwarded = %+v, want a DropRequest{ReqIDVal:2, CallID:200}", sink.forwarded)
	}

	core.Notify(DropResponse{ReqID: 2})

	if len(app.delivered) != 1 {
		t.Fatalf("delivered = %+v, want exactly one callback (DropResponse)", app.delivered)
	}
	if dr, ok := app.delivered[0].(DropResponse); !ok || dr.ReqID != 2 {
		t.Fatalf("delivered[0] = %+v, want DropResponse{ReqID:2}", app.delivered[0])
	}
}

// TestScenarioWrongConnected races a Connected against a drop already
// in flight: the unwanted call is torn down and the app sees only the
// DropResponse.
func TestScenarioWrongConnected(t *testing.T) {
	core, _, app := newTestCore(t, Config{MaxActiveCalls: 1})

	core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"})
	core.Notify(InitiateCallResponse{ReqID: 1, CallID: 300})
	core.Submit(DropRequest{ReqIDVal: 2, CallID: 300})
	core.Notify(Connected{CallID: 300})
	core.Notify(ConnectionLost{CallID: 300, ErrorCode: 500, Descr: "peer hung up"})

	if len(app.delivered) != 2 {
		t.Fatalf("delivered = %+v, want exactly 2 callbacks (InitiateCallResponse, DropResponse)", app.delivered)
	}
	dr, ok := app.delivered[1].(DropResponse)
	if !ok || dr.ReqID != 2 {
		t.Fatalf("delivered[1] = %+v, want DropResponse{ReqID:2}", app.delivered[1])
	}
}

// TestScenarioPlayRejection submits a second play while one is
// outstanding and expects a synchronous rejection.
func TestScenarioPlayRejection(t *testing.T) {
	core, _, app := newTestCore(t, Config{MaxActiveCalls: 1})

	core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"})
	core.Notify(InitiateCallResponse{ReqID: 1, CallID: 100})
	core.Notify(Connected{CallID: 100})

	core.Submit(PlayFileRequest{ReqIDVal: 2, CallID: 100, Filename: "a.wav"})
	core.Submit(PlayFileRequest{ReqIDVal: 3, CallID: 100, Filename: "b.wav"})

	last := app.delivered[len(app.delivered)-1]
	rej, ok := last.(RejectResponse)
	if !ok || rej.ReqID != 3 {
		t.Fatalf("last delivered = %+v, want RejectResponse{ReqID:3}", last)
	}

	core.Notify(PlayFileResponse{ReqID: 2})
	last = app.delivered[len(app.delivered)-1]
	pfr, ok := last.(PlayFileResponse)
	if !ok || pfr.ReqID != 2 {
		t.Fatalf("last delivered = %+v, want PlayFileResponse{ReqID:2}", last)
	}
}

// TestScenarioQueueAndDrain fills capacity, queues a third initiate,
// and expects it dispatched the moment a slot frees.
func TestScenarioQueueAndDrain(t *testing.T) {
	core, sink, app := newTestCore(t, Config{MaxActiveCalls: 2})

	core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"})
	core.Submit(InitiateCallRequest{ReqIDVal: 2, Party: "bob"})
	core.Submit(InitiateCallRequest{ReqIDVal: 3, Party: "carol"})

	if len(sink.forwarded) != 2 {
		t.Fatalf("forwarded = %d, want 2 (only req=1,2 dispatched, req=3 queued)", len(sink.forwarded))
	}

	core.Notify(ErrorResponse{ReqID: 1, Descr: "no route"})

	if len(sink.forwarded) != 3 {
		t.Fatalf("forwarded = %d after freeing req=1's slot, want 3 (req=3 drained)", len(sink.forwarded))
	}
	third, ok := sink.forwarded[2].(InitiateCallRequest)
	if !ok || third.ReqIDVal != 3 {
		t.Fatalf("forwarded[2] = %+v, want InitiateCallRequest{ReqIDVal:3}", sink.forwarded[2])
	}

	failed := false
	for _, cb := range app.delivered {
		if er, ok := cb.(ErrorResponse); ok && er.ReqID == 1 {
			failed = true
		}
	}
	if !failed {
		t.Fatalf("delivered = %+v, want an ErrorResponse for req=1", app.delivered)
	}
}

// TestScenarioDropDuringPlayback drops a call while a play is
// outstanding: the play's late outcome is absorbed and the app sees a
// single DropResponse.
func TestScenarioDropDuringPlayback(t *testing.T) {
	core, sink, app := newTestCore(t, Config{MaxActiveCalls: 1})

	core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"})
	core.Notify(InitiateCallResponse{ReqID: 1, CallID: 100})
	core.Notify(Connected{CallID: 100})
	core.Submit(PlayFileRequest{ReqIDVal: 2, CallID: 100, Filename: "a.wav"})
	core.Submit(DropRequest{ReqIDVal: 3, CallID: 100})

	dropForwarded := false
	for _, f := range sink.forwarded {
		if dr, ok := f.(DropRequest); ok && dr.ReqIDVal == 3 {
			dropForwarded = true
		}
	}
	if !dropForwarded {
		t.Fatalf("forwarded = %+v, want a DropRequest{ReqIDVal:3}", sink.forwarded)
	}

	before := len(app.delivered)
	core.Notify(ErrorResponse{ReqID: 2, Descr: "stream died"})
	if len(app.delivered) != before {
		t.Fatalf("play outcome after drop reached the app: %+v", app.delivered[before:])
	}

	core.Notify(DropResponse{ReqID: 3})
	last := app.delivered[len(app.delivered)-1]
	if dr, ok := last.(DropResponse); !ok || dr.ReqID != 3 {
		t.Fatalf("last delivered = %+v, want DropResponse{ReqID:3}", last)
	}

	if active, pending := core.Stats(); active != 0 || pending != 0 {
		t.Fatalf("Stats() = (%d, %d) after teardown, want (0, 0)", active, pending)
	}
}

// TestScenarioDtmfPassThrough forwards tones while connected and
// absorbs them after cancellation.
func TestScenarioDtmfPassThrough(t *testing.T) {
	core, _, app := newTestCore(t, Config{MaxActiveCalls: 1})

	core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"})
	core.Notify(InitiateCallResponse{ReqID: 1, CallID: 400})
	core.Notify(Connected{CallID: 400})
	core.Notify(DtmfTone{CallID: 400, Tone: '*'})

	found := false
	for _, cb := range app.delivered {
		if tone, ok := cb.(DtmfTone); ok && tone.Tone == '*' {
			found = true
		}
	}
	if !found {
		t.Fatalf("delivered = %+v, want a DtmfTone while CONNECTED", app.delivered)
	}

	core.Submit(DropRequest{ReqIDVal: 2, CallID: 400})
	before := len(app.delivered)
	core.Notify(DtmfTone{CallID: 400, Tone: '*'})
	if len(app.delivered) != before {
		t.Fatalf("DtmfTone while CANCELLED_IN_C produced a callback: %+v", app.delivered[before:])
	}
}

func assertDelivered(t *testing.T, app *recordingApp, want []CallbackMessage) {
	t.Helper()
	if len(app.delivered) != len(want) {
		t.Fatalf("delivered = %+v, want %+v", app.delivered, want)
	}
	for i := range want {
		if app.delivered[i] != want[i] {
			t.Fatalf("delivered[%d] = %+v, want %+v", i, app.delivered[i], want[i])
		}
	}
}

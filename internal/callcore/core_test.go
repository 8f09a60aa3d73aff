package callcore

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestCoreInitValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		sink    VoipSink
		app     AppCallback
		wantErr error
	}{
		{"nil sink", Config{MaxActiveCalls: 1}, nil, &recordingApp{}, ErrNilSink},
		{"nil app", Config{MaxActiveCalls: 1}, &recordingSink{}, nil, ErrNilCallback},
		{"invalid config", Config{MaxActiveCalls: 0}, &recordingSink{}, &recordingApp{}, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core := NewCore(slog.New(slog.NewTextHandler(io.Discard, nil)))
			err := core.Init(tt.cfg, tt.sink, tt.app)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Init() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCoreInitTwiceFails(t *testing.T) {
	core, sink, app := newTestCore(t, Config{MaxActiveCalls: 1})
	if err := core.Init(Config{MaxActiveCalls: 1}, sink, app); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Init() error = %v, want ErrAlreadyInitialized", err)
	}
}

func TestCoreSubmitBeforeInit(t *testing.T) {
	core := NewCore(nil)
	if err := core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Submit() before Init error = %v, want ErrNotInitialized", err)
	}
}

func TestCoreShutdownStopsSubmissions(t *testing.T) {
	core, _, _ := newTestCore(t, Config{MaxActiveCalls: 1})
	if err := core.Shutdown(); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	if err := core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"}); !errors.Is(err, ErrShutdown) {
		t.Fatalf("Submit() after Shutdown error = %v, want ErrShutdown", err)
	}
}

func TestCoreDuplicateReqIDRejected(t *testing.T) {
	core, sink, app := newTestCore(t, Config{MaxActiveCalls: 2})

	core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"})
	core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "bob"})

	if len(sink.forwarded) != 1 {
		t.Fatalf("forwarded = %d messages, want 1 (duplicate must not reach VoIP)", len(sink.forwarded))
	}
	if len(app.delivered) != 1 {
		t.Fatalf("delivered = %d messages, want 1", len(app.delivered))
	}
	errResp, ok := app.delivered[0].(ErrorResponse)
	if !ok || errResp.Descr != "duplicate req_id" {
		t.Fatalf("delivered[0] = %+v, want ErrorResponse{Descr: duplicate req_id}", app.delivered[0])
	}
}

func TestCoreMaxActiveCallsSerializes(t *testing.T) {
	core, sink, _ := newTestCore(t, Config{MaxActiveCalls: 1})

	core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"})
	core.Submit(InitiateCallRequest{ReqIDVal: 2, Party: "bob"})

	if len(sink.forwarded) != 1 {
		t.Fatalf("forwarded = %d messages with max_active_calls=1, want exactly 1 dispatched", len(sink.forwarded))
	}

	core.Notify(ErrorResponse{ReqID: 1, Descr: "busy"})

	if len(sink.forwarded) != 2 {
		t.Fatalf("forwarded = %d messages after freeing a slot, want 2 (queued req=2 drained)", len(sink.forwarded))
	}
	second, ok := sink.forwarded[1].(InitiateCallRequest)
	if !ok || second.ReqIDVal != 2 {
		t.Fatalf("forwarded[1] = %+v, want InitiateCallRequest{ReqIDVal:2}", sink.forwarded[1])
	}
}

func TestCoreQueueFullRejectsSynchronously(t *testing.T) {
	core, _, app := newTestCore(t, Config{MaxActiveCalls: 1, MaxQueueDepth: 1})

	core.Submit(InitiateCallRequest{ReqIDVal: 1, Party: "alice"})
	core.Submit(InitiateCallRequest{ReqIDVal: 2, Party: "bob"})
	core.Submit(InitiateCallRequest{ReqIDVal: 3, Party: "carol"})

	if len(app.delivered) != 1 {
		t.Fatalf("delivered = %d messages, want 1 (the rejection for req=3)", len(app.delivered))
	}
	rej, ok := app.delivered[0].(RejectResponse)
	if !ok || rej.ReqID != 3 || rej.Descr != "queue full" {
		t.Fatalf("delivered[0] = %+v, want RejectResponse{ReqID:3, Descr:\"queue full\"}", app.delivered[0])
	}
}

func TestCoreCorrelationFailureDropped(t *testing.T) {
	core, sink, app := newTestCore(t, Config{MaxActiveCalls: 1})

	// No call was ever submitted with req_id=99; this must be silently dropped.
	core.Notify(InitiateCallResponse{ReqID: 99, CallID: 999})

	if len(app.delivered) != 0 || len(sink.forwarded) != 0 {
		t.Fatalf("correlation failure produced side effects: delivered=%v forwarded=%v", app.delivered, sink.forwarded)
	}
}

func TestCoreUnknownCallIDDropForwardedUnmodified(t *testing.T) {
	core, sink, _ := newTestCore(t, Config{MaxActiveCalls: 1})

	core.Submit(DropRequest{ReqIDVal: 7, CallID: 555})

	if len(sink.forwarded) != 1 {
		t.Fatalf("forwarded = %d, want 1 (unknown call_id forwarded unmodified)", len(sink.forwarded))
	}
	dr, ok := sink.forwarded[0].(DropRequest)
	if !ok || dr.CallID != 555 {
		t.Fatalf("forwarded[0] = %+v, want DropRequest{CallID:555}", sink.forwarded[0])
	}
}

package events

import (
	"io"
	"log/slog"
	"testing"

	"github.com/sebas/callcore/internal/callcore"
)

func TestBuildCallKey(t *testing.T) {
	tests := []struct {
		name   string
		callID uint32
		suffix string
		want   string
	}{
		{"connected", 100, SubjectCallConnected, "callcore.calls.100.connected"},
		{"dropped", 7, SubjectCallDropped, "callcore.calls.7.dropped"},
		{"dtmf", 42, SubjectCallDtmf, "callcore.calls.42.dtmf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildCallKey(tt.callID, tt.suffix); got != tt.want {
				t.Fatalf("BuildCallKey(%d, %q) = %q, want %q", tt.callID, tt.suffix, got, tt.want)
			}
		})
	}
}

func TestObserveStampsTrace(t *testing.T) {
	b := NewBuilder("node-a")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		msg  callcore.CallbackMessage
		want string
	}{
		{"connected", callcore.Connected{CallID: 1}, "callcore.calls.1.connected"},
		{"ringing", callcore.Ringing{CallID: 2}, "callcore.calls.2.ringing"},
		{"dtmf", callcore.DtmfTone{CallID: 3, Tone: '#'}, "callcore.calls.3.dtmf"},
		{"duration", callcore.CallDuration{CallID: 4, Seconds: 30}, "callcore.calls.4.duration"},
		{"failed", callcore.Failed{CallID: 5}, "callcore.calls.5.failed"},
	}

	seen := make(map[string]struct{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace := b.Observe(logger, callIDFor(tt.msg), tt.msg)
			if trace.Key != tt.want {
				t.Fatalf("Observe() key = %q, want %q", trace.Key, tt.want)
			}
			if trace.NodeID != "node-a" {
				t.Fatalf("Observe() node = %q, want node-a", trace.NodeID)
			}
			if trace.EventID == "" {
				t.Fatalf("Observe() produced empty event id")
			}
			if _, dup := seen[trace.EventID]; dup {
				t.Fatalf("Observe() reused event id %s", trace.EventID)
			}
			seen[trace.EventID] = struct{}{}
		})
	}
}

func callIDFor(msg callcore.CallbackMessage) uint32 {
	switch m := msg.(type) {
	case callcore.Connected:
		return m.CallID
	case callcore.Ringing:
		return m.CallID
	case callcore.DtmfTone:
		return m.CallID
	case callcore.CallDuration:
		return m.CallID
	case callcore.Failed:
		return m.CallID
	default:
		return 0
	}
}

package callcore

import (
	"io"
	"log/slog"
	"testing"
)

// recordingSink captures every ForwardMessage handed to it, in order.
type recordingSink struct {
	forwarded []ForwardMessage
}

func (s *recordingSink) Forward(msg ForwardMessage) {
	s.forwarded = append(s.forwarded, msg)
}

// recordingApp captures every CallbackMessage delivered to it, in order.
type recordingApp struct {
	delivered []CallbackMessage
}

func (a *recordingApp) Deliver(msg CallbackMessage) {
	a.delivered = append(a.delivered, msg)
}

func newTestCore(t *testing.T, cfg Config) (*Core, *recordingSink, *recordingApp) {
	t.Helper()
	core := NewCore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	sink := &recordingSink{}
	app := &recordingApp{}
	if err := core.Init(cfg, sink, app); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	return core, sink, app
}

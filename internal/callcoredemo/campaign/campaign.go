// Package campaign is the demo's application side: it submits
// InitiateCallRequests for a list of parties, plays an announcement
// into each answered call, then drops it. It consumes the core's
// callbacks the way any real caller would — correlating responses by
// req_id and mid-call events by call_id.
package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sebas/callcore/internal/callcore"
	"github.com/sebas/callcore/internal/callcoredemo/playback"
)

// Submitter is the slice of callcore.Core the runner needs.
type Submitter interface {
	Submit(msg callcore.ForwardMessage) error
}

// Runner drives one announcement campaign. It implements
// callcore.AppCallback; install it (or chain it) as the core's
// callback before calling Run.
type Runner struct {
	logger     *slog.Logger
	core       Submitter
	dispatcher *playback.Dispatcher

	// inner receives every callback after the runner has routed it, so
	// tracing keeps working while a campaign runs. May be nil.
	inner callcore.AppCallback

	nextReqID atomic.Uint32

	mu     sync.Mutex
	byReq  map[uint32]chan callcore.CallbackMessage
	byCall map[uint32]chan callcore.CallbackMessage
}

// NewRunner builds a campaign runner. maxPlayouts bounds how many
// calls the campaign drives at once (each one from initiate through
// play to drop), and so also how many announcements stream
// concurrently. inner may be nil.
func NewRunner(logger *slog.Logger, core Submitter, inner callcore.AppCallback, maxPlayouts int64) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if maxPlayouts <= 0 {
		maxPlayouts = playback.MaxConcurrentPlayouts
	}
	return &Runner{
		logger:     logger,
		core:       core,
		dispatcher: playback.NewDispatcher(logger, maxPlayouts),
		inner:      inner,
		byReq:      make(map[uint32]chan callcore.CallbackMessage),
		byCall:     make(map[uint32]chan callcore.CallbackMessage),
	}
}

// Deliver implements callcore.AppCallback: each message is routed to
// the call goroutine waiting on it, then passed through to the inner
// callback.
func (r *Runner) Deliver(msg callcore.CallbackMessage) {
	if ch := r.route(msg); ch != nil {
		select {
		case ch <- msg:
		default:
			r.logger.Warn("[Campaign] event channel full, dropping", "type", fmt.Sprintf("%T", msg))
		}
	}
	if r.inner != nil {
		r.inner.Deliver(msg)
	}
}

func (r *Runner) route(msg callcore.CallbackMessage) chan callcore.CallbackMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch m := msg.(type) {
	case callcore.InitiateCallResponse:
		ch := r.byReq[m.ReqID]
		if ch != nil {
			r.byCall[m.CallID] = ch
		}
		return ch
	case callcore.ErrorResponse:
		return r.byReq[m.ReqID]
	case callcore.RejectResponse:
		return r.byReq[m.ReqID]
	case callcore.DropResponse:
		return r.byReq[m.ReqID]
	case callcore.PlayFileResponse:
		return r.byReq[m.ReqID]
	case callcore.Dialing:
		return r.byCall[m.CallID]
	case callcore.Ringing:
		return r.byCall[m.CallID]
	case callcore.Connected:
		return r.byCall[m.CallID]
	case callcore.Failed:
		return r.byCall[m.CallID]
	case callcore.ConnectionLost:
		return r.byCall[m.CallID]
	case callcore.DtmfTone:
		return r.byCall[m.CallID]
	default:
		return nil
	}
}

func (r *Runner) register(reqID uint32) chan callcore.CallbackMessage {
	ch := make(chan callcore.CallbackMessage, 16)
	r.mu.Lock()
	r.byReq[reqID] = ch
	r.mu.Unlock()
	return ch
}

func (r *Runner) claim(reqID uint32, ch chan callcore.CallbackMessage) {
	r.mu.Lock()
	r.byReq[reqID] = ch
	r.mu.Unlock()
}

func (r *Runner) releaseReq(reqID uint32) {
	r.mu.Lock()
	delete(r.byReq, reqID)
	r.mu.Unlock()
}

func (r *Runner) releaseCall(callID uint32) {
	if callID == 0 {
		return
	}
	r.mu.Lock()
	delete(r.byCall, callID)
	r.mu.Unlock()
}

// Run dials every party, plays file into each answered call, drops it,
// and returns once every call has reached its outcome. Each call runs
// as one dispatcher job, so the dispatcher's limit bounds how many
// calls this runner has in progress; the core's admission controller
// applies its own max_active_calls limit on top.
func (r *Runner) Run(ctx context.Context, parties []string, file string) error {
	jobs := make([]playback.Job, 0, len(parties))
	for _, party := range parties {
		party := party
		jobs = append(jobs, playback.Job{
			SessionID: party,
			Filename:  file,
			Play: func(ctx context.Context, _, filename string) error {
				return r.runCall(ctx, party, filename)
			},
			Done: func(err error) {
				if err != nil {
					r.logger.Warn("[Campaign] call failed", "party", party, "error", err)
				} else {
					r.logger.Info("[Campaign] call completed", "party", party)
				}
			},
		})
	}

	return r.dispatcher.Run(ctx, jobs)
}

// runCall walks one call through its whole life: initiate, wait for
// answer, play, drop.
func (r *Runner) runCall(ctx context.Context, party, file string) error {
	initReqID := r.nextReqID.Add(1)
	events := r.register(initReqID)
	defer r.releaseReq(initReqID)

	if err := r.core.Submit(callcore.InitiateCallRequest{ReqIDVal: initReqID, Party: party}); err != nil {
		return fmt.Errorf("submit initiate: %w", err)
	}

	var callID uint32
	defer func() { r.releaseCall(callID) }()

	// Phase 1: wait for the call to connect.
	for {
		msg, err := r.await(ctx, events)
		if err != nil {
			return err
		}
		switch m := msg.(type) {
		case callcore.InitiateCallResponse:
			callID = m.CallID
		case callcore.Dialing, callcore.Ringing:
			// progress only
		case callcore.Connected:
			return r.playAndDrop(ctx, events, callID, file)
		case callcore.Failed:
			return fmt.Errorf("call failed: %s (%d) %s", m.Type, m.ErrorCode, m.Descr)
		case callcore.ErrorResponse:
			return fmt.Errorf("initiate error: %s", m.Descr)
		case callcore.RejectResponse:
			return fmt.Errorf("initiate rejected: %s", m.Descr)
		case callcore.ConnectionLost:
			return fmt.Errorf("connection lost before answer: %s", m.Descr)
		}
	}
}

func (r *Runner) playAndDrop(ctx context.Context, events chan callcore.CallbackMessage, callID uint32, file string) error {
	playReqID := r.nextReqID.Add(1)
	r.claim(playReqID, events)
	defer r.releaseReq(playReqID)

	if err := r.core.Submit(callcore.PlayFileRequest{ReqIDVal: playReqID, CallID: callID, Filename: file}); err != nil {
		return fmt.Errorf("submit play: %w", err)
	}

	var playErr error
playLoop:
	for {
		msg, err := r.await(ctx, events)
		if err != nil {
			return err
		}
		switch m := msg.(type) {
		case callcore.PlayFileResponse:
			break playLoop
		case callcore.ErrorResponse:
			playErr = fmt.Errorf("play error: %s", m.Descr)
			break playLoop
		case callcore.RejectResponse:
			playErr = fmt.Errorf("play rejected: %s", m.Descr)
			break playLoop
		case callcore.DtmfTone:
			r.logger.Info("[Campaign] far end pressed a key", "call_id", callID, "digit", string(m.Tone))
		case callcore.ConnectionLost:
			// The far end hung up mid-announcement; nothing left to drop.
			return nil
		}
	}

	dropReqID := r.nextReqID.Add(1)
	r.claim(dropReqID, events)
	defer r.releaseReq(dropReqID)

	if err := r.core.Submit(callcore.DropRequest{ReqIDVal: dropReqID, CallID: callID}); err != nil {
		return fmt.Errorf("submit drop: %w", err)
	}

	for {
		msg, err := r.await(ctx, events)
		if err != nil {
			return err
		}
		switch msg.(type) {
		case callcore.DropResponse, callcore.ConnectionLost:
			return playErr
		}
	}
}

func (r *Runner) await(ctx context.Context, events chan callcore.CallbackMessage) (callcore.CallbackMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg := <-events:
		return msg, nil
	case <-time.After(2 * time.Minute):
		return nil, fmt.Errorf("timed out waiting for a callback")
	}
}

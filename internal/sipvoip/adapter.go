// Package sipvoip is the reference VoipSink implementation: a SIP user
// agent built on github.com/emiago/sipgo that turns
// callcore.ForwardMessage values into real outbound calls and leg
// lifecycle events back into callcore.CallbackMessage values.
//
// The adapter owns the mapping between callcore's call_id space and
// the dialer's Leg objects; the dialer owns SIP (INVITE/ACK/CANCEL/BYE
// and the UAC dialog table); the media plane is reached through
// internal/mediaclient.
package sipvoip

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emiago/sipgo"
	"github.com/emiago/sipgo/sip"

	"github.com/sebas/callcore/internal/callcore"
	"github.com/sebas/callcore/internal/mediaclient"
)

// Player plays an audio file into an answered leg's media session and
// blocks until playback finishes. onDigit fires for every DTMF digit
// the media plane detects from the far end while playing (may be nil).
// It is implemented by internal/callcoredemo/media.
type Player interface {
	Play(ctx context.Context, sessionID, filename string, onDigit func(rune)) error
}

// Config configures the adapter's SIP identity and transport. It does
// not duplicate callcore.Config — that governs admission, this governs
// the wire.
type Config struct {
	BindAddr      string
	AdvertiseAddr string
	Port          int
	LocalUser     string
	Gateway       string
	DialTimeout   time.Duration

	// DurationInterval is how often a CallDuration callback is emitted
	// for each connected call. Zero disables duration reporting.
	DurationInterval time.Duration
}

type liveCall struct {
	leg       *Leg
	cancel    context.CancelFunc // cancels an in-flight dial
	dropReqID uint32             // req_id of the DropRequest that asked this leg to hang up, 0 if none
}

// Adapter implements callcore.VoipSink over a real SIP user agent.
type Adapter struct {
	logger *slog.Logger
	cfg    Config

	ua     *sipgo.UserAgent
	server *sipgo.Server
	dialer *dialer
	player Player

	notify func(callcore.CallbackMessage)

	nextCallID uint32

	mu    sync.Mutex
	calls map[uint32]*liveCall

	serveCancel context.CancelFunc
}

// NewAdapter builds the SIP user agent (UA, client, server) and dialer,
// in the same construction order the process has always used: UA first,
// then client, then server, cleanup-on-error at each step. Call Serve
// to start accepting in-dialog requests.
func NewAdapter(logger *slog.Logger, cfg Config, transport mediaclient.Transport, player Player) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ua, err := sipgo.NewUA()
	if err != nil {
		return nil, fmt.Errorf("[VoipAdapter] create user agent: %w", err)
	}
	uac, err := sipgo.NewClient(ua)
	if err != nil {
		ua.Close()
		return nil, fmt.Errorf("[VoipAdapter] create client: %w", err)
	}
	uas, err := sipgo.NewServer(ua)
	if err != nil {
		ua.Close()
		return nil, fmt.Errorf("[VoipAdapter] create server: %w", err)
	}

	a := &Adapter{
		logger: logger,
		cfg:    cfg,
		ua:     ua,
		server: uas,
		player: player,
		calls:  make(map[uint32]*liveCall),
	}

	a.dialer = newDialer(logger, dialerConfig{
		AdvertiseAddr: cfg.AdvertiseAddr,
		Port:          cfg.Port,
		LocalUser:     cfg.LocalUser,
		Gateway:       cfg.Gateway,
		DialTimeout:   cfg.DialTimeout,
	}, uac, transport)

	uas.OnRequest(sip.BYE, a.handleBYE)

	return a, nil
}

// Serve starts the SIP listener so the adapter can receive in-dialog
// requests (a remote hangup arrives as a BYE). It returns immediately;
// the listener runs until Close.
func (a *Adapter) Serve() error {
	bind := a.cfg.BindAddr
	if bind == "" {
		bind = "0.0.0.0"
	}
	listenAddr := fmt.Sprintf("%s:%d", bind, a.cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	a.serveCancel = cancel

	go func() {
		a.logger.Info("[VoipAdapter] SIP listener starting", "addr", listenAddr)
		if err := a.server.ListenAndServe(ctx, "udp", listenAddr); err != nil && ctx.Err() == nil {
			a.logger.Error("[VoipAdapter] SIP listener failed", "addr", listenAddr, "error", err)
		}
	}()

	return nil
}

// Bind wires the adapter's output into a callcore.Core. Call it once
// before the first Forward; core.Notify is the usual argument.
func (a *Adapter) Bind(notify func(callcore.CallbackMessage)) {
	a.notify = notify
}

// Close stops the listener and releases the SIP transport.
func (a *Adapter) Close() error {
	if a.serveCancel != nil {
		a.serveCancel()
	}
	if a.ua != nil {
		return a.ua.Close()
	}
	return nil
}

// Stats reports live leg and dialog counts for the demo's stats surface.
func (a *Adapter) Stats() (legs, dialogs int) {
	return a.dialer.LegCount(), a.dialer.dialogs.len()
}

// handleBYE routes an incoming BYE: a live leg's dialog means the
// remote party hung up on us; anything else gets 481.
func (a *Adapter) handleBYE(req *sip.Request, tx sip.ServerTransaction) {
	if a.dialer.HandleBye(req, tx) {
		return
	}
	resp := sip.NewResponseFromRequest(req, 481, "Call/Transaction Does Not Exist", nil)
	_ = tx.Respond(resp)
}

// Forward implements callcore.VoipSink. Per sink.go's contract this
// must not block the caller, so each message kind is handled on its own
// goroutine; ordering between independent calls is not guaranteed by
// the transport and callcore does not require it (only per-call
// ordering, which callcore itself already serializes).
func (a *Adapter) Forward(msg callcore.ForwardMessage) {
	switch m := msg.(type) {
	case callcore.InitiateCallRequest:
		go a.originate(m)
	case callcore.DropRequest:
		go a.teardown(m)
	case callcore.PlayFileRequest:
		go a.play(m)
	default:
		a.logger.Error("[VoipAdapter] unknown forward message", "type", fmt.Sprintf("%T", msg))
	}
}

// originate places an outbound call. The call_id is minted and
// InitiateCallResponse delivered before the INVITE goes out, then
// Dialing immediately, Ringing on a provisional response, and finally
// Connected or Failed — the event ordering callcore's WAITING_CONNECTED
// state expects.
func (a *Adapter) originate(m callcore.InitiateCallRequest) {
	callID := atomic.AddUint32(&a.nextCallID, 1)

	dialCtx, cancel := context.WithCancel(context.Background())
	lc := &liveCall{cancel: cancel}

	a.mu.Lock()
	a.calls[callID] = lc
	a.mu.Unlock()

	a.notify(callcore.InitiateCallResponse{ReqID: m.ReqIDVal, CallID: callID})
	a.notify(callcore.Dialing{CallID: callID})

	var ringingOnce sync.Once
	leg, err := a.dialer.Dial(dialCtx, m.Party, func(state LegState) {
		if state == LegStateRinging || state == LegStateEarlyMedia {
			ringingOnce.Do(func() {
				a.notify(callcore.Ringing{CallID: callID})
			})
		}
	})
	cancel()

	if err != nil {
		a.mu.Lock()
		dropReqID := lc.dropReqID
		delete(a.calls, callID)
		a.mu.Unlock()

		if dropReqID != 0 {
			// The dial died because a DropRequest canceled it; the app
			// only learns the drop completed.
			a.notify(callcore.DropResponse{ReqID: dropReqID})
			return
		}
		a.notify(callcore.Failed{
			CallID:    callID,
			Type:      classifyDialError(err),
			ErrorCode: dialErrorSIPCode(err),
			Descr:     err.Error(),
		})
		return
	}

	a.mu.Lock()
	lc.leg = leg
	lc.cancel = nil
	dropped := lc.dropReqID != 0
	a.mu.Unlock()

	if dropped {
		// A drop raced the dial and lost; tear the unwanted leg down.
		_ = a.dialer.Hangup(context.Background(), leg, TerminationCauseNormal)
		a.onLegTerminated(callID, TerminationCauseNormal)
		return
	}

	leg.OnTerminated(func(cause TerminationCause) { a.onLegTerminated(callID, cause) })

	a.logger.Info("[VoipAdapter] leg answered", "call_id", callID, "party", m.Party, "leg_id", leg.ID())
	a.notify(callcore.Connected{CallID: callID})

	if a.cfg.DurationInterval > 0 {
		go a.reportDuration(callID, leg)
	}
}

// reportDuration emits CallDuration callbacks for a connected leg until
// it terminates.
func (a *Adapter) reportDuration(callID uint32, leg *Leg) {
	ticker := time.NewTicker(a.cfg.DurationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-leg.Done():
			return
		case <-ticker.C:
			a.notify(callcore.CallDuration{
				CallID:  callID,
				Seconds: uint32(leg.TalkDuration() / time.Second),
			})
		}
	}
}

func (a *Adapter) teardown(m callcore.DropRequest) {
	a.mu.Lock()
	lc, ok := a.calls[m.CallID]
	var leg *Leg
	var cancel context.CancelFunc
	if ok {
		lc.dropReqID = m.ReqIDVal
		leg = lc.leg
		cancel = lc.cancel
	}
	a.mu.Unlock()

	if !ok {
		a.logger.Warn("[VoipAdapter] drop for unknown call_id", "call_id", m.CallID, "req_id", m.ReqIDVal)
		return
	}
	if leg == nil {
		// Dial still in flight: cancel it; originate() settles the drop
		// once Dial returns.
		if cancel != nil {
			cancel()
		}
		return
	}
	if err := a.dialer.Hangup(context.Background(), leg, TerminationCauseNormal); err != nil {
		a.logger.Warn("[VoipAdapter] hangup failed", "call_id", m.CallID, "error", err)
	}
}

func (a *Adapter) onLegTerminated(callID uint32, cause TerminationCause) {
	a.mu.Lock()
	lc, ok := a.calls[callID]
	if ok {
		delete(a.calls, callID)
	}
	a.mu.Unlock()
	if !ok {
		return
	}
	if lc.dropReqID != 0 {
		a.notify(callcore.DropResponse{ReqID: lc.dropReqID})
		return
	}
	a.notify(callcore.ConnectionLost{CallID: callID, ErrorCode: int(cause), Descr: cause.String()})
}

func (a *Adapter) play(m callcore.PlayFileRequest) {
	a.mu.Lock()
	lc, ok := a.calls[m.CallID]
	var leg *Leg
	if ok {
		leg = lc.leg
	}
	a.mu.Unlock()
	if !ok || leg == nil {
		a.logger.Warn("[VoipAdapter] play for unknown call_id", "call_id", m.CallID, "req_id", m.ReqIDVal)
		return
	}
	if a.player == nil {
		a.notify(callcore.ErrorResponse{ReqID: m.ReqIDVal, Descr: "no media player configured"})
		return
	}

	onDigit := func(digit rune) {
		a.notify(callcore.DtmfTone{CallID: m.CallID, Tone: digit})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := a.player.Play(ctx, leg.SessionID(), m.Filename, onDigit); err != nil {
		a.notify(callcore.ErrorResponse{ReqID: m.ReqIDVal, Descr: err.Error()})
		return
	}
	a.notify(callcore.PlayFileResponse{ReqID: m.ReqIDVal})
}

// classifyDialError maps a dial failure onto callcore's FailedType,
// using DialError's own SIP-code classification helpers.
func classifyDialError(err error) callcore.FailedType {
	de, ok := err.(*DialError)
	if !ok {
		return callcore.FailedGeneric
	}
	switch {
	case de.IsBusy():
		return callcore.FailedBusy
	case de.IsTimeout():
		return callcore.FailedNoAnswer
	case de.IsRejected():
		return callcore.FailedRefused
	default:
		return callcore.FailedGeneric
	}
}

func dialErrorSIPCode(err error) int {
	if de, ok := err.(*DialError); ok {
		return de.SIPCode
	}
	return 0
}

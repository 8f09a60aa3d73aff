package callcore

import (
	"fmt"
	"log/slog"
	"sync"
)

// effect records one ordered side effect (a forward to VoIP or a
// callback to the application) produced while Core's lock was held.
// Submit and Notify accumulate these and flush them only after the
// lock is released, so VoipSink/AppCallback are never invoked while
// Core holds its own mutex (sink.go's documented contract).
type effect struct {
	forward  ForwardMessage
	callback CallbackMessage
}

type effects struct {
	items []effect
}

func (e *effects) addForward(m ForwardMessage)   { e.items = append(e.items, effect{forward: m}) }
func (e *effects) addCallback(m CallbackMessage) { e.items = append(e.items, effect{callback: m}) }

// Core is the dispatch/correlation layer. It owns the admission
// controller and every live Call, serialized behind a single coarse
// mutex shared by the controller, every Call, and the correlation
// maps: a single req_id or call_id must never be visible to two
// handlers at once, and handlers run to completion one at a time.
type Core struct {
	mu     sync.Mutex
	logger *slog.Logger

	cfg  Config
	sink VoipSink
	app  AppCallback

	admission *admission

	// callsByReqID indexes every live Call by its currently meaningful
	// req_id: initReqID while queued or awaiting InitiateCallResponse,
	// then whatever request (play/drop) is outstanding once connected.
	callsByReqID map[uint32]*call

	// callsByID indexes every live Call by its VoIP-assigned call_id,
	// populated as soon as one is known.
	callsByID map[uint32]*call

	// unassigned holds, in submission order, every Call that does not
	// yet have a call_id (IDLE or WAITING_INITIATE_CALL_RESP). It
	// resolves DropRequest{call_id: 0} to the oldest such Call, FIFO
	// for consistency with admission's ordering guarantees.
	unassigned []*call

	initialized bool
	shutdown    bool
}

// NewCore constructs a Core. logger may be nil, in which case
// slog.Default() is used.
func NewCore(logger *slog.Logger) *Core {
	if logger == nil {
		logger = slog.Default()
	}
	return &Core{logger: logger}
}

// Init validates cfg and wires the sink/app boundaries. It must be
// called exactly once before Submit or Notify.
func (c *Core) Init(cfg Config, sink VoipSink, app AppCallback) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return ErrAlreadyInitialized
	}
	if sink == nil {
		return ErrNilSink
	}
	if app == nil {
		return ErrNilCallback
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.LogID != "" {
		c.logger = c.logger.With(slog.String("log_id", cfg.LogID))
	}
	c.cfg = cfg
	c.sink = sink
	c.app = app
	c.admission = newAdmission(cfg)
	c.callsByReqID = make(map[uint32]*call)
	c.callsByID = make(map[uint32]*call)
	c.initialized = true

	c.logger.Info("[Core] initialized", "max_active_calls", cfg.MaxActiveCalls, "max_queue_depth", cfg.MaxQueueDepth)
	return nil
}

// Shutdown marks the core closed; subsequent Submit calls return
// ErrShutdown and subsequent Notify calls are ignored. Calls already
// in flight are left as-is - forced
// teardown is the surrounding application's job, not the core's.
func (c *Core) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return ErrNotInitialized
	}
	c.shutdown = true
	c.logger.Info("[Core] shutdown")
	return nil
}

// Submit accepts a ForwardMessage from the application: an
// InitiateCallRequest, DropRequest, or PlayFileRequest.
func (c *Core) Submit(msg ForwardMessage) error {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	if c.shutdown {
		c.mu.Unlock()
		return ErrShutdown
	}

	eff := &effects{}
	switch m := msg.(type) {
	case InitiateCallRequest:
		c.submitInitiate(m, eff)
	case DropRequest:
		c.submitDrop(m, eff)
	case PlayFileRequest:
		c.submitPlay(m, eff)
	default:
		// Unrecognized forward kinds are passed through untouched; the
		// transport may understand more than the core does.
		c.logger.Warn("[Core] unknown forward message type, passing through", "type", fmt.Sprintf("%T", msg))
		eff.addForward(msg)
	}
	c.mu.Unlock()

	c.flush(eff)
	return nil
}

// Notify accepts a CallbackMessage from VoIP: a response to a prior
// forward, or an unsolicited mid-call event.
func (c *Core) Notify(msg CallbackMessage) {
	c.mu.Lock()
	if !c.initialized || c.shutdown {
		c.mu.Unlock()
		return
	}

	eff := &effects{}
	switch m := msg.(type) {
	case InitiateCallResponse:
		c.onInitiateCallResponse(m, eff)
	case ErrorResponse:
		c.onErrorOrReject(m.ReqID, m.Descr, false, eff)
	case RejectResponse:
		c.onErrorOrReject(m.ReqID, m.Descr, true, eff)
	case DropResponse:
		c.onDropResponse(m, eff)
	case PlayFileResponse:
		c.onPlayFileResponse(m, eff)
	case Dialing:
		c.onDialingOrRinging(m.CallID, "Dialing", eff)
	case Ringing:
		c.onDialingOrRinging(m.CallID, "Ringing", eff)
	case Connected:
		c.onConnected(m, eff)
	case Failed:
		c.onFailed(m, eff)
	case ConnectionLost:
		c.onConnectionLost(m, eff)
	case DtmfTone:
		c.onDtmfTone(m, eff)
	case CallDuration:
		c.onCallDuration(m, eff)
	default:
		// Unrecognized callback kinds are passed through untouched; the
		// application may understand more than the core does.
		c.logger.Warn("[Core] unknown callback message type, passing through", "type", fmt.Sprintf("%T", msg))
		eff.addCallback(msg)
	}
	c.mu.Unlock()

	c.flush(eff)
}

func (c *Core) flush(eff *effects) {
	for _, it := range eff.items {
		if it.forward != nil {
			c.logger.Debug("[Core] forward", "type", fmt.Sprintf("%T", it.forward), "req_id", it.forward.ReqID())
			c.sink.Forward(it.forward)
		}
		if it.callback != nil {
			c.logger.Debug("[Core] deliver", "type", fmt.Sprintf("%T", it.callback))
			c.app.Deliver(it.callback)
		}
	}
}

// --- application-submitted requests ---

func (c *Core) submitInitiate(req InitiateCallRequest, eff *effects) {
	if _, dup := c.callsByReqID[req.ReqIDVal]; dup {
		eff.addCallback(ErrorResponse{ReqID: req.ReqIDVal, Descr: "duplicate req_id"})
		return
	}

	if !c.admission.hasCapacity() && c.admission.queueFull() {
		eff.addCallback(RejectResponse{ReqID: req.ReqIDVal, Descr: "queue full"})
		return
	}

	cl := newCall(req.ReqIDVal, req.Party)
	c.callsByReqID[req.ReqIDVal] = cl
	c.unassigned = append(c.unassigned, cl)

	if c.admission.hasCapacity() {
		c.admission.dispatchImmediately(req)
		eff.addForward(cl.dispatch())
		return
	}
	c.admission.enqueue(req)
}

func (c *Core) submitDrop(req DropRequest, eff *effects) {
	if _, dup := c.callsByReqID[req.ReqIDVal]; dup {
		eff.addCallback(ErrorResponse{ReqID: req.ReqIDVal, Descr: "duplicate req_id"})
		return
	}

	var cl *call
	if req.CallID != 0 {
		found, ok := c.callsByID[req.CallID]
		if !ok {
			c.logger.Warn("[Core] drop for unknown call_id, forwarding unmodified",
				"call_id", req.CallID, "req_id", req.ReqIDVal)
			eff.addForward(req)
			return
		}
		cl = found
	} else {
		cl = c.popOldestUnassigned()
		if cl == nil {
			c.logger.Warn("[Core] drop with call_id=0 but no call awaiting a call_id, forwarding unmodified",
				"req_id", req.ReqIDVal)
			eff.addForward(req)
			return
		}
	}

	oldReqID := cl.currentReqID
	result := cl.handleDropRequest(req.ReqIDVal)
	if result.forward != nil && cl.callID != 0 {
		c.admission.recordDrop(req.ReqIDVal, cl.callID)
	}
	c.applyResult(cl, oldReqID, result, eff)
}

func (c *Core) submitPlay(req PlayFileRequest, eff *effects) {
	cl, ok := c.callsByID[req.CallID]
	if !ok {
		c.logCorrelationFailure(req.ReqIDVal, req.CallID, "PlayFileRequest", "call_id not active")
		return
	}
	if _, dup := c.callsByReqID[req.ReqIDVal]; dup {
		eff.addCallback(ErrorResponse{ReqID: req.ReqIDVal, Descr: "duplicate req_id"})
		return
	}

	oldReqID := cl.currentReqID
	result := cl.handlePlayFileRequest(req.ReqIDVal)
	c.applyResult(cl, oldReqID, result, eff)
}

// --- VoIP-originated events ---

func (c *Core) onInitiateCallResponse(m InitiateCallResponse, eff *effects) {
	cl, ok := c.callsByReqID[m.ReqID]
	if !ok {
		c.logCorrelationFailure(m.ReqID, m.CallID, "InitiateCallResponse", "no call awaiting this req_id")
		return
	}
	oldReqID := cl.currentReqID
	result := cl.handleInitiateCallResponse(m.ReqID, m.CallID)
	if fwd, ok := result.forward.(DropRequest); ok {
		c.admission.recordDrop(fwd.ReqIDVal, cl.callID)
	}
	c.applyResult(cl, oldReqID, result, eff)
}

func (c *Core) onErrorOrReject(reqID uint32, descr string, reject bool, eff *effects) {
	c.admission.resolveDrop(reqID)
	cl, ok := c.callsByReqID[reqID]
	if !ok {
		kind := "ErrorResponse"
		if reject {
			kind = "RejectResponse"
		}
		c.logCorrelationFailure(reqID, 0, kind, "no call awaiting this req_id")
		return
	}
	oldReqID := cl.currentReqID
	result := cl.handleErrorOrReject(reqID, descr, reject)
	c.applyResult(cl, oldReqID, result, eff)
}

func (c *Core) onDropResponse(m DropResponse, eff *effects) {
	cl, ok := c.callsByReqID[m.ReqID]
	if !ok {
		c.logCorrelationFailure(m.ReqID, 0, "DropResponse", "no call awaiting this req_id")
		return
	}
	oldReqID := cl.currentReqID
	result := cl.handleDropResponse(m.ReqID)
	c.admission.resolveDrop(m.ReqID)
	c.applyResult(cl, oldReqID, result, eff)
}

func (c *Core) onPlayFileResponse(m PlayFileResponse, eff *effects) {
	cl, ok := c.callsByReqID[m.ReqID]
	if !ok {
		c.logCorrelationFailure(m.ReqID, 0, "PlayFileResponse", "no call awaiting this req_id")
		return
	}
	oldReqID := cl.currentReqID
	result := cl.handlePlayFileResponse(m.ReqID)
	c.applyResult(cl, oldReqID, result, eff)
}

func (c *Core) onDialingOrRinging(callID uint32, event string, eff *effects) {
	cl, ok := c.callsByID[callID]
	if !ok {
		c.logCorrelationFailure(0, callID, event, "call_id not active")
		return
	}
	oldReqID := cl.currentReqID
	result := cl.handleDialingOrRinging(event)
	c.applyResult(cl, oldReqID, result, eff)
}

func (c *Core) onConnected(m Connected, eff *effects) {
	cl, ok := c.callsByID[m.CallID]
	if !ok {
		c.logCorrelationFailure(0, m.CallID, "Connected", "call_id not active")
		return
	}
	oldReqID := cl.currentReqID
	result := cl.handleConnected()
	c.applyResult(cl, oldReqID, result, eff)
}

func (c *Core) onFailed(m Failed, eff *effects) {
	cl, ok := c.callsByID[m.CallID]
	if !ok {
		c.logCorrelationFailure(0, m.CallID, "Failed", "call_id not active")
		return
	}
	oldReqID := cl.currentReqID
	result := cl.handleFailed(m.Type, m.ErrorCode, m.Descr)
	c.applyResult(cl, oldReqID, result, eff)
}

func (c *Core) onConnectionLost(m ConnectionLost, eff *effects) {
	cl, ok := c.callsByID[m.CallID]
	if !ok {
		c.logCorrelationFailure(0, m.CallID, "ConnectionLost", "call_id not active")
		return
	}
	oldReqID := cl.currentReqID
	result := cl.handleConnectionLost(m.ErrorCode, m.Descr)
	c.applyResult(cl, oldReqID, result, eff)
}

func (c *Core) onDtmfTone(m DtmfTone, eff *effects) {
	cl, ok := c.callsByID[m.CallID]
	if !ok {
		// A tone for a call we no longer track is not a protocol
		// violation; it is simply too late.
		return
	}
	oldReqID := cl.currentReqID
	result := cl.handleDtmfTone(m.Tone)
	c.applyResult(cl, oldReqID, result, eff)
}

func (c *Core) onCallDuration(m CallDuration, eff *effects) {
	cl, ok := c.callsByID[m.CallID]
	if !ok {
		c.logCorrelationFailure(0, m.CallID, "CallDuration", "call_id not active")
		return
	}
	oldReqID := cl.currentReqID
	result := cl.handleCallDuration(m.Seconds)
	if result.callback == nil {
		c.logCorrelationFailure(0, m.CallID, "CallDuration", "call not connected")
	}
	c.applyResult(cl, oldReqID, result, eff)
}

// --- bookkeeping shared by every handler ---

// applyResult folds a transitionResult into Core's indices, queues its
// forward/callback as an ordered effect, drains admission's pending
// queue if the transition freed a slot, and tears the Call down if it
// reached DONE.
func (c *Core) applyResult(cl *call, oldReqID uint32, result transitionResult, eff *effects) {
	if pe, isViolation := result.callback.(ProtocolError); isViolation {
		err := &ProtocolViolationError{CallID: pe.CallID, ReqID: pe.ReqID, State: pe.State, Event: pe.Event}
		c.logger.Error("[Core] protocol violation", "error", err.Error())
	}

	if oldReqID != 0 && oldReqID != cl.currentReqID {
		delete(c.callsByReqID, oldReqID)
	}
	if cl.currentReqID != 0 {
		c.callsByReqID[cl.currentReqID] = cl
	}
	if result.indexReqID != 0 {
		c.callsByReqID[result.indexReqID] = cl
	}
	if result.unindexReqID != 0 {
		delete(c.callsByReqID, result.unindexReqID)
	}
	if cl.callID != 0 {
		if !c.admission.isActiveCall(cl.callID) {
			c.admission.admitCall(cl.initReqID, cl.callID)
		}
		c.callsByID[cl.callID] = cl
	}
	if cl.state != StateIdle && cl.state != StateWaitingInitiateResp {
		c.removeFromUnassigned(cl)
	}

	if result.forward != nil {
		eff.addForward(result.forward)
	}
	if result.callback != nil {
		eff.addCallback(result.callback)
	}
	if result.terminal {
		c.cleanupTerminal(cl)
	}

	c.drainQueue(eff)
}

// cleanupTerminal removes a DONE Call from every index it could be
// reachable through and releases its admission slot (or, for a Call
// dropped while still queued, its place in the pending queue).
func (c *Core) cleanupTerminal(cl *call) {
	if cl.currentReqID != 0 {
		delete(c.callsByReqID, cl.currentReqID)
	}
	if cl.pendingPlayReqID != 0 {
		delete(c.callsByReqID, cl.pendingPlayReqID)
	}
	delete(c.callsByReqID, cl.initReqID)
	if cl.callID != 0 {
		delete(c.callsByID, cl.callID)
		c.admission.releaseCall(cl.callID)
	} else {
		c.admission.releaseRequest(cl.initReqID)
		for i, q := range c.admission.queue {
			if q.ReqIDVal == cl.initReqID {
				c.admission.queue = append(c.admission.queue[:i], c.admission.queue[i+1:]...)
				break
			}
		}
	}
	c.removeFromUnassigned(cl)
}

// drainQueue dispatches as many pending initiates as capacity allows,
// freshly freed by the transition that just completed.
func (c *Core) drainQueue(eff *effects) {
	for _, req := range c.admission.dequeueReady() {
		cl, ok := c.callsByReqID[req.ReqIDVal]
		if !ok {
			c.logger.Error("[Core] queued request missing from index", "req_id", req.ReqIDVal)
			continue
		}
		eff.addForward(cl.dispatch())
	}
}

func (c *Core) popOldestUnassigned() *call {
	for i, cl := range c.unassigned {
		if cl.state == StateIdle || cl.state == StateWaitingInitiateResp {
			c.unassigned = append(c.unassigned[:i], c.unassigned[i+1:]...)
			return cl
		}
	}
	return nil
}

func (c *Core) removeFromUnassigned(cl *call) {
	for i, u := range c.unassigned {
		if u == cl {
			c.unassigned = append(c.unassigned[:i], c.unassigned[i+1:]...)
			return
		}
	}
}

func (c *Core) logCorrelationFailure(reqID, callID uint32, event, reason string) {
	err := &CorrelationError{ReqID: reqID, CallID: callID, Event: event, Reason: reason}
	c.logger.Warn("[Core] correlation failure", "error", err.Error())
}

// Stats reports a snapshot of admitted calls and pending-admission queue
// depth, for health/stats endpoints such as internal/callcoredemo/api.
func (c *Core) Stats() (activeCalls, pendingQueued int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.admission == nil {
		return 0, 0
	}
	return len(c.callsByID), len(c.admission.queue)
}

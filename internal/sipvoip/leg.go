package sipvoip

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Leg is one outbound SIP call: the INVITE transaction, the established
// dialog, and the media session bound to it. Legs are created by the
// dialer and live until hangup, rejection, or a remote BYE.
//
// All methods are safe for concurrent use.
type Leg struct {
	mu sync.RWMutex

	id        string
	sipCallID string
	party     string
	targetURI string

	state LegState
	cause TerminationCause

	// media session, filled in as the dial progresses
	sessionID       string
	localRTPAddr    string
	localRTPPort    int
	remoteRTPAddr   string
	remoteRTPPort   int
	negotiatedCodec string

	// final SIP response for failed dials
	sipCode   int
	sipReason string

	createdAt    time.Time
	ringingAt    time.Time
	answeredAt   time.Time
	terminatedAt time.Time

	dlg *dialogState

	// onProgress fires on every non-terminal state change, onTerminated
	// exactly once when the leg dies. Both are invoked without the leg's
	// lock held.
	onProgress   func(LegState)
	onTerminated func(TerminationCause)

	done      chan struct{}
	closeOnce sync.Once
}

func newLeg(sipCallID, party, targetURI string) *Leg {
	return &Leg{
		id:        "leg-" + uuid.New().String(),
		sipCallID: sipCallID,
		party:     party,
		targetURI: targetURI,
		state:     LegStateCreated,
		createdAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// ID returns the leg's unique identifier.
func (l *Leg) ID() string { return l.id }

// SIPCallID returns the SIP Call-ID of the leg's INVITE.
func (l *Leg) SIPCallID() string { return l.sipCallID }

// Party returns the dial target as the application submitted it.
func (l *Leg) Party() string { return l.party }

// State returns the current leg state.
func (l *Leg) State() LegState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Cause returns why the leg terminated, or TerminationCauseNone.
func (l *Leg) Cause() TerminationCause {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cause
}

// SessionID returns the media session ID bound to this leg, if any.
func (l *Leg) SessionID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessionID
}

// SIPResponse returns the final SIP status for a failed dial (0 if none).
func (l *Leg) SIPResponse() (int, string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sipCode, l.sipReason
}

// AnsweredAt returns when the leg was answered (zero if never).
func (l *Leg) AnsweredAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.answeredAt
}

// TalkDuration returns how long the leg has been (or was) answered.
func (l *Leg) TalkDuration() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.answeredAt.IsZero() {
		return 0
	}
	end := l.terminatedAt
	if end.IsZero() {
		return time.Since(l.answeredAt)
	}
	return end.Sub(l.answeredAt)
}

// Done returns a channel closed when the leg terminates.
func (l *Leg) Done() <-chan struct{} { return l.done }

func (l *Leg) setSession(sessionID, localAddr string, localPort int, codec string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessionID = sessionID
	l.localRTPAddr = localAddr
	l.localRTPPort = localPort
	l.negotiatedCodec = codec
}

func (l *Leg) setRemoteMedia(addr string, port int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remoteRTPAddr = addr
	l.remoteRTPPort = port
}

func (l *Leg) setSIPResponse(code int, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sipCode = code
	l.sipReason = reason
}

func (l *Leg) setDialog(dlg *dialogState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dlg = dlg
}

func (l *Leg) dialog() *dialogState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dlg
}

// OnTerminated registers the termination callback. If the leg already
// terminated before registration (a remote BYE racing the answer), the
// callback fires immediately with the recorded cause.
func (l *Leg) OnTerminated(fn func(TerminationCause)) {
	l.mu.Lock()
	if l.state.IsTerminal() {
		cause := l.cause
		l.mu.Unlock()
		fn(cause)
		return
	}
	l.onTerminated = fn
	l.mu.Unlock()
}

// transitionTo moves the leg into a non-terminal state and fires
// onProgress. Transitions on a terminated leg are ignored.
func (l *Leg) transitionTo(state LegState) {
	l.mu.Lock()
	if l.state.IsTerminal() {
		l.mu.Unlock()
		return
	}
	l.state = state
	switch state {
	case LegStateRinging, LegStateEarlyMedia:
		if l.ringingAt.IsZero() {
			l.ringingAt = time.Now()
		}
	case LegStateAnswered:
		l.answeredAt = time.Now()
	}
	progress := l.onProgress
	l.mu.Unlock()

	if progress != nil {
		progress(state)
	}
}

// terminate moves the leg into a terminal state exactly once, closes
// Done, and fires onTerminated. Safe to call multiple times.
func (l *Leg) terminate(state LegState, cause TerminationCause) {
	var fire func(TerminationCause)

	l.mu.Lock()
	if !l.state.IsTerminal() {
		l.state = state
		l.cause = cause
		l.terminatedAt = time.Now()
		fire = l.onTerminated
	}
	l.mu.Unlock()

	l.closeOnce.Do(func() { close(l.done) })

	if fire != nil {
		fire(cause)
	}
}

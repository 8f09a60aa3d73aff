// Package mediaclient is the call-control side of the media plane: a
// gRPC client (and a small pool of them) for the cmd/rtpmanager
// service that owns RTP ports, codecs, and playback. The call process
// never touches RTP itself; it asks a media node for a session, points
// the session at the SDP answer's endpoint, and streams playback
// status back.
package mediaclient

import (
	"context"
)

// SessionInfo carries the parameters for creating a media session whose
// remote endpoint is already known from an SDP offer.
type SessionInfo struct {
	CallID        string   // SIP Call-ID for correlation
	RemoteAddr    string   // peer RTP IP from SDP
	RemotePort    int      // peer RTP port from SDP
	OfferedCodecs []string // payload types offered by the peer
}

// SessionResult is what a media node hands back for a new session.
type SessionResult struct {
	SessionID     string // unique session identifier
	LocalAddr     string // address to advertise in SDP
	LocalPort     int    // port to advertise in SDP
	SDPBody       []byte // complete SDP body for the INVITE/answer
	SelectedCodec string // negotiated codec payload type
}

// PlayRequest asks a media node to stream an audio file into a session.
type PlayRequest struct {
	SessionID string
	AudioFile string
	Loop      bool
}

// PlayState is the state reported on a playback status channel.
type PlayState int

const (
	PlayStateStarted PlayState = iota
	PlayStateProgress
	PlayStateDigit
	PlayStateCompleted
	PlayStateStopped
	PlayStateError
)

// PlayStatus is one playback progress report. Digit is set only when
// State is PlayStateDigit: the media node detected an RFC 4733
// telephone-event from the far end while streaming.
type PlayStatus struct {
	SessionID string
	State     PlayState
	Digit     rune
	Error     error
}

// TerminateReason indicates why a session is being destroyed. Ordinal
// values match the rtpmanager.v1 wire enum and are cast directly at
// the transport boundary.
type TerminateReason int

const (
	TerminateReasonNormal TerminateReason = iota
	TerminateReasonBYE
	TerminateReasonCancel
	TerminateReasonError
	TerminateReasonTimeout
)

// Transport abstracts one media node (or a pool of them).
type Transport interface {
	// CreateSession allocates a session with a known remote endpoint
	// and returns the local endpoint plus an SDP body.
	CreateSession(ctx context.Context, info SessionInfo) (*SessionResult, error)

	// CreateSessionPendingRemote allocates a session before the remote
	// endpoint is known, as an outbound call must: the local port and
	// SDP offer are needed for the INVITE, the peer's endpoint only
	// arrives with the SDP answer. Complete it with UpdateSessionRemote.
	CreateSessionPendingRemote(ctx context.Context, callID string, codecs []string) (*SessionResult, error)

	// UpdateSessionRemote fills in the peer endpoint once the SDP
	// answer has been parsed.
	UpdateSessionRemote(ctx context.Context, sessionID, remoteAddr string, remotePort int) error

	// DestroySession releases the session's port and stops any playback.
	DestroySession(ctx context.Context, sessionID string, reason TerminateReason) error

	// PlayAudio streams a file into the session. The returned channel
	// carries status updates (including detected DTMF digits) and is
	// closed when playback finishes.
	PlayAudio(ctx context.Context, req PlayRequest) (<-chan PlayStatus, error)

	// StopAudio cancels ongoing playback.
	StopAudio(ctx context.Context, sessionID string) error

	// Ready reports whether the transport can take new sessions.
	Ready() bool

	// Close releases transport resources.
	Close() error
}

package sipvoip

import "fmt"

// LegState is the lifecycle state of an outbound SIP call leg.
type LegState int

const (
	// LegStateCreated indicates the leg exists but no INVITE is in flight yet.
	LegStateCreated LegState = iota
	// LegStateRinging indicates a provisional response (180/181) was received.
	LegStateRinging
	// LegStateEarlyMedia indicates a 183 was received, with or without SDP.
	LegStateEarlyMedia
	// LegStateAnswered indicates 200 OK was received and ACK sent.
	LegStateAnswered
	// LegStateFailed indicates the leg never established.
	LegStateFailed
	// LegStateDestroyed indicates the leg has been torn down.
	LegStateDestroyed
)

// String returns the string representation of LegState.
func (s LegState) String() string {
	switch s {
	case LegStateCreated:
		return "Created"
	case LegStateRinging:
		return "Ringing"
	case LegStateEarlyMedia:
		return "EarlyMedia"
	case LegStateAnswered:
		return "Answered"
	case LegStateFailed:
		return "Failed"
	case LegStateDestroyed:
		return "Destroyed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// IsTerminal returns true if the leg is in a terminal state.
func (s LegState) IsTerminal() bool {
	return s == LegStateFailed || s == LegStateDestroyed
}

// TerminationCause indicates why a leg was terminated.
type TerminationCause int

const (
	// TerminationCauseNone indicates no termination has occurred.
	TerminationCauseNone TerminationCause = iota
	// TerminationCauseNormal indicates a local hangup (BYE sent).
	TerminationCauseNormal
	// TerminationCauseCancel indicates the dial was canceled before answer.
	TerminationCauseCancel
	// TerminationCauseRejected indicates the far end rejected (4xx/6xx).
	TerminationCauseRejected
	// TerminationCauseTimeout indicates the dial timed out.
	TerminationCauseTimeout
	// TerminationCauseError indicates an internal error.
	TerminationCauseError
	// TerminationCauseRemoteBYE indicates the remote party hung up.
	TerminationCauseRemoteBYE
)

// String returns the string representation of TerminationCause.
func (c TerminationCause) String() string {
	switch c {
	case TerminationCauseNone:
		return "None"
	case TerminationCauseNormal:
		return "Normal"
	case TerminationCauseCancel:
		return "Cancel"
	case TerminationCauseRejected:
		return "Rejected"
	case TerminationCauseTimeout:
		return "Timeout"
	case TerminationCauseError:
		return "Error"
	case TerminationCauseRemoteBYE:
		return "RemoteBYE"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

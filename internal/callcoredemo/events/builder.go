// Package events stamps every callback the demo observes with a
// unique event ID, a timestamp, and a subject key, so a downstream log
// aggregator can join trace lines back to individual deliveries.
package events

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sebas/callcore/internal/callcore"
)

// Trace is a single observed callcore.CallbackMessage, timestamped and
// given a unique event ID so a downstream log aggregator can join it back
// to a specific AppCallback.Deliver call.
type Trace struct {
	EventID   string
	EventTime time.Time
	NodeID    string
	Key       string
	Message   callcore.CallbackMessage
}

// Builder stamps every Trace with the same node identity.
type Builder struct {
	nodeID string
}

// NewBuilder creates a Builder tagging every event with nodeID (normally
// the demo's hostname or a configured instance name).
func NewBuilder(nodeID string) *Builder {
	return &Builder{nodeID: nodeID}
}

// Observe builds a Trace for msg and logs it at debug level.
func (b *Builder) Observe(logger *slog.Logger, callID uint32, msg callcore.CallbackMessage) Trace {
	t := Trace{
		EventID:   uuid.New().String(),
		EventTime: time.Now().UTC(),
		NodeID:    b.nodeID,
		Key:       BuildCallKey(callID, subjectFor(msg)),
		Message:   msg,
	}
	logger.Debug("[Events] callback observed", "event_id", t.EventID, "key", t.Key, "node_id", t.NodeID)
	return t
}

func subjectFor(msg callcore.CallbackMessage) string {
	switch msg.(type) {
	case callcore.InitiateCallResponse:
		return SubjectCallInitiated
	case callcore.Dialing:
		return SubjectCallDialing
	case callcore.Ringing:
		return SubjectCallRinging
	case callcore.Connected:
		return SubjectCallConnected
	case callcore.Failed:
		return SubjectCallFailed
	case callcore.ConnectionLost:
		return SubjectCallConnLost
	case callcore.PlayFileResponse:
		return SubjectCallPlayback
	case callcore.DropResponse:
		return SubjectCallDropped
	case callcore.DtmfTone:
		return SubjectCallDtmf
	case callcore.CallDuration:
		return SubjectCallDuration
	case callcore.ProtocolError:
		return SubjectCallProtoError
	default:
		return "other"
	}
}

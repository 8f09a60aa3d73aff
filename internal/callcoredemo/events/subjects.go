// Subject keys: one string per callcore.CallbackMessage kind,
// attached to the trace line the demo emits for every core callback.
package events

import "fmt"

const (
	// SubjectPrefix roots every event key this demo emits.
	SubjectPrefix = "callcore"

	SubjectCalls          = SubjectPrefix + ".calls"
	SubjectCallInitiated  = "initiated"
	SubjectCallDialing    = "dialing"
	SubjectCallRinging    = "ringing"
	SubjectCallConnected  = "connected"
	SubjectCallFailed     = "failed"
	SubjectCallConnLost   = "connection_lost"
	SubjectCallPlayback   = "playback"
	SubjectCallDropped    = "dropped"
	SubjectCallDtmf       = "dtmf"
	SubjectCallDuration   = "duration"
	SubjectCallProtoError = "protocol_error"
)

// BuildCallKey builds a per-call event key, e.g.
// BuildCallKey(100, "connected") => "callcore.calls.100.connected".
func BuildCallKey(callID uint32, suffix string) string {
	return fmt.Sprintf("%s.%d.%s", SubjectCalls, callID, suffix)
}

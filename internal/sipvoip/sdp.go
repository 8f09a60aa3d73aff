// Adapted from services/rtpmanager/sdp/builder.go: that package builds SDP
// answers for the RTP manager's own gRPC surface. Here the same pion/sdp/v3
// decoder is pointed the other way, at SDP the B2BUA engine negotiated for a
// leg, purely for diagnostics — callcore itself never sees SDP.
package sipvoip

import (
	"fmt"

	"github.com/pion/sdp/v3"
)

// describeCodec parses a raw SDP body and returns a short human-readable
// summary of the negotiated audio codec, for the dialer's "Call answered"
// log line. Returns "" if the body can't be parsed or carries
// no audio media description.
func describeCodec(sdpBody []byte) string {
	if len(sdpBody) == 0 {
		return ""
	}
	var desc sdp.SessionDescription
	if err := desc.Unmarshal(sdpBody); err != nil {
		return ""
	}
	for _, m := range desc.MediaDescriptions {
		if m.MediaName.Media != "audio" {
			continue
		}
		if len(m.MediaName.Formats) == 0 {
			continue
		}
		return fmt.Sprintf("audio/%s@%d", m.MediaName.Formats[0], m.MediaName.Port.Value)
	}
	return ""
}

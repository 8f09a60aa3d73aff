// Package sdp builds the SDP bodies a media node hands back for its
// sessions.
package sdp

import (
	"log/slog"

	"github.com/pion/sdp/v3"
)

// rtpmaps maps standard codec payload types to their rtpmap strings.
var rtpmaps = map[string]string{
	"0":   "PCMU/8000",
	"8":   "PCMA/8000",
	"101": "telephone-event/8000",
}

// BuildResponseSDP creates the SDP body for a media session: one audio
// media line advertising the selected codec plus RFC 4733
// telephone-events, anchored at the node's RTP endpoint.
func BuildResponseSDP(serverAddr string, serverPort int, selectedCodec string) []byte {
	if selectedCodec == "" {
		selectedCodec = "0"
	}
	// Offer telephone-event alongside the voice codec so the far end
	// sends DTMF as events rather than inband tones.
	formats := []string{selectedCodec, "101"}

	sessionDesc := &sdp.SessionDescription{
		Origin: sdp.Origin{
			Username:       "callcore",
			SessionID:      1,
			SessionVersion: 1,
			NetworkType:    "IN",
			AddressType:    "IP4",
			UnicastAddress: serverAddr,
		},
		SessionName: "Callcore Media Session",
		ConnectionInformation: &sdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: "IP4",
			Address: &sdp.Address{
				Address: serverAddr,
			},
		},
		TimeDescriptions: []sdp.TimeDescription{
			{
				Timing: sdp.Timing{
					StartTime: 0,
					StopTime:  0,
				},
			},
		},
		MediaDescriptions: []*sdp.MediaDescription{
			{
				MediaName: sdp.MediaName{
					Media:   "audio",
					Port:    sdp.RangedPort{Value: serverPort},
					Protos:  []string{"RTP", "AVP"},
					Formats: formats,
				},
				Attributes: mediaAttributes(formats),
			},
		},
	}

	sdpBytes, err := sessionDesc.Marshal()
	if err != nil {
		slog.Error("Failed to create response SDP", "error", err)
		return nil
	}

	return sdpBytes
}

// mediaAttributes returns the attribute lines for the audio media
// description: rtpmap per format, fmtp for telephone-event, 20ms
// packetization, sendrecv, and rtcp-mux (RFC 5761).
func mediaAttributes(formats []string) []sdp.Attribute {
	attrs := []sdp.Attribute{}

	for _, format := range formats {
		if rtpmap, ok := rtpmaps[format]; ok {
			attrs = append(attrs, sdp.Attribute{
				Key:   "rtpmap",
				Value: format + " " + rtpmap,
			})
		}
		if format == "101" {
			attrs = append(attrs, sdp.Attribute{
				Key:   "fmtp",
				Value: "101 0-15",
			})
		}
	}

	attrs = append(attrs,
		sdp.Attribute{Key: "ptime", Value: "20"},
		sdp.Attribute{Key: "sendrecv"},
		sdp.Attribute{Key: "rtcp-mux"},
	)

	return attrs
}

package media

import (
	"encoding/binary"
	"fmt"

	"github.com/pion/rtp"
)

// DTMFEvent is an RFC 4733 telephone-event payload. The wire format is
// 4 bytes:
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|     event     |E|R| volume    |          duration             |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
type DTMFEvent struct {
	Event      uint8  // 0-15: 0-9, *, #, A-D
	EndOfEvent bool   // E bit, set on the final packets of an event
	Volume     uint8  // 0-63, in -dBm0
	Duration   uint16 // duration in timestamp units
}

// DTMF parameters.
const (
	MinDTMFDuration uint16 = 400 // 50ms at 8kHz, filters noise
	DTMFPayloadType uint8  = 101 // common default for telephone-event
)

// digitEvents maps DTMF characters to RFC 4733 event codes.
var digitEvents = map[rune]uint8{
	'0': 0, '1': 1, '2': 2, '3': 3, '4': 4,
	'5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
	'*': 10, '#': 11,
	'A': 12, 'B': 13, 'C': 14, 'D': 15,
}

// eventDigits is the inverse of digitEvents.
var eventDigits = func() map[uint8]rune {
	m := make(map[uint8]rune, len(digitEvents))
	for r, e := range digitEvents {
		m[e] = r
	}
	return m
}()

// RuneToEvent converts a DTMF character to its event code.
func RuneToEvent(r rune) (uint8, bool) {
	if r >= 'a' && r <= 'd' {
		r -= 'a' - 'A'
	}
	e, ok := digitEvents[r]
	return e, ok
}

// EventToRune converts a DTMF event code to its character.
func EventToRune(event uint8) (rune, bool) {
	r, ok := eventDigits[event]
	return r, ok
}

// Encode serializes the event to the RFC 4733 4-byte format.
func (e DTMFEvent) Encode() []byte {
	b := make([]byte, 4)
	b[0] = e.Event
	b[1] = e.Volume & 0x3F
	if e.EndOfEvent {
		b[1] |= 0x80
	}
	binary.BigEndian.PutUint16(b[2:], e.Duration)
	return b
}

// DecodeDTMFEvent decodes an RFC 4733 4-byte payload.
func DecodeDTMFEvent(payload []byte) (DTMFEvent, error) {
	if len(payload) < 4 {
		return DTMFEvent{}, fmt.Errorf("DTMF payload too short: %d bytes", len(payload))
	}
	return DTMFEvent{
		Event:      payload[0],
		EndOfEvent: (payload[1] & 0x80) != 0,
		Volume:     payload[1] & 0x3F,
		Duration:   binary.BigEndian.Uint16(payload[2:]),
	}, nil
}

// String returns a human-readable representation of the event.
func (e DTMFEvent) String() string {
	char, ok := EventToRune(e.Event)
	if !ok {
		char = '?'
	}
	endStr := ""
	if e.EndOfEvent {
		endStr = " END"
	}
	return fmt.Sprintf("DTMF '%c' vol=%d dur=%d%s", char, e.Volume, e.Duration, endStr)
}

// DTMFDetector turns a stream of RTP packets into completed digits. It
// runs the RFC 4733 state machine: an event starts with a non-end
// packet, continues (possibly with redundant retransmissions), and
// completes on an end-of-event packet whose duration clears the noise
// floor. End-of-event redundancy means the same digit's end packet
// arrives up to three times; only the first completes the digit.
type DTMFDetector struct {
	dtmfPT      uint8
	minDuration uint16

	pending   bool
	lastEvent uint8
}

// NewDTMFDetector creates a detector for the given telephone-event
// payload type (DTMFPayloadType when negotiation didn't say otherwise).
func NewDTMFDetector(payloadType uint8) *DTMFDetector {
	return &DTMFDetector{
		dtmfPT:      payloadType,
		minDuration: MinDTMFDuration,
	}
}

// SetMinDuration overrides the minimum duration (in timestamp units)
// for a digit to count.
func (d *DTMFDetector) SetMinDuration(samples uint16) {
	d.minDuration = samples
}

// Feed processes one RTP packet. It returns a completed digit and true
// exactly once per telephone event; all other packets return false.
func (d *DTMFDetector) Feed(pkt *rtp.Packet) (rune, bool) {
	if pkt.PayloadType != d.dtmfPT || len(pkt.Payload) < 4 {
		return 0, false
	}

	evt, err := DecodeDTMFEvent(pkt.Payload)
	if err != nil {
		return 0, false
	}

	if evt.EndOfEvent {
		if d.pending && evt.Event == d.lastEvent && evt.Duration >= d.minDuration {
			d.pending = false
			if char, ok := EventToRune(evt.Event); ok {
				return char, true
			}
		}
		d.pending = false
		return 0, false
	}

	if !d.pending || evt.Event != d.lastEvent {
		d.pending = true
		d.lastEvent = evt.Event
	}
	return 0, false
}

// Reset clears the detector's state machine.
func (d *DTMFDetector) Reset() {
	d.pending = false
	d.lastEvent = 0
}

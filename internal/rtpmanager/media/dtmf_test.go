package media

import (
	"testing"

	"github.com/pion/rtp"
)

func dtmfPacket(t *testing.T, evt DTMFEvent, seq uint16) *rtp.Packet {
	t.Helper()
	return &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    DTMFPayloadType,
			SequenceNumber: seq,
		},
		Payload: evt.Encode(),
	}
}

func TestDTMFEventRoundTrip(t *testing.T) {
	evt := DTMFEvent{Event: 11, EndOfEvent: true, Volume: 10, Duration: 1600}

	decoded, err := DecodeDTMFEvent(evt.Encode())
	if err != nil {
		t.Fatalf("DecodeDTMFEvent() error: %v", err)
	}
	if decoded != evt {
		t.Fatalf("round trip = %+v, want %+v", decoded, evt)
	}
}

func TestRuneEventMapping(t *testing.T) {
	tests := []struct {
		digit rune
		event uint8
	}{
		{'0', 0}, {'9', 9}, {'*', 10}, {'#', 11}, {'A', 12}, {'d', 15},
	}
	for _, tt := range tests {
		event, ok := RuneToEvent(tt.digit)
		if !ok || event != tt.event {
			t.Fatalf("RuneToEvent(%c) = (%d, %v), want (%d, true)", tt.digit, event, ok, tt.event)
		}
	}
	if _, ok := RuneToEvent('x'); ok {
		t.Fatalf("RuneToEvent('x') succeeded, want failure")
	}
}

func TestDetectorCompletesDigitOnce(t *testing.T) {
	d := NewDTMFDetector(DTMFPayloadType)

	// Start + continuation packets must not complete the digit.
	for i, dur := range []uint16{160, 320, 480} {
		if digit, ok := d.Feed(dtmfPacket(t, DTMFEvent{Event: 10, Volume: 10, Duration: dur}, uint16(i))); ok {
			t.Fatalf("continuation packet completed digit %c", digit)
		}
	}

	// RFC 4733 sends the end packet three times; only the first counts.
	end := DTMFEvent{Event: 10, EndOfEvent: true, Volume: 10, Duration: 800}
	digit, ok := d.Feed(dtmfPacket(t, end, 3))
	if !ok || digit != '*' {
		t.Fatalf("end packet = (%c, %v), want ('*', true)", digit, ok)
	}
	for i := uint16(4); i < 6; i++ {
		if digit, ok := d.Feed(dtmfPacket(t, end, i)); ok {
			t.Fatalf("redundant end packet completed digit %c again", digit)
		}
	}
}

func TestDetectorFiltersShortEvents(t *testing.T) {
	d := NewDTMFDetector(DTMFPayloadType)

	d.Feed(dtmfPacket(t, DTMFEvent{Event: 5, Volume: 10, Duration: 160}, 0))
	end := DTMFEvent{Event: 5, EndOfEvent: true, Volume: 10, Duration: MinDTMFDuration - 1}
	if digit, ok := d.Feed(dtmfPacket(t, end, 1)); ok {
		t.Fatalf("sub-minimum event completed digit %c", digit)
	}
}

func TestDetectorIgnoresOtherPayloadTypes(t *testing.T) {
	d := NewDTMFDetector(DTMFPayloadType)

	pkt := dtmfPacket(t, DTMFEvent{Event: 1, EndOfEvent: true, Volume: 10, Duration: 800}, 0)
	pkt.PayloadType = 0 // PCMU audio, not telephone-event
	if digit, ok := d.Feed(pkt); ok {
		t.Fatalf("audio packet completed digit %c", digit)
	}
}

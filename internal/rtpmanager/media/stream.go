package media

import (
	"crypto/rand"
	"encoding/binary"
	"net"
	"sync"
	"time"

	"github.com/pion/rtp"
)

// RTPReader reads RTP packets from an underlying source (a UDP socket,
// a buffer in tests).
type RTPReader interface {
	ReadRTP() (*rtp.Packet, error)
}

// RTPWriter writes RTP packets to an underlying destination.
type RTPWriter interface {
	WriteRTP(p *rtp.Packet) error
}

// GenerateSSRC returns a cryptographically random 32-bit SSRC, chosen
// randomly per RFC 3550 to minimize collisions.
func GenerateSSRC() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0x12345678
	}
	return binary.BigEndian.Uint32(b[:])
}

// GenerateSequenceStart returns a random initial sequence number, per
// RFC 3550.
func GenerateSequenceStart() uint16 {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return binary.BigEndian.Uint16(b[:])
}

// GenerateTimestampStart returns a random initial timestamp, per
// RFC 3550.
func GenerateTimestampStart() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(b[:])
}

// RTPStreamWriter sends RTP packets with clock-based pacing: each
// payload write blocks until the next codec-frame tick, so a file
// streams out in real time without drift.
type RTPStreamWriter struct {
	conn       net.PacketConn
	remoteAddr net.Addr

	ssrc      uint32
	pt        uint8
	seq       uint16
	timestamp uint32

	codec  Codec
	ticker *time.Ticker

	mu     sync.Mutex
	closed bool
}

// NewRTPStreamWriter creates a clock-paced RTP stream writer for codec.
func NewRTPStreamWriter(conn net.PacketConn, remote net.Addr, codec Codec) *RTPStreamWriter {
	return &RTPStreamWriter{
		conn:       conn,
		remoteAddr: remote,
		ssrc:       GenerateSSRC(),
		pt:         codec.PayloadType,
		seq:        GenerateSequenceStart(),
		timestamp:  GenerateTimestampStart(),
		codec:      codec,
		ticker:     time.NewTicker(codec.SampleDur),
	}
}

// WritePayload sends one codec frame, blocking until the pacing tick.
// marker is set on the first packet of a talkspurt.
func (w *RTPStreamWriter) WritePayload(payload []byte, marker bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return net.ErrClosed
	}

	<-w.ticker.C

	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			Marker:         marker,
			PayloadType:    w.pt,
			SequenceNumber: w.seq,
			Timestamp:      w.timestamp,
			SSRC:           w.ssrc,
		},
		Payload: payload,
	}

	data, err := pkt.Marshal()
	if err != nil {
		return err
	}

	if _, err := w.conn.WriteTo(data, w.remoteAddr); err != nil {
		return err
	}

	w.seq++
	w.timestamp += w.codec.TimestampIncrement()
	return nil
}

// WriteRTP sends a packet directly, bypassing pacing. The SSRC is
// overridden to keep the stream consistent.
func (w *RTPStreamWriter) WriteRTP(pkt *rtp.Packet) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return net.ErrClosed
	}

	pkt.SSRC = w.ssrc

	data, err := pkt.Marshal()
	if err != nil {
		return err
	}

	_, err = w.conn.WriteTo(data, w.remoteAddr)
	return err
}

// SSRC returns the stream's SSRC.
func (w *RTPStreamWriter) SSRC() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ssrc
}

// Close stops the pacing ticker and marks the writer closed.
func (w *RTPStreamWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.closed {
		w.closed = true
		w.ticker.Stop()
	}
	return nil
}

var _ RTPWriter = (*RTPStreamWriter)(nil)

// connReader adapts a UDP socket into an RTPReader for the inbound
// (DTMF-detection) direction of a session.
type connReader struct {
	conn net.PacketConn
	buf  [1500]byte
}

// NewConnReader wraps conn as an RTPReader.
func NewConnReader(conn net.PacketConn) RTPReader {
	return &connReader{conn: conn}
}

func (r *connReader) ReadRTP() (*rtp.Packet, error) {
	n, _, err := r.conn.ReadFrom(r.buf[:])
	if err != nil {
		return nil, err
	}
	pkt := &rtp.Packet{}
	if err := pkt.Unmarshal(append([]byte(nil), r.buf[:n]...)); err != nil {
		return nil, err
	}
	return pkt, nil
}

// SequenceTracker tracks received RTP sequence numbers with rollover
// handling: sequence numbers are 16-bit and wrap at 65535, so an
// extended 32-bit counter is maintained for loss accounting.
type SequenceTracker struct {
	initialized bool
	lastSeq     uint16
	cycles      uint32
	lost        uint64
	received    uint64
}

// NewSequenceTracker creates a sequence tracker.
func NewSequenceTracker() *SequenceTracker {
	return &SequenceTracker{}
}

// Update records a received sequence number and returns the extended
// 32-bit sequence plus how many packets were lost since the last one.
func (s *SequenceTracker) Update(seq uint16) (extended uint32, lost int) {
	s.received++

	if !s.initialized {
		s.initialized = true
		s.lastSeq = seq
		return uint32(seq), 0
	}

	// Forward distance handling wrap-around per RFC 3550; negative
	// means out-of-order or a late packet from before a rollover.
	diff := int16(seq - s.lastSeq)
	if diff > 1 {
		lost = int(diff) - 1
		s.lost += uint64(lost)
	}

	if s.lastSeq > 0xF000 && seq < 0x1000 {
		s.cycles++
	}

	s.lastSeq = seq
	return (s.cycles << 16) | uint32(seq), lost
}

// Stats returns cumulative received/lost counts.
func (s *SequenceTracker) Stats() (received, lost uint64) {
	return s.received, s.lost
}

// LossRate returns the loss fraction in [0, 1].
func (s *SequenceTracker) LossRate() float64 {
	if s.received == 0 && s.lost == 0 {
		return 0.0
	}
	total := s.received + s.lost
	return float64(s.lost) / float64(total)
}

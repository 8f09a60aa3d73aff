package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// LocalService streams locally-stored audio files to a session's remote
// RTP endpoint in-process, using the codec negotiated at session setup.
// While a stream's socket is open, inbound packets on it are watched
// for RFC 4733 telephone-events, so digits the far end presses during
// playback surface through PlayRequest.OnDigit.
type LocalService struct {
	codecs      *CodecManager
	activeCalls map[string]context.CancelFunc
	mu          sync.RWMutex
}

// NewLocalService creates a local media service with the default codec
// set.
func NewLocalService() *LocalService {
	return &LocalService{
		codecs:      NewCodecManager(),
		activeCalls: make(map[string]context.CancelFunc),
	}
}

// Play starts streaming req.File to req.Endpoint:req.Port. It returns
// once the stream has started; completion and failure are reported
// through req.OnComplete/req.OnError, since a call's playback duration
// is unrelated to how long admission control should block on
// PlayFileRequest.
func (s *LocalService) Play(ctx context.Context, req PlayRequest) error {
	if req.CallID == "" || req.File == "" || req.Codec == "" || req.Port == 0 {
		return fmt.Errorf("invalid play request: missing required fields")
	}

	codecCfg, err := s.codecs.GetByPayloadTypeString(req.Codec)
	if err != nil {
		return fmt.Errorf("unsupported codec: %s", req.Codec)
	}

	s.mu.Lock()
	if _, exists := s.activeCalls[req.CallID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("playback already active for call %s", req.CallID)
	}
	playCtx, cancel := context.WithCancel(ctx)
	s.activeCalls[req.CallID] = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.activeCalls, req.CallID)
			s.mu.Unlock()
		}()

		if err := s.streamAudio(playCtx, req, codecCfg); err != nil {
			slog.Error("[Media] Playback failed", "call_id", req.CallID, "error", err)
			if req.OnError != nil {
				req.OnError(req.CallID, err)
			}
		}
	}()

	return nil
}

// Stop cancels active playback for a call. Idempotent callers should
// check the returned error to tell "already stopped" from a real
// failure.
func (s *LocalService) Stop(callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel, exists := s.activeCalls[callID]
	if !exists {
		return fmt.Errorf("no active playback for call %s", callID)
	}
	cancel()
	delete(s.activeCalls, callID)
	return nil
}

// Ready reports whether the service has a usable codec table.
func (s *LocalService) Ready() bool {
	return s.codecs != nil
}

// SupportsCodec reports whether the service can stream the codec named
// by ptStr (codec name or payload type string).
func (s *LocalService) SupportsCodec(ptStr string) bool {
	return s.codecs.Supports(ptStr)
}

func (s *LocalService) streamAudio(ctx context.Context, req PlayRequest, codecCfg *CodecConfig) error {
	slog.Info("[Media] Starting playback",
		"call_id", req.CallID,
		"file", req.File,
		"codec", req.Codec,
		"local", fmt.Sprintf("%s:%d", req.LocalAddr, req.LocalPort),
		"remote", fmt.Sprintf("%s:%d", req.Endpoint, req.Port))

	audioFile, err := ReadWAVFile(req.File)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}

	encodedAudio, err := codecCfg.Resampler(audioFile)
	if err != nil {
		return fmt.Errorf("failed to encode audio: %w", err)
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: req.LocalPort, IP: net.IPv4zero})
	if err != nil {
		return fmt.Errorf("failed to bind to local RTP port %d: %w", req.LocalPort, err)
	}
	defer conn.Close()

	// The inbound direction of the same socket carries whatever the far
	// end sends back; watch it for telephone-events until the stream is
	// done.
	var watcherWG sync.WaitGroup
	if req.OnDigit != nil {
		watcherWG.Add(1)
		go func() {
			defer watcherWG.Done()
			s.watchDigits(ctx, conn, req)
		}()
	}

	remote := &net.UDPAddr{Port: req.Port, IP: net.ParseIP(req.Endpoint)}
	writer := NewRTPStreamWriter(conn, remote, codecCfg.Wire)
	defer writer.Close()

	bytesPerFrame := codecCfg.Wire.BytesPerFrame()
	frameCount := (len(encodedAudio) + bytesPerFrame - 1) / bytesPerFrame
	framesSent := 0

	slog.Debug("[Media] Streaming setup", "frames_total", frameCount, "bytes_per_frame", bytesPerFrame)

	streamErr := func() error {
		for i := 0; i+bytesPerFrame <= len(encodedAudio); i += bytesPerFrame {
			select {
			case <-ctx.Done():
				slog.Info("[Media] Playback cancelled", "call_id", req.CallID, "frames_sent", framesSent)
				return nil
			default:
			}

			frame := encodedAudio[i : i+bytesPerFrame]
			if err := writer.WritePayload(frame, framesSent == 0); err != nil {
				return fmt.Errorf("failed to send RTP packet to %s:%d: %w", req.Endpoint, req.Port, err)
			}
			framesSent++
		}
		return nil
	}()

	// Unblock and drain the digit watcher before any completion
	// callback, so OnDigit never fires after OnComplete.
	_ = conn.SetReadDeadline(time.Now())
	watcherWG.Wait()

	if streamErr != nil {
		return streamErr
	}
	if ctx.Err() != nil {
		if req.OnStopped != nil {
			req.OnStopped(req.CallID)
		}
		return nil
	}

	slog.Info("[Media] Playback complete", "call_id", req.CallID, "frames_sent", framesSent, "total_frames", frameCount)

	if req.OnComplete != nil {
		if err := req.OnComplete(req.CallID, framesSent); err != nil {
			slog.Error("[Media] Completion callback failed", "call_id", req.CallID, "error", err)
			return err
		}
	}

	return nil
}

// watchDigits reads inbound packets off the stream socket and feeds
// them to a telephone-event detector, reporting completed digits via
// req.OnDigit. It exits when the socket closes, its deadline fires, or
// ctx is cancelled.
func (s *LocalService) watchDigits(ctx context.Context, conn net.PacketConn, req PlayRequest) {
	reader := NewConnReader(conn)
	detector := NewDTMFDetector(DTMFPayloadType)

	for {
		if ctx.Err() != nil {
			return
		}
		pkt, err := reader.ReadRTP()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return
			}
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			// A malformed datagram is not fatal; keep listening.
			continue
		}

		if digit, ok := detector.Feed(pkt); ok {
			slog.Debug("[Media] DTMF digit detected", "call_id", req.CallID, "digit", string(digit))
			req.OnDigit(req.CallID, digit)
		}
	}
}

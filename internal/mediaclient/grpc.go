package mediaclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	rtpv1 "github.com/sebas/callcore/pkg/rtpmanager/v1"
)

// GRPCConfig holds the connection settings for one media node.
type GRPCConfig struct {
	Address           string
	ConnectTimeout    time.Duration
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
}

// GRPCTransport implements Transport against a single cmd/rtpmanager
// node. It is a thin RPC shim: all session state lives on the node,
// the shim only translates between the Transport types and the wire.
type GRPCTransport struct {
	addr   string
	conn   *grpc.ClientConn
	client rtpv1.RTPManagerServiceClient
	closed atomic.Bool
}

// NewGRPCTransport dials a media node.
func NewGRPCTransport(cfg GRPCConfig) (*GRPCTransport, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.KeepaliveInterval == 0 {
		cfg.KeepaliveInterval = 30 * time.Second
	}
	if cfg.KeepaliveTimeout == 0 {
		cfg.KeepaliveTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, cfg.Address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                cfg.KeepaliveInterval,
			Timeout:             cfg.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("media node %s: dial: %w", cfg.Address, err)
	}

	t := &GRPCTransport{
		addr:   cfg.Address,
		conn:   conn,
		client: rtpv1.NewRTPManagerServiceClient(conn),
	}

	slog.Info("[MediaClient] media node connected", "address", cfg.Address)
	return t, nil
}

// rpcOutcome folds the two ways a media-node call can fail — a
// transport error, or a well-formed response carrying an error status —
// into one error value, so every method reports failures the same way.
func (t *GRPCTransport) rpcOutcome(op string, status *rtpv1.SessionStatus, err error) error {
	if err != nil {
		return fmt.Errorf("media node %s: %s: %w", t.addr, op, err)
	}
	if status != nil && status.State == rtpv1.SessionState_SESSION_STATE_ERROR {
		return fmt.Errorf("media node %s: %s: %s", t.addr, op, status.ErrorMessage)
	}
	return nil
}

func (t *GRPCTransport) CreateSession(ctx context.Context, info SessionInfo) (*SessionResult, error) {
	resp, err := t.client.CreateSession(ctx, &rtpv1.CreateSessionRequest{
		CallId:        info.CallID,
		RemoteAddr:    info.RemoteAddr,
		RemotePort:    int32(info.RemotePort),
		OfferedCodecs: info.OfferedCodecs,
	})

	var status *rtpv1.SessionStatus
	if resp != nil {
		status = resp.Status
	}
	if err := t.rpcOutcome("create session", status, err); err != nil {
		return nil, err
	}

	return &SessionResult{
		SessionID:     resp.SessionId,
		LocalAddr:     resp.LocalAddr,
		LocalPort:     int(resp.LocalPort),
		SDPBody:       resp.SdpBody,
		SelectedCodec: resp.SelectedCodec,
	}, nil
}

// CreateSessionPendingRemote is CreateSession with the remote endpoint
// left blank; the node parks the session in pending-remote state until
// UpdateSessionRemote supplies the peer from the SDP answer.
func (t *GRPCTransport) CreateSessionPendingRemote(ctx context.Context, callID string, codecs []string) (*SessionResult, error) {
	return t.CreateSession(ctx, SessionInfo{CallID: callID, OfferedCodecs: codecs})
}

func (t *GRPCTransport) UpdateSessionRemote(ctx context.Context, sessionID, remoteAddr string, remotePort int) error {
	resp, err := t.client.UpdateSessionRemote(ctx, &rtpv1.UpdateSessionRemoteRequest{
		SessionId:  sessionID,
		RemoteAddr: remoteAddr,
		RemotePort: int32(remotePort),
	})

	var status *rtpv1.SessionStatus
	if resp != nil {
		status = resp.Status
	}
	return t.rpcOutcome("update session remote", status, err)
}

func (t *GRPCTransport) DestroySession(ctx context.Context, sessionID string, reason TerminateReason) error {
	resp, err := t.client.DestroySession(ctx, &rtpv1.DestroySessionRequest{
		SessionId: sessionID,
		Reason:    rtpv1.TerminateReason(reason),
	})

	var status *rtpv1.SessionStatus
	if resp != nil {
		status = resp.Status
	}
	return t.rpcOutcome("destroy session", status, err)
}

func (t *GRPCTransport) PlayAudio(ctx context.Context, req PlayRequest) (<-chan PlayStatus, error) {
	stream, err := t.client.PlayAudio(ctx, &rtpv1.PlayAudioRequest{
		SessionId: req.SessionID,
		FilePath:  req.AudioFile,
		Loop:      req.Loop,
	})
	if err != nil {
		return nil, t.rpcOutcome("play audio", nil, err)
	}

	statusCh := make(chan PlayStatus, 10)
	go t.pumpPlayback(req.SessionID, stream, statusCh)
	return statusCh, nil
}

// pumpPlayback drains a playback event stream into statusCh until a
// terminal event (completed, stopped, stream error) arrives, then
// closes the channel.
func (t *GRPCTransport) pumpPlayback(sessionID string, stream rtpv1.RTPManagerService_PlayAudioClient, statusCh chan<- PlayStatus) {
	defer close(statusCh)

	for {
		msg, err := stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			statusCh <- PlayStatus{SessionID: sessionID, State: PlayStateError, Error: err}
			return
		}

		status, terminal := translatePlaybackEvent(msg)
		statusCh <- status
		if terminal {
			return
		}
	}
}

// translatePlaybackEvent maps one wire event to a PlayStatus and
// reports whether it ends the stream.
func translatePlaybackEvent(msg *rtpv1.PlaybackEvent) (PlayStatus, bool) {
	status := PlayStatus{SessionID: msg.SessionId}

	switch e := msg.Event.(type) {
	case *rtpv1.PlaybackEvent_Started:
		status.State = PlayStateStarted
	case *rtpv1.PlaybackEvent_Progress:
		status.State = PlayStateProgress
	case *rtpv1.PlaybackEvent_Digit:
		status.State = PlayStateDigit
		if len(e.Digit.Digit) > 0 {
			status.Digit = rune(e.Digit.Digit[0])
		}
	case *rtpv1.PlaybackEvent_Completed:
		status.State = PlayStateCompleted
		return status, true
	case *rtpv1.PlaybackEvent_Stopped:
		status.State = PlayStateStopped
		return status, true
	case *rtpv1.PlaybackEvent_Error:
		status.State = PlayStateError
		status.Error = fmt.Errorf("%s: %s", e.Error.Code, e.Error.Message)
	}

	return status, false
}

func (t *GRPCTransport) StopAudio(ctx context.Context, sessionID string) error {
	_, err := t.client.StopAudio(ctx, &rtpv1.StopAudioRequest{SessionId: sessionID})
	return t.rpcOutcome("stop audio", nil, err)
}

// Ready probes the node's Health RPC with a short deadline.
func (t *GRPCTransport) Ready() bool {
	if t.closed.Load() || t.conn == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := t.client.Health(ctx, &rtpv1.HealthRequest{})
	return err == nil && resp.Healthy
}

func (t *GRPCTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}

// Package session owns the media-session table of a media node: port
// allocation, codec negotiation, playback dispatch, and teardown.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sebas/callcore/internal/rtpmanager/media"
	"github.com/sebas/callcore/internal/rtpmanager/portpool"
	"github.com/sebas/callcore/internal/rtpmanager/sdp"
	rtpv1 "github.com/sebas/callcore/pkg/rtpmanager/v1"
)

// Session is one active media session.
type Session struct {
	ID         string
	CallID     string
	LocalAddr  string
	LocalPort  int
	RTCPPort   int
	RemoteAddr string
	RemotePort int
	Codec      string
	State      rtpv1.SessionState
	CreatedAt  time.Time
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.RWMutex
}

// Manager manages media sessions.
type Manager struct {
	mu            sync.RWMutex
	sessions      map[string]*Session // sessionID -> Session
	callToSession map[string]string   // callID -> sessionID
	portPool      *portpool.PortPool
	mediaService  *media.LocalService
	advertiseAddr string
}

// NewManager creates a session manager.
func NewManager(portPool *portpool.PortPool, mediaService *media.LocalService, advertiseAddr string) *Manager {
	return &Manager{
		sessions:      make(map[string]*Session),
		callToSession: make(map[string]string),
		portPool:      portPool,
		mediaService:  mediaService,
		advertiseAddr: advertiseAddr,
	}
}

// CreateSession creates a session. A remoteAddr/remotePort of ""/0
// creates it in pending-remote state, as an outbound call needs: the
// local port and SDP offer must exist before the INVITE goes out, and
// the peer endpoint only arrives with the SDP answer (see
// UpdateRemoteEndpoint).
func (m *Manager) CreateSession(callID, remoteAddr string, remotePort int, offeredCodecs []string) (*Session, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// An existing session for the call is a retransmission, not an error.
	if sessionID, exists := m.callToSession[callID]; exists {
		if sess, ok := m.sessions[sessionID]; ok {
			slog.Warn("[SessionMgr] Session already exists for call", "call_id", callID, "session_id", sessionID)
			sdpBody := sdp.BuildResponseSDP(m.advertiseAddr, sess.LocalPort, sess.Codec)
			return sess, sdpBody, nil
		}
	}

	rtpPort, rtcpPort, err := m.portPool.Allocate()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to allocate ports: %w", err)
	}

	selectedCodec := ""
	for _, codec := range offeredCodecs {
		if m.mediaService.SupportsCodec(codec) {
			selectedCodec = codec
			break
		}
	}
	if selectedCodec == "" {
		m.portPool.Release(rtpPort)
		return nil, nil, fmt.Errorf("no supported codec offered (want PCMU or PCMA, got %v)", offeredCodecs)
	}

	state := rtpv1.SessionState_SESSION_STATE_CREATED
	if remoteAddr == "" || remotePort == 0 {
		state = rtpv1.SessionState_SESSION_STATE_PENDING_REMOTE
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		ID:         uuid.New().String(),
		CallID:     callID,
		LocalAddr:  m.advertiseAddr,
		LocalPort:  rtpPort,
		RTCPPort:   rtcpPort,
		RemoteAddr: remoteAddr,
		RemotePort: remotePort,
		Codec:      selectedCodec,
		State:      state,
		CreatedAt:  time.Now(),
		ctx:        ctx,
		cancel:     cancel,
	}

	m.sessions[sess.ID] = sess
	m.callToSession[callID] = sess.ID

	sdpBody := sdp.BuildResponseSDP(m.advertiseAddr, rtpPort, selectedCodec)

	slog.Info("[SessionMgr] Session created",
		"session_id", sess.ID,
		"call_id", callID,
		"local_port", rtpPort,
		"codec", selectedCodec,
		"state", state.String())

	return sess, sdpBody, nil
}

// GetSession retrieves a session by ID.
func (m *Manager) GetSession(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[sessionID]
	return sess, ok
}

// UpdateRemoteEndpoint fills in the remote RTP endpoint once the SDP
// answer has been parsed, activating a pending-remote session.
func (m *Manager) UpdateRemoteEndpoint(sessionID, remoteAddr string, remotePort int) error {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	sess.mu.Lock()
	sess.RemoteAddr = remoteAddr
	sess.RemotePort = remotePort
	if sess.State == rtpv1.SessionState_SESSION_STATE_PENDING_REMOTE {
		sess.State = rtpv1.SessionState_SESSION_STATE_ACTIVE
	}
	sess.mu.Unlock()

	slog.Info("[SessionMgr] Remote endpoint updated",
		"session_id", sessionID,
		"remote", fmt.Sprintf("%s:%d", remoteAddr, remotePort),
	)

	return nil
}

// DestroySession destroys a session and releases its resources.
func (m *Manager) DestroySession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	sess.cancel()
	m.mediaService.Stop(sess.CallID)
	m.portPool.Release(sess.LocalPort)

	sess.mu.Lock()
	sess.State = rtpv1.SessionState_SESSION_STATE_TERMINATED
	sess.mu.Unlock()

	delete(m.sessions, sessionID)
	delete(m.callToSession, sess.CallID)

	slog.Info("[SessionMgr] Session destroyed", "session_id", sessionID, "call_id", sess.CallID)
	return nil
}

// PlayAudio starts audio playback for a session, streaming playback
// events (started, detected digits, completion, errors) onto eventCh.
// The channel is closed once playback ends, whichever way it ends.
func (m *Manager) PlayAudio(sessionID, filePath string, eventCh chan<- *rtpv1.PlaybackEvent) error {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	sess.mu.Lock()
	sess.State = rtpv1.SessionState_SESSION_STATE_ACTIVE
	remoteAddr, remotePort := sess.RemoteAddr, sess.RemotePort
	sess.mu.Unlock()

	if remoteAddr == "" || remotePort == 0 {
		return fmt.Errorf("session %s has no remote endpoint yet", sessionID)
	}

	playReq := media.PlayRequest{
		CallID:    sess.CallID,
		File:      filePath,
		Codec:     sess.Codec,
		LocalAddr: sess.LocalAddr,
		LocalPort: sess.LocalPort,
		Endpoint:  remoteAddr,
		Port:      remotePort,
		OnDigit: func(callID string, digit rune) {
			// The digit watcher is drained before any terminal callback
			// fires, so this send cannot race the close below.
			eventCh <- &rtpv1.PlaybackEvent{
				SessionId: sessionID,
				Event: &rtpv1.PlaybackEvent_Digit{
					Digit: &rtpv1.PlaybackDigit{Digit: string(digit)},
				},
			}
		},
		OnComplete: func(callID string, framesSent int) error {
			eventCh <- &rtpv1.PlaybackEvent{
				SessionId: sessionID,
				Event: &rtpv1.PlaybackEvent_Completed{
					Completed: &rtpv1.PlaybackCompleted{
						TotalFramesSent: int64(framesSent),
					},
				},
			}
			close(eventCh)
			return nil
		},
		OnStopped: func(callID string) {
			eventCh <- &rtpv1.PlaybackEvent{
				SessionId: sessionID,
				Event: &rtpv1.PlaybackEvent_Stopped{
					Stopped: &rtpv1.PlaybackStopped{},
				},
			}
			close(eventCh)
		},
		OnError: func(callID string, err error) {
			eventCh <- &rtpv1.PlaybackEvent{
				SessionId: sessionID,
				Event: &rtpv1.PlaybackEvent_Error{
					Error: &rtpv1.PlaybackError{
						Code:    "PLAYBACK_FAILED",
						Message: err.Error(),
					},
				},
			}
			close(eventCh)
		},
	}

	eventCh <- &rtpv1.PlaybackEvent{
		SessionId: sessionID,
		Event: &rtpv1.PlaybackEvent_Started{
			Started: &rtpv1.PlaybackStarted{},
		},
	}

	if err := m.mediaService.Play(sess.ctx, playReq); err != nil {
		eventCh <- &rtpv1.PlaybackEvent{
			SessionId: sessionID,
			Event: &rtpv1.PlaybackEvent_Error{
				Error: &rtpv1.PlaybackError{
					Code:    "PLAYBACK_FAILED",
					Message: err.Error(),
				},
			},
		}
		close(eventCh)
		return err
	}

	return nil
}

// StopAudio stops audio playback for a session.
func (m *Manager) StopAudio(sessionID string) (bool, error) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return false, nil // idempotent
	}

	err := m.mediaService.Stop(sess.CallID)
	return err == nil, err
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll destroys all sessions.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sess := range m.sessions {
		sess.cancel()
		m.mediaService.Stop(sess.CallID)
		m.portPool.Release(sess.LocalPort)
	}
	m.sessions = make(map[string]*Session)
	m.callToSession = make(map[string]string)
}

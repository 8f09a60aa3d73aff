// Package media adapts the media-node client pool to the blocking
// playback shape the SIP adapter expects for PlayFileRequest handling,
// and adds the optional duration-lookup hook a real deployment plugs a
// WAV prober into.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sebas/callcore/internal/mediaclient"
)

// DurationLookup resolves how long an audio file will take to play.
// Optional: when set, Play logs the expected duration at debug level;
// a nil lookup skips that step. The duration is not otherwise used.
type DurationLookup func(filename string) (time.Duration, error)

// Player adapts a mediaclient.Transport to sipvoip.Player.
type Player struct {
	logger    *slog.Logger
	transport mediaclient.Transport
	lookupDur DurationLookup
}

// NewPlayer wraps a media transport (normally a *mediaclient.Pool) for
// use as the demo's audio player. lookupDur may be nil.
func NewPlayer(logger *slog.Logger, transport mediaclient.Transport, lookupDur DurationLookup) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		logger:    logger,
		transport: transport,
		lookupDur: lookupDur,
	}
}

// Play streams filename into sessionID and blocks until playback
// completes, is stopped, or errors — the synchronous shape the SIP
// adapter needs for PlayFileRequest/PlayFileResponse correlation.
// onDigit (may be nil) fires for every DTMF digit the media node
// detects from the far end while streaming.
func (p *Player) Play(ctx context.Context, sessionID, filename string, onDigit func(rune)) error {
	if p.lookupDur != nil {
		if d, err := p.lookupDur(filename); err == nil {
			p.logger.Debug("[Media] expected playback duration", "session_id", sessionID, "file", filename, "duration", d)
		}
	}

	statusCh, err := p.transport.PlayAudio(ctx, mediaclient.PlayRequest{
		SessionID: sessionID,
		AudioFile: filename,
	})
	if err != nil {
		return fmt.Errorf("[Media] play %s on session %s: %w", filename, sessionID, err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = p.transport.StopAudio(context.Background(), sessionID)
			return ctx.Err()
		case status, ok := <-statusCh:
			if !ok {
				return nil
			}
			switch status.State {
			case mediaclient.PlayStateDigit:
				if onDigit != nil && status.Digit != 0 {
					onDigit(status.Digit)
				}
			case mediaclient.PlayStateCompleted, mediaclient.PlayStateStopped:
				return nil
			case mediaclient.PlayStateError:
				return status.Error
			}
		}
	}
}

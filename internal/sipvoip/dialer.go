package sipvoip

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/emiago/sipgo"
	"github.com/emiago/sipgo/sip"
	"github.com/google/uuid"
	psdp "github.com/pion/sdp/v3"

	"github.com/sebas/callcore/internal/mediaclient"
)

// offeredCodecs is the payload-type list offered on every outbound
// INVITE: PCMU and PCMA.
var offeredCodecs = []string{"0", "8"}

type dialerConfig struct {
	AdvertiseAddr string
	Port          int
	LocalUser     string // user part of our From/Contact URIs
	Gateway       string // trunk for bare-number targets, "" to disable
	DialTimeout   time.Duration
}

// dialer places and tears down outbound SIP calls. It is a pure UAC:
// for every dial it allocates a media session, sends an INVITE carrying
// that session's SDP offer, walks the response flow to an answer or a
// failure, and afterwards owns the leg's hangup path (local BYE, dial
// CANCEL, or remote BYE).
type dialer struct {
	cfg     dialerConfig
	logger  *slog.Logger
	client  *sipgo.Client
	media   mediaclient.Transport
	dialogs *dialogTable

	mu   sync.Mutex
	legs map[string]*Leg // live legs by SIP Call-ID
}

func newDialer(logger *slog.Logger, cfg dialerConfig, client *sipgo.Client, media mediaclient.Transport) *dialer {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 30 * time.Second
	}
	if cfg.LocalUser == "" {
		cfg.LocalUser = "callcore"
	}
	return &dialer{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		media:   media,
		dialogs: newDialogTable(),
		legs:    make(map[string]*Leg),
	}
}

// Dial places an outbound call to party and blocks until it is answered
// or fails. onProgress fires on ringing/early-media transitions while
// the dial is in flight; the returned leg is in Answered state.
// Cancel ctx to abandon the attempt (a CANCEL is sent).
func (d *dialer) Dial(ctx context.Context, party string, onProgress func(LegState)) (*Leg, error) {
	target, err := resolveTarget(party, d.cfg.Gateway)
	if err != nil {
		return nil, &DialError{Target: party, SIPCode: 404, SIPReason: "Not Found", Cause: err}
	}

	sipCallID := uuid.New().String()
	localTag := uuid.New().String()[:8]

	leg := newLeg(sipCallID, party, target.String())
	leg.onProgress = onProgress

	d.mu.Lock()
	d.legs[sipCallID] = leg
	d.mu.Unlock()

	session, err := d.media.CreateSessionPendingRemote(ctx, sipCallID, offeredCodecs)
	if err != nil {
		d.forget(sipCallID)
		leg.terminate(LegStateFailed, TerminationCauseError)
		return nil, &DialError{Target: party, SIPCode: 500, SIPReason: "Media allocation failed", Cause: err}
	}
	leg.setSession(session.SessionID, session.LocalAddr, session.LocalPort, session.SelectedCodec)

	invite, err := d.buildINVITE(target, sipCallID, localTag, session.SDPBody)
	if err != nil {
		d.abandon(leg, TerminationCauseError)
		return nil, &DialError{Target: party, SIPCode: 500, SIPReason: "Failed to build INVITE", Cause: err}
	}

	dialCtx, cancel := context.WithTimeout(ctx, d.cfg.DialTimeout)
	defer cancel()

	tx, err := d.client.TransactionRequest(dialCtx, invite)
	if err != nil {
		d.abandon(leg, TerminationCauseError)
		return nil, &DialError{Target: party, SIPCode: 503, SIPReason: "Transaction failed", Cause: err}
	}

	d.logger.Info("[Dialer] INVITE sent", "sip_call_id", sipCallID, "target", target.String())

	dialErr := d.awaitAnswer(ctx, dialCtx, leg, invite, tx)
	if dialErr != nil {
		d.abandon(leg, dialCauseOf(dialErr))
		dialErr.Target = party
		dialErr.ResolvedURI = target.String()
		return nil, dialErr
	}

	return leg, nil
}

// awaitAnswer runs the INVITE response flow to completion. A nil return
// means the leg is answered; otherwise the DialError describes why not.
func (d *dialer) awaitAnswer(parent, dialCtx context.Context, leg *Leg, invite *sip.Request, tx sip.ClientTransaction) *DialError {
	for {
		select {
		case <-dialCtx.Done():
			_ = d.sendCANCEL(leg, invite)
			if parent.Err() != nil {
				return &DialError{SIPCode: 487, SIPReason: "Request Terminated", Cause: ErrDialCanceled}
			}
			return &DialError{SIPCode: 408, SIPReason: "Request Timeout", Cause: ErrDialTimeout}

		case resp := <-tx.Responses():
			if resp == nil {
				return &DialError{SIPCode: 408, SIPReason: "No Response", Cause: fmt.Errorf("no response received")}
			}
			done, dialErr := d.handleResponse(dialCtx, leg, resp, invite)
			if dialErr != nil {
				return dialErr
			}
			if done {
				return nil
			}

		case <-tx.Done():
			if leg.State() == LegStateAnswered {
				return nil
			}
			if code, reason := leg.SIPResponse(); code != 0 {
				return &DialError{SIPCode: code, SIPReason: reason}
			}
			return &DialError{SIPCode: 500, SIPReason: "Transaction terminated unexpectedly"}
		}
	}
}

// handleResponse processes one SIP response. done is true once the leg
// is answered; a non-nil DialError ends the dial.
func (d *dialer) handleResponse(ctx context.Context, leg *Leg, resp *sip.Response, invite *sip.Request) (done bool, dialErr *DialError) {
	statusCode := int(resp.StatusCode)

	d.logger.Debug("[Dialer] Response received",
		"sip_call_id", leg.SIPCallID(), "status", statusCode, "reason", resp.Reason)

	switch {
	case statusCode == 100:
		return false, nil

	case statusCode == 180 || statusCode == 181:
		leg.transitionTo(LegStateRinging)
		d.logger.Info("[Dialer] Ringing", "sip_call_id", leg.SIPCallID())
		return false, nil

	case statusCode == 183:
		leg.transitionTo(LegStateEarlyMedia)
		if resp.Body() != nil {
			if err := d.extractRemoteMedia(ctx, leg, resp); err != nil {
				d.logger.Warn("[Dialer] Early media setup failed",
					"sip_call_id", leg.SIPCallID(), "error", err)
			}
		}
		return false, nil

	case statusCode >= 200 && statusCode < 300:
		return true, d.handle2xx(ctx, leg, resp, invite)

	default:
		leg.setSIPResponse(statusCode, resp.Reason)
		d.logger.Info("[Dialer] Call rejected",
			"sip_call_id", leg.SIPCallID(), "status", statusCode, "reason", resp.Reason)
		return false, &DialError{SIPCode: statusCode, SIPReason: resp.Reason}
	}
}

func (d *dialer) handle2xx(ctx context.Context, leg *Leg, resp *sip.Response, invite *sip.Request) *DialError {
	leg.setSIPResponse(int(resp.StatusCode), resp.Reason)

	// The SDP answer carries the peer's RTP endpoint; the media node
	// must learn it before audio can flow.
	if resp.Body() != nil {
		if err := d.extractRemoteMedia(ctx, leg, resp); err != nil {
			d.logger.Error("[Dialer] Failed to extract remote media",
				"sip_call_id", leg.SIPCallID(), "error", err)
		}
	}

	dlg := newDialogState(invite, resp)
	leg.setDialog(dlg)
	d.dialogs.register(dlg)

	if err := d.sendACK(leg, resp, invite); err != nil {
		// ACK failure does not negate the 200 OK; the peer retransmits
		// and our next ACK attempt rides the retransmission.
		d.logger.Error("[Dialer] Failed to send ACK", "sip_call_id", leg.SIPCallID(), "error", err)
	}

	leg.transitionTo(LegStateAnswered)
	d.logger.Info("[Dialer] Call answered",
		"sip_call_id", leg.SIPCallID(), "codec", describeCodec(resp.Body()))
	return nil
}

// Hangup tears the leg down from our side: BYE if answered, plain
// cleanup otherwise. Safe to call on an already-terminated leg.
func (d *dialer) Hangup(ctx context.Context, leg *Leg, cause TerminationCause) error {
	if leg.State().IsTerminal() {
		return nil
	}

	if dlg := leg.dialog(); dlg != nil {
		if err := d.sendBYE(ctx, dlg); err != nil {
			d.logger.Warn("[Dialer] BYE failed", "sip_call_id", leg.SIPCallID(), "error", err)
		}
	}

	d.teardown(leg, cause)
	return nil
}

// HandleBye matches an incoming BYE against a live leg. It answers 200
// and tears the leg down (no BYE is sent back); returns false when the
// Call-ID matches nothing we track, leaving the response to the caller.
func (d *dialer) HandleBye(req *sip.Request, tx sip.ServerTransaction) bool {
	sipCallID := ""
	if req.CallID() != nil {
		sipCallID = string(*req.CallID())
	}
	if sipCallID == "" {
		return false
	}

	d.mu.Lock()
	leg, ok := d.legs[sipCallID]
	d.mu.Unlock()
	if !ok {
		if _, lingering := d.dialogs.lookup(sipCallID); lingering {
			// A retransmitted BYE for a dialog already torn down.
			resp := sip.NewResponseFromRequest(req, sip.StatusOK, "OK", nil)
			if err := tx.Respond(resp); err != nil {
				d.logger.Error("[Dialer] Failed to respond to BYE", "sip_call_id", sipCallID, "error", err)
			}
			return true
		}
		return false
	}

	resp := sip.NewResponseFromRequest(req, sip.StatusOK, "OK", nil)
	if err := tx.Respond(resp); err != nil {
		d.logger.Error("[Dialer] Failed to respond to BYE", "sip_call_id", sipCallID, "error", err)
	}

	d.logger.Info("[Dialer] Remote hangup", "sip_call_id", sipCallID, "leg_id", leg.ID())
	d.teardown(leg, TerminationCauseRemoteBYE)
	return true
}

// LegCount reports how many legs are live, for stats surfaces.
func (d *dialer) LegCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.legs)
}

// teardown releases everything a leg holds: its media session, its
// dialog-table entry, its slot in the legs map, and finally the leg
// itself (which fires onTerminated).
func (d *dialer) teardown(leg *Leg, cause TerminationCause) {
	if sessionID := leg.SessionID(); sessionID != "" {
		reason := mediaclient.TerminateReasonNormal
		switch cause {
		case TerminationCauseRemoteBYE:
			reason = mediaclient.TerminateReasonBYE
		case TerminationCauseCancel:
			reason = mediaclient.TerminateReasonCancel
		case TerminationCauseTimeout:
			reason = mediaclient.TerminateReasonTimeout
		case TerminationCauseError, TerminationCauseRejected:
			reason = mediaclient.TerminateReasonError
		}
		if err := d.media.DestroySession(context.Background(), sessionID, reason); err != nil {
			d.logger.Warn("[Dialer] Failed to destroy media session",
				"session_id", sessionID, "error", err)
		}
	}

	if dlg := leg.dialog(); dlg != nil {
		d.dialogs.retire(dlg.sipCallID)
	}
	d.forget(leg.SIPCallID())

	leg.terminate(LegStateDestroyed, cause)
}

// abandon is teardown for a leg that never answered.
func (d *dialer) abandon(leg *Leg, cause TerminationCause) {
	if sessionID := leg.SessionID(); sessionID != "" {
		_ = d.media.DestroySession(context.Background(), sessionID, mediaclient.TerminateReasonError)
	}
	d.forget(leg.SIPCallID())
	leg.terminate(LegStateFailed, cause)
}

func (d *dialer) forget(sipCallID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.legs, sipCallID)
}

func dialCauseOf(err *DialError) TerminationCause {
	switch {
	case err.IsCanceled():
		return TerminationCauseCancel
	case err.IsTimeout():
		return TerminationCauseTimeout
	case err.IsRejected():
		return TerminationCauseRejected
	default:
		return TerminationCauseError
	}
}

// buildINVITE constructs the outbound INVITE carrying the media
// session's SDP offer.
func (d *dialer) buildINVITE(target sip.Uri, sipCallID, localTag string, sdpBody []byte) (*sip.Request, error) {
	invite := sip.NewRequest(sip.INVITE, target)

	maxFwd := sip.MaxForwardsHeader(70)
	invite.AppendHeader(&maxFwd)

	fromParams := sip.NewParams()
	fromParams.Add("tag", localTag)
	invite.AppendHeader(&sip.FromHeader{
		Address: sip.Uri{
			Scheme: "sip",
			User:   d.cfg.LocalUser,
			Host:   d.cfg.AdvertiseAddr,
			Port:   d.cfg.Port,
		},
		Params: fromParams,
	})

	invite.AppendHeader(&sip.ToHeader{
		Address: target,
		Params:  sip.NewParams(),
	})

	callIDHdr := sip.CallIDHeader(sipCallID)
	invite.AppendHeader(&callIDHdr)

	invite.AppendHeader(&sip.CSeqHeader{
		SeqNo:      1,
		MethodName: sip.INVITE,
	})

	invite.AppendHeader(&sip.ContactHeader{
		Address: sip.Uri{
			Scheme: "sip",
			User:   d.cfg.LocalUser,
			Host:   d.cfg.AdvertiseAddr,
			Port:   d.cfg.Port,
		},
	})

	contentType := sip.ContentTypeHeader("application/sdp")
	invite.AppendHeader(&contentType)
	invite.SetBody(sdpBody)

	return invite, nil
}

// sendACK acknowledges a 2xx. Per RFC 3261 Section 13.2.2.4 this is a
// new request outside the INVITE transaction, addressed to the peer's
// Contact, sent straight through the transport layer.
func (d *dialer) sendACK(leg *Leg, resp *sip.Response, invite *sip.Request) error {
	requestURI := invite.Recipient
	if contact := resp.Contact(); contact != nil {
		requestURI = contact.Address
	}

	ack := sip.NewRequest(sip.ACK, requestURI)

	sip.CopyHeaders("From", invite, ack)
	sip.CopyHeaders("Call-ID", invite, ack)

	if to := resp.To(); to != nil {
		ack.AppendHeader(&sip.ToHeader{
			DisplayName: to.DisplayName,
			Address:     to.Address,
			Params:      to.Params,
		})
	}

	if cseq := invite.CSeq(); cseq != nil {
		ack.AppendHeader(&sip.CSeqHeader{
			SeqNo:      cseq.SeqNo,
			MethodName: sip.ACK,
		})
	}

	maxFwd := sip.MaxForwardsHeader(70)
	ack.AppendHeader(&maxFwd)

	destAddr := resp.Source()
	if destAddr == "" {
		port := requestURI.Port
		if port == 0 {
			port = 5060
		}
		destAddr = fmt.Sprintf("%s:%d", requestURI.Host, port)
	}
	ack.SetDestination(destAddr)

	ackDone := make(chan error, 1)
	go func() {
		ackDone <- d.client.WriteRequest(ack)
	}()

	select {
	case err := <-ackDone:
		if err != nil {
			return fmt.Errorf("write ACK: %w", err)
		}
	case <-time.After(5 * time.Second):
		return fmt.Errorf("ACK timeout: write did not complete within 5 seconds")
	}

	d.logger.Debug("[Dialer] ACK sent", "sip_call_id", leg.SIPCallID(), "dest", destAddr)
	return nil
}

// sendCANCEL abandons an in-progress INVITE per RFC 3261 Section 9.1.
func (d *dialer) sendCANCEL(leg *Leg, invite *sip.Request) error {
	cancelReq := sip.NewRequest(sip.CANCEL, invite.Recipient)

	sip.CopyHeaders("Via", invite, cancelReq)
	sip.CopyHeaders("From", invite, cancelReq)
	sip.CopyHeaders("To", invite, cancelReq)
	sip.CopyHeaders("Call-ID", invite, cancelReq)

	if cseq := invite.CSeq(); cseq != nil {
		cancelReq.AppendHeader(&sip.CSeqHeader{
			SeqNo:      cseq.SeqNo,
			MethodName: sip.CANCEL,
		})
	}

	maxFwd := sip.MaxForwardsHeader(70)
	cancelReq.AppendHeader(&maxFwd)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cancelTx, err := d.client.TransactionRequest(ctx, cancelReq)
	if err != nil {
		return fmt.Errorf("send CANCEL: %w", err)
	}

	select {
	case <-cancelTx.Responses():
	case <-cancelTx.Done():
	case <-ctx.Done():
	}

	d.logger.Info("[Dialer] CANCEL sent", "sip_call_id", leg.SIPCallID())
	return nil
}

// sendBYE terminates an answered dialog.
func (d *dialer) sendBYE(ctx context.Context, dlg *dialogState) error {
	bye, err := dlg.buildBYE()
	if err != nil {
		return err
	}

	byeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := d.client.TransactionRequest(byeCtx, bye)
	if err != nil {
		return fmt.Errorf("send BYE: %w", err)
	}

	select {
	case resp := <-tx.Responses():
		if resp != nil {
			d.logger.Debug("[Dialer] BYE response", "sip_call_id", dlg.sipCallID, "status", resp.StatusCode)
		}
	case <-tx.Done():
	case <-byeCtx.Done():
		d.logger.Warn("[Dialer] BYE timeout", "sip_call_id", dlg.sipCallID)
	}

	d.logger.Info("[Dialer] BYE sent", "sip_call_id", dlg.sipCallID)
	return nil
}

// extractRemoteMedia parses the peer's SDP and points the media session
// at the advertised RTP endpoint.
func (d *dialer) extractRemoteMedia(ctx context.Context, leg *Leg, resp *sip.Response) error {
	if resp.Body() == nil {
		return fmt.Errorf("no SDP in response")
	}

	sdpObj := &psdp.SessionDescription{}
	if err := sdpObj.Unmarshal(resp.Body()); err != nil {
		return fmt.Errorf("parse SDP: %w", err)
	}

	if len(sdpObj.MediaDescriptions) == 0 {
		return fmt.Errorf("no media in SDP")
	}

	media := sdpObj.MediaDescriptions[0]
	remotePort := media.MediaName.Port.Value

	var remoteAddr string
	if media.ConnectionInformation != nil && media.ConnectionInformation.Address != nil {
		remoteAddr = media.ConnectionInformation.Address.Address
	} else if sdpObj.ConnectionInformation != nil && sdpObj.ConnectionInformation.Address != nil {
		remoteAddr = sdpObj.ConnectionInformation.Address.Address
	}

	leg.setRemoteMedia(remoteAddr, remotePort)

	if sessionID := leg.SessionID(); sessionID != "" && remoteAddr != "" && remotePort > 0 {
		if err := d.media.UpdateSessionRemote(ctx, sessionID, remoteAddr, remotePort); err != nil {
			d.logger.Warn("[Dialer] Failed to update session remote endpoint",
				"sip_call_id", leg.SIPCallID(), "session_id", sessionID,
				"remote", fmt.Sprintf("%s:%d", remoteAddr, remotePort), "error", err)
		}
	}

	return nil
}

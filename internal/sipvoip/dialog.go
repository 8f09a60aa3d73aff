package sipvoip

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emiago/sipgo/sip"
)

// dialogLinger is how long a terminated dialog stays in the table so
// BYE retransmissions still match it (RFC 3261 Timer B territory).
const dialogLinger = 32 * time.Second

// dialogState is the UAC dialog established by a 2xx to our INVITE:
// the identifiers needed to build in-dialog requests (BYE) and to match
// in-dialog requests from the peer.
type dialogState struct {
	sipCallID string
	localTag  string
	remoteTag string

	// remoteContact is the peer's Contact from the 200 OK; it becomes
	// the Request-URI of our BYE (RFC 3261 Section 12.2).
	remoteContact string

	invite *sip.Request

	localCSeq atomic.Uint32
}

// newDialogState derives dialog identifiers from the INVITE we sent and
// the 2xx we received.
func newDialogState(invite *sip.Request, resp *sip.Response) *dialogState {
	d := &dialogState{invite: invite}

	if invite.CallID() != nil {
		d.sipCallID = string(*invite.CallID())
	}
	if from := invite.From(); from != nil {
		if tag, ok := from.Params.Get("tag"); ok {
			d.localTag = tag
		}
	}
	if to := resp.To(); to != nil {
		if tag, ok := to.Params.Get("tag"); ok {
			d.remoteTag = tag
		}
	}
	if contact := resp.Contact(); contact != nil {
		d.remoteContact = contact.Address.String()
	}

	var cseq uint32 = 1
	if h := invite.CSeq(); h != nil {
		cseq = h.SeqNo
	}
	d.localCSeq.Store(cseq)

	return d
}

// buildBYE constructs the in-dialog BYE per RFC 3261 Section 15.1.1:
// Request-URI from the peer's Contact, From/To mirroring the INVITE
// with the remote tag from the 200 OK, and the next local CSeq.
func (d *dialogState) buildBYE() (*sip.Request, error) {
	if d.invite == nil {
		return nil, fmt.Errorf("cannot build BYE: missing INVITE request")
	}

	recipient := d.invite.Recipient
	if d.remoteContact != "" {
		var contactURI sip.Uri
		if err := sip.ParseUri(d.remoteContact, &contactURI); err == nil {
			recipient = contactURI
		}
	}

	bye := sip.NewRequest(sip.BYE, recipient)

	maxFwd := sip.MaxForwardsHeader(70)
	bye.AppendHeader(&maxFwd)

	if from := d.invite.From(); from != nil {
		bye.AppendHeader(&sip.FromHeader{
			DisplayName: from.DisplayName,
			Address:     from.Address,
			Params:      from.Params.Clone(),
		})
	}

	if to := d.invite.To(); to != nil {
		toParams := sip.NewParams()
		if d.remoteTag != "" {
			toParams.Add("tag", d.remoteTag)
		}
		bye.AppendHeader(&sip.ToHeader{
			DisplayName: to.DisplayName,
			Address:     to.Address,
			Params:      toParams,
		})
	}

	if callID := d.invite.CallID(); callID != nil {
		bye.AppendHeader(callID)
	}

	bye.AppendHeader(&sip.CSeqHeader{
		SeqNo:      d.localCSeq.Add(1),
		MethodName: sip.BYE,
	})

	port := recipient.Port
	if port == 0 {
		port = 5060
	}
	bye.SetDestination(fmt.Sprintf("%s:%d", recipient.Host, port))

	return bye, nil
}

// dialogTable indexes established dialogs by SIP Call-ID. Live legs are
// matched through the dialer's legs map; HandleBye consults this table
// for a BYE that arrives after its leg is gone.
type dialogTable struct {
	mu      sync.RWMutex
	dialogs map[string]*dialogState
}

func newDialogTable() *dialogTable {
	return &dialogTable{dialogs: make(map[string]*dialogState)}
}

func (t *dialogTable) register(d *dialogState) {
	if d.sipCallID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dialogs[d.sipCallID] = d
}

func (t *dialogTable) lookup(sipCallID string) (*dialogState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.dialogs[sipCallID]
	return d, ok
}

// retire schedules the dialog's removal after the linger window instead
// of deleting it immediately, so a retransmitted BYE still matches.
func (t *dialogTable) retire(sipCallID string) {
	time.AfterFunc(dialogLinger, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.dialogs, sipCallID)
	})
}

func (t *dialogTable) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.dialogs)
}

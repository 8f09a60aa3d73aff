package sipvoip

import (
	"testing"

	"github.com/emiago/sipgo/sip"
)

// buildTestDialog constructs the INVITE/200-OK pair a real dial would
// produce and derives a dialog from it.
func buildTestDialog(t *testing.T) *dialogState {
	t.Helper()

	var target sip.Uri
	if err := sip.ParseUri("sip:alice@pbx.example.com", &target); err != nil {
		t.Fatalf("parse target: %v", err)
	}

	invite := sip.NewRequest(sip.INVITE, target)

	fromParams := sip.NewParams()
	fromParams.Add("tag", "local-tag-1")
	invite.AppendHeader(&sip.FromHeader{
		Address: sip.Uri{Scheme: "sip", User: "callcore", Host: "10.0.0.1", Port: 5060},
		Params:  fromParams,
	})
	invite.AppendHeader(&sip.ToHeader{Address: target, Params: sip.NewParams()})

	callID := sip.CallIDHeader("test-call-id-1")
	invite.AppendHeader(&callID)
	invite.AppendHeader(&sip.CSeqHeader{SeqNo: 1, MethodName: sip.INVITE})

	resp := sip.NewResponseFromRequest(invite, sip.StatusOK, "OK", nil)
	if to := resp.To(); to != nil {
		to.Params.Add("tag", "remote-tag-9")
	}
	var contactURI sip.Uri
	if err := sip.ParseUri("sip:alice@192.168.1.50:5062", &contactURI); err != nil {
		t.Fatalf("parse contact: %v", err)
	}
	resp.AppendHeader(&sip.ContactHeader{Address: contactURI})

	return newDialogState(invite, resp)
}

func TestNewDialogStateExtractsIdentifiers(t *testing.T) {
	dlg := buildTestDialog(t)

	if dlg.sipCallID != "test-call-id-1" {
		t.Fatalf("sipCallID = %q, want test-call-id-1", dlg.sipCallID)
	}
	if dlg.localTag != "local-tag-1" {
		t.Fatalf("localTag = %q, want local-tag-1", dlg.localTag)
	}
	if dlg.remoteTag != "remote-tag-9" {
		t.Fatalf("remoteTag = %q, want remote-tag-9", dlg.remoteTag)
	}
	if dlg.remoteContact == "" {
		t.Fatalf("remoteContact empty, want the 200 OK's Contact")
	}
}

func TestBuildBYE(t *testing.T) {
	dlg := buildTestDialog(t)

	bye, err := dlg.buildBYE()
	if err != nil {
		t.Fatalf("buildBYE() error: %v", err)
	}

	if bye.Method != sip.BYE {
		t.Fatalf("method = %s, want BYE", bye.Method)
	}
	// Request-URI must come from the peer's Contact, not the original
	// target.
	if bye.Recipient.Host != "192.168.1.50" {
		t.Fatalf("Request-URI host = %s, want 192.168.1.50", bye.Recipient.Host)
	}
	if callID := bye.CallID(); callID == nil || string(*callID) != "test-call-id-1" {
		t.Fatalf("Call-ID = %v, want test-call-id-1", bye.CallID())
	}
	if to := bye.To(); to == nil {
		t.Fatalf("BYE missing To header")
	} else if tag, _ := to.Params.Get("tag"); tag != "remote-tag-9" {
		t.Fatalf("To tag = %q, want remote-tag-9", tag)
	}
	if from := bye.From(); from == nil {
		t.Fatalf("BYE missing From header")
	} else if tag, _ := from.Params.Get("tag"); tag != "local-tag-1" {
		t.Fatalf("From tag = %q, want local-tag-1", tag)
	}
	if cseq := bye.CSeq(); cseq == nil || cseq.SeqNo != 2 {
		t.Fatalf("CSeq = %v, want 2", bye.CSeq())
	}
}

func TestDialogTableLookup(t *testing.T) {
	table := newDialogTable()
	dlg := buildTestDialog(t)

	table.register(dlg)
	if table.len() != 1 {
		t.Fatalf("len = %d after register, want 1", table.len())
	}

	got, ok := table.lookup("test-call-id-1")
	if !ok || got != dlg {
		t.Fatalf("lookup returned (%v, %v), want the registered dialog", got, ok)
	}

	if _, ok := table.lookup("unknown-call-id"); ok {
		t.Fatalf("lookup of unknown Call-ID succeeded")
	}
}

func TestLegTerminateFiresOnce(t *testing.T) {
	leg := newLeg("cid", "alice", "sip:alice@example.com")

	fired := 0
	leg.OnTerminated(func(cause TerminationCause) { fired++ })

	leg.terminate(LegStateDestroyed, TerminationCauseNormal)
	leg.terminate(LegStateDestroyed, TerminationCauseRemoteBYE)

	if fired != 1 {
		t.Fatalf("onTerminated fired %d times, want 1", fired)
	}
	if leg.Cause() != TerminationCauseNormal {
		t.Fatalf("cause = %s, want Normal (first terminate wins)", leg.Cause())
	}

	select {
	case <-leg.Done():
	default:
		t.Fatalf("Done() not closed after terminate")
	}
}

func TestLegOnTerminatedAfterTermination(t *testing.T) {
	leg := newLeg("cid", "alice", "sip:alice@example.com")
	leg.terminate(LegStateDestroyed, TerminationCauseRemoteBYE)

	var got TerminationCause
	leg.OnTerminated(func(cause TerminationCause) { got = cause })

	if got != TerminationCauseRemoteBYE {
		t.Fatalf("late OnTerminated got %s, want RemoteBYE immediately", got)
	}
}

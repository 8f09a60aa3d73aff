package callcore

import "testing"

func TestAdmissionCapacity(t *testing.T) {
	a := newAdmission(Config{MaxActiveCalls: 2})

	if !a.hasCapacity() {
		t.Fatalf("hasCapacity() = false on a fresh admission")
	}

	a.dispatchImmediately(InitiateCallRequest{ReqIDVal: 1})
	if !a.hasCapacity() {
		t.Fatalf("hasCapacity() = false after 1/2 slots used")
	}

	a.dispatchImmediately(InitiateCallRequest{ReqIDVal: 2})
	if a.hasCapacity() {
		t.Fatalf("hasCapacity() = true after 2/2 slots used")
	}

	a.admitCall(1, 100)
	if a.occupied() != 2 {
		t.Fatalf("occupied() = %d after admitCall, want 2 (slot transferred, not freed)", a.occupied())
	}

	a.releaseCall(100)
	if !a.hasCapacity() {
		t.Fatalf("hasCapacity() = false after releasing a call slot")
	}
}

func TestAdmissionQueueFIFO(t *testing.T) {
	a := newAdmission(Config{MaxActiveCalls: 1})
	a.dispatchImmediately(InitiateCallRequest{ReqIDVal: 1})

	a.enqueue(InitiateCallRequest{ReqIDVal: 2, Party: "bob"})
	a.enqueue(InitiateCallRequest{ReqIDVal: 3, Party: "carol"})

	if ready := a.dequeueReady(); len(ready) != 0 {
		t.Fatalf("dequeueReady() = %v with no free capacity, want empty", ready)
	}

	a.releaseRequest(1)
	ready := a.dequeueReady()
	if len(ready) != 1 || ready[0].ReqIDVal != 2 {
		t.Fatalf("dequeueReady() = %+v, want [{req_id:2}] (FIFO order)", ready)
	}

	if a.hasCapacity() {
		t.Fatalf("hasCapacity() = true immediately after dequeueReady dispatched req=2")
	}
}

func TestAdmissionQueueDepthLimit(t *testing.T) {
	a := newAdmission(Config{MaxActiveCalls: 1, MaxQueueDepth: 1})
	a.dispatchImmediately(InitiateCallRequest{ReqIDVal: 1})
	a.enqueue(InitiateCallRequest{ReqIDVal: 2})

	if !a.queueFull() {
		t.Fatalf("queueFull() = false at configured depth 1 with 1 item queued")
	}
}

func TestAdmissionDropCorrelation(t *testing.T) {
	a := newAdmission(Config{MaxActiveCalls: 1})
	a.recordDrop(42, 100)

	callID, ok := a.resolveDrop(42)
	if !ok || callID != 100 {
		t.Fatalf("resolveDrop(42) = (%d, %v), want (100, true)", callID, ok)
	}

	if _, ok := a.resolveDrop(42); ok {
		t.Fatalf("resolveDrop(42) a second time succeeded, want consumed")
	}
}

package portpool

import "testing"

func TestAllocateReturnsEvenPairs(t *testing.T) {
	p := NewPortPool(10000, 10010)

	rtpPort, rtcpPort, err := p.Allocate()
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	if rtpPort%2 != 0 {
		t.Fatalf("RTP port %d is odd", rtpPort)
	}
	if rtcpPort != rtpPort+1 {
		t.Fatalf("RTCP port = %d, want %d", rtcpPort, rtpPort+1)
	}
}

func TestAllocateExhaustion(t *testing.T) {
	p := NewPortPool(10000, 10004) // two pairs

	if _, _, err := p.Allocate(); err != nil {
		t.Fatalf("first Allocate() error: %v", err)
	}
	if _, _, err := p.Allocate(); err != nil {
		t.Fatalf("second Allocate() error: %v", err)
	}
	if _, _, err := p.Allocate(); err == nil {
		t.Fatalf("third Allocate() succeeded on an exhausted pool")
	}
}

func TestReleaseRecycles(t *testing.T) {
	p := NewPortPool(10000, 10002) // one pair

	rtpPort, _, err := p.Allocate()
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	if p.Available() != 0 || p.Allocated() != 1 {
		t.Fatalf("counters = (%d free, %d allocated), want (0, 1)", p.Available(), p.Allocated())
	}

	p.Release(rtpPort)
	if p.Available() != 1 || p.Allocated() != 0 {
		t.Fatalf("counters after release = (%d free, %d allocated), want (1, 0)", p.Available(), p.Allocated())
	}

	again, _, err := p.Allocate()
	if err != nil {
		t.Fatalf("Allocate() after release error: %v", err)
	}
	if again != rtpPort {
		t.Fatalf("recycled port = %d, want %d", again, rtpPort)
	}
}

func TestReleaseUnknownPortIsNoop(t *testing.T) {
	p := NewPortPool(10000, 10004)
	p.Release(12345)
	if p.Available() != 2 {
		t.Fatalf("Available() = %d after bogus release, want 2", p.Available())
	}
}

func TestOddMinPortRoundsUp(t *testing.T) {
	p := NewPortPool(10001, 10005)
	rtpPort, _, err := p.Allocate()
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	if rtpPort != 10002 {
		t.Fatalf("RTP port = %d, want 10002 (rounded-up even start)", rtpPort)
	}
}

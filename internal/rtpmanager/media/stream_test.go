package media

import "testing"

func TestSequenceTrackerInOrder(t *testing.T) {
	s := NewSequenceTracker()

	for seq := uint16(100); seq < 110; seq++ {
		_, lost := s.Update(seq)
		if lost != 0 {
			t.Fatalf("Update(%d) reported %d lost in an in-order stream", seq, lost)
		}
	}

	received, lost := s.Stats()
	if received != 10 || lost != 0 {
		t.Fatalf("Stats() = (%d, %d), want (10, 0)", received, lost)
	}
}

func TestSequenceTrackerGap(t *testing.T) {
	s := NewSequenceTracker()

	s.Update(1)
	_, lost := s.Update(5)
	if lost != 3 {
		t.Fatalf("Update(5) after 1 reported %d lost, want 3", lost)
	}
	if rate := s.LossRate(); rate <= 0 {
		t.Fatalf("LossRate() = %v after losses, want > 0", rate)
	}
}

func TestSequenceTrackerRollover(t *testing.T) {
	s := NewSequenceTracker()

	s.Update(0xFFFE)
	s.Update(0xFFFF)
	extended, lost := s.Update(0)
	if lost != 0 {
		t.Fatalf("rollover reported %d lost", lost)
	}
	if extended != (1<<16 | 0) {
		t.Fatalf("extended = %#x after rollover, want %#x", extended, 1<<16)
	}
}

func TestSequenceTrackerOutOfOrder(t *testing.T) {
	s := NewSequenceTracker()

	s.Update(10)
	s.Update(12) // 11 lost
	_, lost := s.Update(11)
	if lost != 0 {
		t.Fatalf("late packet reported %d lost, want 0", lost)
	}
}

func TestCodecFrameArithmetic(t *testing.T) {
	if got := CodecPCMU.SamplesPerFrame(); got != 160 {
		t.Fatalf("PCMU SamplesPerFrame() = %d, want 160", got)
	}
	if got := CodecPCMA.BytesPerFrame(); got != 160 {
		t.Fatalf("PCMA BytesPerFrame() = %d, want 160", got)
	}
	if got := CodecPCMU.TimestampIncrement(); got != 160 {
		t.Fatalf("PCMU TimestampIncrement() = %d, want 160", got)
	}
}

func TestCodecManagerLookup(t *testing.T) {
	cm := NewCodecManager()

	tests := []struct {
		query string
		want  string
	}{
		{"PCMU", "PCMU"},
		{"0", "PCMU"},
		{"PCMA", "PCMA"},
		{"8", "PCMA"},
	}
	for _, tt := range tests {
		cfg, err := cm.GetByPayloadTypeString(tt.query)
		if err != nil {
			t.Fatalf("GetByPayloadTypeString(%q) error: %v", tt.query, err)
		}
		if cfg.Name != tt.want {
			t.Fatalf("GetByPayloadTypeString(%q) = %s, want %s", tt.query, cfg.Name, tt.want)
		}
	}

	if cm.Supports("18") {
		t.Fatalf("Supports(18) = true, G.729 is not registered")
	}
}

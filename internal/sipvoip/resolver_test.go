package sipvoip

import (
	"errors"
	"testing"
)

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name     string
		party    string
		gateway  string
		wantUser string
		wantHost string
		wantErr  error
	}{
		{"full sip uri", "sip:alice@pbx.example.com:5070", "", "alice", "pbx.example.com", nil},
		{"implied scheme", "bob@pbx.example.com", "", "bob", "pbx.example.com", nil},
		{"number via gateway", "5551234", "trunk.example.com:5060", "5551234", "trunk.example.com", nil},
		{"number without gateway", "5551234", "", "", "", ErrNoGateway},
		{"empty party", "", "trunk.example.com:5060", "", "", ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := resolveTarget(tt.party, tt.gateway)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("resolveTarget(%q, %q) error = %v, want %v", tt.party, tt.gateway, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveTarget(%q, %q) unexpected error: %v", tt.party, tt.gateway, err)
			}
			if uri.User != tt.wantUser || uri.Host != tt.wantHost {
				t.Fatalf("resolveTarget(%q, %q) = %s@%s, want %s@%s",
					tt.party, tt.gateway, uri.User, uri.Host, tt.wantUser, tt.wantHost)
			}
		})
	}
}

func TestResolveTargetGatewayPort(t *testing.T) {
	uri, err := resolveTarget("100", "trunk.example.com:5080")
	if err != nil {
		t.Fatalf("resolveTarget() error: %v", err)
	}
	if uri.Port != 5080 {
		t.Fatalf("resolved port = %d, want 5080", uri.Port)
	}
}

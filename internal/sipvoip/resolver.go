package sipvoip

import (
	"fmt"
	"strings"

	"github.com/emiago/sipgo/sip"
)

// resolveTarget turns a dialed party into the SIP URI to INVITE.
//
// Three target shapes are accepted:
//   - "sip:user@host[:port]" (or sips:) — used as-is
//   - "user@host[:port]" — the sip: scheme is implied
//   - a bare number or extension — routed to the configured gateway
//     trunk as "sip:<number>@<gateway>"
//
// A bare number with no gateway configured is an error rather than a
// guess; the caller surfaces it as a dial failure.
func resolveTarget(party, gateway string) (sip.Uri, error) {
	var uri sip.Uri

	party = strings.TrimSpace(party)
	if party == "" {
		return uri, fmt.Errorf("%w: empty party", ErrInvalidTarget)
	}

	switch {
	case strings.HasPrefix(party, "sip:"), strings.HasPrefix(party, "sips:"):
		if err := sip.ParseUri(party, &uri); err != nil {
			return uri, fmt.Errorf("%w: %s: %v", ErrInvalidTarget, party, err)
		}
		return uri, nil

	case strings.Contains(party, "@"):
		if err := sip.ParseUri("sip:"+party, &uri); err != nil {
			return uri, fmt.Errorf("%w: %s: %v", ErrInvalidTarget, party, err)
		}
		return uri, nil

	default:
		if gateway == "" {
			return uri, fmt.Errorf("%w: %s", ErrNoGateway, party)
		}
		if err := sip.ParseUri(fmt.Sprintf("sip:%s@%s", party, gateway), &uri); err != nil {
			return uri, fmt.Errorf("%w: %s via gateway %s: %v", ErrInvalidTarget, party, gateway, err)
		}
		return uri, nil
	}
}

// Package ticket implements the shareable rendezvous token for a chat
// group: a topic plus the peer addresses known at creation time, encoded
// as a compact case-insensitive string that can be passed around
// out-of-band.
package ticket

import (
	"encoding/base32"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"peerchat/internal/gossip"
)

// Ticket describes how to rendezvous with a group: which topic to
// subscribe to and which peers were known when it was issued.
type Ticket struct {
	Topic     gossip.Topic      `json:"topic"`
	Endpoints []gossip.AddrInfo `json:"endpoints"`
}

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// String encodes the ticket as lowercase unpadded base32 over its
// canonical JSON form. The result survives copy-paste through channels
// that fold case.
func (t Ticket) String() string {
	b, err := json.Marshal(t)
	if err != nil {
		// Ticket contains only marshalable fields.
		panic(fmt.Sprintf("ticket marshal: %v", err))
	}
	return strings.ToLower(b32.EncodeToString(b))
}

// Parse decodes a ticket token produced by String. Malformed base32,
// bytes that do not parse as a ticket, and JSON missing the topic field
// all fail with an error; there are no partial results.
func Parse(token string) (Ticket, error) {
	raw, err := b32.DecodeString(strings.ToUpper(strings.TrimSpace(token)))
	if err != nil {
		return Ticket{}, fmt.Errorf("decoding ticket token: %w", err)
	}

	// A pointer topic distinguishes an absent field from a present one,
	// so `{}` and `null` are rejected instead of yielding a zero ticket.
	var aux struct {
		Topic     *gossip.Topic     `json:"topic"`
		Endpoints []gossip.AddrInfo `json:"endpoints"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return Ticket{}, fmt.Errorf("parsing ticket: %w", err)
	}
	if aux.Topic == nil {
		return Ticket{}, errors.New("parsing ticket: missing topic")
	}

	return Ticket{Topic: *aux.Topic, Endpoints: aux.Endpoints}, nil
}

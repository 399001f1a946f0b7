// Package gossip implements a small topic-scoped broadcast mesh over QUIC.
//
// Every process binds an Endpoint whose identity is an ed25519 key; the
// 32-byte public key is the peer ID. Peers subscribe to a 32-byte topic,
// connect to a set of bootstrap addresses, exchange known peers, and relay
// data frames epidemically with ID-based de-duplication.
package gossip

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ID identifies a peer: its ed25519 public key.
type ID [32]byte

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns an abbreviated rendering for display, the first five
// bytes in hex.
func (id ID) Short() string {
	return hex.EncodeToString(id[:5])
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decoding peer id: %w", err)
	}
	if len(b) != len(id) {
		return fmt.Errorf("peer id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return nil
}

// AddrInfo is a dialable peer descriptor: who it is and where it listens.
type AddrInfo struct {
	ID   ID     `json:"id"`
	Addr string `json:"addr"`
}

// Topic partitions the mesh into independent broadcast groups.
type Topic [32]byte

// NewTopic returns a fresh random topic.
func NewTopic() Topic {
	var t Topic
	_, _ = rand.Read(t[:])
	return t
}

func (t Topic) String() string {
	return hex.EncodeToString(t[:])
}

func (t Topic) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Topic) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decoding topic: %w", err)
	}
	if len(b) != len(t) {
		return fmt.Errorf("topic must be %d bytes, got %d", len(t), len(b))
	}
	copy(t[:], b)
	return nil
}

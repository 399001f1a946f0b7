// Package wire defines the envelope broadcast over a group topic. It is a
// two-variant tagged union: a participant announcing its display name, and
// a chat line. The discriminant is carried in the payload so a decoder can
// dispatch without external context.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"peerchat/internal/common"
	"peerchat/internal/gossip"
)

const (
	typeAboutMe = "about_me"
	typeMessage = "message"
)

// Body is one of the two envelope variants.
type Body interface {
	isBody()
}

// AboutMe announces the display name of the peer identified by From.
type AboutMe struct {
	From gossip.ID
	Name string
}

// Message is a chat line authored by From.
type Message struct {
	From gossip.ID
	Text string
}

func (AboutMe) isBody() {}
func (Message) isBody() {}

// envelope is the flat wire form. Each broadcast gets a fresh random ID so
// identical texts stay distinct payloads in the gossip layer.
type envelope struct {
	Type string    `json:"type"`
	ID   string    `json:"id,omitempty"`
	From gossip.ID `json:"from"`
	Name string    `json:"name,omitempty"`
	Text string    `json:"text,omitempty"`
}

// Encode serializes a body for broadcast.
func Encode(body Body) ([]byte, error) {
	var env envelope
	env.ID = uuid.NewString()

	switch b := body.(type) {
	case AboutMe:
		env.Type = typeAboutMe
		env.From = b.From
		env.Name = b.Name
	case Message:
		env.Type = typeMessage
		env.From = b.From
		env.Text = b.Text
	default:
		return nil, fmt.Errorf("%w: %T", common.ErrUnknownMessageType, body)
	}

	return json.Marshal(env)
}

// Decode parses a received payload. Truncated input, non-JSON input and an
// unknown or missing discriminant all fail; callers must treat such
// failures as a corrupt or incompatible peer message, not a fatal session
// error.
func Decode(data []byte) (Body, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding message: %w", err)
	}

	switch env.Type {
	case typeAboutMe:
		return AboutMe{From: env.From, Name: env.Name}, nil
	case typeMessage:
		return Message{From: env.From, Text: env.Text}, nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownMessageType, env.Type)
	}
}

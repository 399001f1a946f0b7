// Package session drives one chat session on a subscribed topic: the
// receive loop that renders inbound messages and maintains the peer-name
// resolver, and the send path that broadcasts operator lines.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"peerchat/internal/gossip"
	"peerchat/internal/logging"
	"peerchat/internal/wire"
)

// Conn is the slice of a topic subscription the session needs.
// *gossip.TopicConn satisfies it.
type Conn interface {
	Broadcast(ctx context.Context, payload []byte) error
	Next(ctx context.Context) (gossip.Event, error)
}

type Session struct {
	conn  Conn
	self  gossip.ID
	name  string
	names *Resolver
	out   io.Writer
	log   logging.Logger
}

// New builds a session for the authenticated user known to peers as name.
// Rendered chat lines go to out.
func New(conn Conn, self gossip.ID, name string, out io.Writer, log logging.Logger) *Session {
	return &Session{
		conn:  conn,
		self:  self,
		name:  name,
		names: NewResolver(),
		out:   out,
		log:   log,
	}
}

// Announce broadcasts this participant's display name. It must happen
// before any chat line from the same participant so that already-listening
// peers can attribute them.
func (s *Session) Announce(ctx context.Context) error {
	payload, err := wire.Encode(wire.AboutMe{From: s.self, Name: s.name})
	if err != nil {
		return err
	}
	return s.conn.Broadcast(ctx, payload)
}

// Send broadcasts one chat line.
func (s *Session) Send(ctx context.Context, text string) error {
	payload, err := wire.Encode(wire.Message{From: s.self, Text: text})
	if err != nil {
		return err
	}
	return s.conn.Broadcast(ctx, payload)
}

// ReceiveLoop processes inbound events until the subscription closes or
// the context is cancelled (both clean ends) or the transport fails. A
// message that does not decode is logged and skipped: a malformed payload
// from one peer must not end the session.
func (s *Session) ReceiveLoop(ctx context.Context) error {
	for {
		ev, err := s.conn.Next(ctx)
		if err != nil {
			if errors.Is(err, gossip.ErrClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		switch ev.Type {
		case gossip.EventReceived:
			s.handlePayload(ctx, ev)
		case gossip.EventPeerJoined:
			s.log.Debug(ctx, "peer joined", "peer", ev.From.Short())
		}
	}
}

func (s *Session) handlePayload(ctx context.Context, ev gossip.Event) {
	body, err := wire.Decode(ev.Payload)
	if err != nil {
		s.log.Warn(ctx, "ignoring undecodable message", "from", ev.From.Short(), "error", err)
		return
	}

	switch m := body.(type) {
	case wire.AboutMe:
		s.names.Add(m.From, m.Name)
		fmt.Fprintf(s.out, "> %s is now known as %s\n", m.From.Short(), m.Name)
	case wire.Message:
		fmt.Fprintf(s.out, "%s: %s\n", s.names.Lookup(m.From), m.Text)
	}
}

// Run executes the full session: announce, then process inbound events and
// outbound lines concurrently until lines is closed (operator quit), the
// context ends, or the transport fails.
func (s *Session) Run(ctx context.Context, lines <-chan string) error {
	if err := s.Announce(ctx); err != nil {
		return fmt.Errorf("announcing name: %w", err)
	}

	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recvErr := make(chan error, 1)
	go func() { recvErr <- s.ReceiveLoop(rctx) }()

	for {
		select {
		case err := <-recvErr:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case text, ok := <-lines:
			if !ok {
				return nil
			}
			if err := s.Send(ctx, text); err != nil {
				return fmt.Errorf("broadcasting message: %w", err)
			}
			fmt.Fprintf(s.out, "> sent: %s\n", text)
		}
	}
}

package gossip

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	quic "github.com/quic-go/quic-go"

	"peerchat/internal/logging"
)

// ErrClosed is returned by Broadcast and Next after the subscription has
// been shut down.
var ErrClosed = errors.New("gossip: subscription closed")

type EventType int

const (
	// EventReceived carries a payload broadcast by another peer.
	EventReceived EventType = iota

	// EventPeerJoined reports a new directly-connected neighbor.
	EventPeerJoined
)

type Event struct {
	Type    EventType
	From    ID
	Payload []byte
}

// Gossip creates topic subscriptions on top of an Endpoint.
type Gossip struct {
	ep  *Endpoint
	log logging.Logger
}

func New(ep *Endpoint, log logging.Logger) *Gossip {
	return &Gossip{ep: ep, log: log}
}

// Subscribe joins a topic. Bootstrap peers are dialed immediately; further
// peers are learned from neighbors (peer exchange) and from inbound
// connections. An empty bootstrap set is valid: the subscription waits for
// peers to find us.
func (g *Gossip) Subscribe(ctx context.Context, topic Topic, bootstrap []AddrInfo) (*TopicConn, error) {
	tc := &TopicConn{
		ep:        g.ep,
		topic:     topic,
		log:       g.log.With("topic", topic.String()),
		neighbors: make(map[ID]*neighbor),
		seen:      make(map[string]time.Time),
		events:    make(chan Event, 128),
		done:      make(chan struct{}),
	}

	go tc.acceptLoop()

	for _, p := range bootstrap {
		if err := tc.dial(ctx, p); err != nil {
			tc.log.Warn(ctx, "bootstrap dial failed", "addr", p.Addr, "error", err)
		}
	}
	return tc, nil
}

// TopicConn is a live subscription: a neighbor set, a de-duplication cache
// and an inbound event stream.
type TopicConn struct {
	ep    *Endpoint
	topic Topic
	log   logging.Logger

	mu        sync.Mutex
	neighbors map[ID]*neighbor
	seen      map[string]time.Time

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

type neighbor struct {
	addr   AddrInfo
	conn   *quic.Conn
	stream *quic.Stream

	// writeMu serializes frame writes; broadcasts and relays share streams.
	writeMu sync.Mutex
}

// Broadcast sends payload to every current neighbor. Neighbors that fail to
// take the write are dropped; that is mesh housekeeping, not a caller error.
// Only a closed subscription is.
func (tc *TopicConn) Broadcast(ctx context.Context, payload []byte) error {
	select {
	case <-tc.done:
		return ErrClosed
	default:
	}

	f := frame{
		Type:    frameData,
		Topic:   tc.topic,
		From:    tc.ep.Addr(),
		ID:      uuid.NewString(),
		Payload: payload,
	}

	tc.mu.Lock()
	tc.seen[f.ID] = time.Now()
	targets := tc.snapshotLocked(ID{})
	tc.mu.Unlock()

	for _, n := range targets {
		tc.writeNeighbor(n, f)
	}
	return nil
}

// Next blocks until the next inbound event, context cancellation, or
// subscription close.
func (tc *TopicConn) Next(ctx context.Context) (Event, error) {
	select {
	case ev := <-tc.events:
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case <-tc.done:
		return Event{}, ErrClosed
	}
}

// NeighborCount reports the number of directly-connected peers.
func (tc *TopicConn) NeighborCount() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.neighbors)
}

// Close tears the subscription down: all neighbor connections are closed
// and pending Next calls return ErrClosed.
func (tc *TopicConn) Close() {
	tc.closeOnce.Do(func() {
		close(tc.done)
		tc.mu.Lock()
		for _, n := range tc.neighbors {
			_ = n.conn.CloseWithError(0, "subscription closed")
		}
		tc.neighbors = make(map[ID]*neighbor)
		tc.mu.Unlock()
	})
}

func (tc *TopicConn) acceptLoop() {
	for {
		conn, err := tc.ep.listener.Accept(context.Background())
		if err != nil {
			// listener closed; nothing more to accept
			return
		}
		go tc.handleConn(conn)
	}
}

func (tc *TopicConn) handleConn(conn *quic.Conn) {
	ctx := context.Background()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return
	}

	f, err := readFrame(stream)
	if err != nil || f.Type != frameJoin || f.Topic != tc.topic {
		tc.log.Warn(ctx, "rejecting connection without valid join", "error", err)
		_ = conn.CloseWithError(0, "bad join")
		return
	}

	n, ok := tc.addNeighbor(f.From, conn, stream)
	if !ok {
		_ = conn.CloseWithError(0, "duplicate neighbor")
		return
	}

	// Handshake reply: who we are, then who else we know.
	tc.writeNeighbor(n, frame{Type: frameJoin, Topic: tc.topic, From: tc.ep.Addr()})
	tc.writeNeighbor(n, frame{Type: framePeers, Topic: tc.topic, From: tc.ep.Addr(), Peers: tc.knownPeers(f.From.ID)})

	tc.readLoop(n)
}

func (tc *TopicConn) dial(ctx context.Context, p AddrInfo) error {
	if p.ID == tc.ep.ID() {
		return nil
	}
	var zero ID
	if p.ID != zero && tc.hasNeighbor(p.ID) {
		return nil
	}

	conn, err := quic.DialAddr(ctx, p.Addr, clientTLSConfig(), quicConfig())
	if err != nil {
		return err
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return err
	}

	if err := writeFrame(stream, frame{Type: frameJoin, Topic: tc.topic, From: tc.ep.Addr()}); err != nil {
		_ = conn.CloseWithError(0, "join write failed")
		return err
	}

	reply, err := readFrame(stream)
	if err != nil || reply.Type != frameJoin || reply.Topic != tc.topic {
		_ = conn.CloseWithError(0, "bad join reply")
		if err == nil {
			err = errors.New("unexpected handshake reply")
		}
		return err
	}

	n, ok := tc.addNeighbor(reply.From, conn, stream)
	if !ok {
		_ = conn.CloseWithError(0, "duplicate neighbor")
		return nil
	}

	go tc.readLoop(n)
	return nil
}

func (tc *TopicConn) readLoop(n *neighbor) {
	defer tc.removeNeighbor(n)

	ctx := context.Background()
	for {
		f, err := readFrame(n.stream)
		if err != nil {
			return
		}
		if f.Topic != tc.topic {
			continue
		}

		switch f.Type {
		case frameData:
			tc.handleData(ctx, f, n)
		case framePeers:
			for _, p := range f.Peers {
				peer := p
				go func() {
					if err := tc.dial(ctx, peer); err != nil {
						tc.log.Debug(ctx, "peer exchange dial failed", "addr", peer.Addr, "error", err)
					}
				}()
			}
		}
	}
}

func (tc *TopicConn) handleData(ctx context.Context, f frame, src *neighbor) {
	tc.mu.Lock()
	if _, dup := tc.seen[f.ID]; dup {
		tc.mu.Unlock()
		return
	}
	tc.seen[f.ID] = time.Now()
	tc.pruneSeenLocked()
	targets := tc.snapshotLocked(src.addr.ID)
	tc.mu.Unlock()

	tc.emit(Event{Type: EventReceived, From: f.From.ID, Payload: f.Payload})

	if f.Hops >= maxHops {
		return
	}
	f.Hops++
	for _, n := range targets {
		tc.writeNeighbor(n, f)
	}
}

func (tc *TopicConn) addNeighbor(addr AddrInfo, conn *quic.Conn, stream *quic.Stream) (*neighbor, bool) {
	tc.mu.Lock()
	select {
	case <-tc.done:
		tc.mu.Unlock()
		return nil, false
	default:
	}
	if addr.ID == tc.ep.ID() {
		tc.mu.Unlock()
		return nil, false
	}
	if _, exists := tc.neighbors[addr.ID]; exists {
		tc.mu.Unlock()
		return nil, false
	}
	n := &neighbor{addr: addr, conn: conn, stream: stream}
	tc.neighbors[addr.ID] = n
	tc.mu.Unlock()

	tc.emit(Event{Type: EventPeerJoined, From: addr.ID})
	return n, true
}

func (tc *TopicConn) removeNeighbor(n *neighbor) {
	tc.mu.Lock()
	if cur, ok := tc.neighbors[n.addr.ID]; ok && cur == n {
		delete(tc.neighbors, n.addr.ID)
	}
	tc.mu.Unlock()
	_ = n.conn.CloseWithError(0, "gone")
}

func (tc *TopicConn) hasNeighbor(id ID) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	_, ok := tc.neighbors[id]
	return ok
}

func (tc *TopicConn) knownPeers(except ID) []AddrInfo {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	peers := make([]AddrInfo, 0, len(tc.neighbors))
	for id, n := range tc.neighbors {
		if id == except {
			continue
		}
		peers = append(peers, n.addr)
	}
	return peers
}

func (tc *TopicConn) snapshotLocked(except ID) []*neighbor {
	out := make([]*neighbor, 0, len(tc.neighbors))
	for id, n := range tc.neighbors {
		if id == except {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (tc *TopicConn) writeNeighbor(n *neighbor, f frame) {
	n.writeMu.Lock()
	err := writeFrame(n.stream, f)
	n.writeMu.Unlock()
	if err != nil {
		tc.log.Debug(context.Background(), "dropping neighbor after write failure",
			"peer", n.addr.ID.Short(), "error", err)
		tc.removeNeighbor(n)
	}
}

func (tc *TopicConn) emit(ev Event) {
	select {
	case tc.events <- ev:
	case <-tc.done:
	default:
		tc.log.Warn(context.Background(), "event buffer full, dropping event", "type", ev.Type)
	}
}

// pruneSeenLocked keeps the de-duplication cache bounded.
func (tc *TopicConn) pruneSeenLocked() {
	if len(tc.seen) < 4096 {
		return
	}
	cutoff := time.Now().Add(-time.Minute)
	for id, at := range tc.seen {
		if at.Before(cutoff) {
			delete(tc.seen, id)
		}
	}
}

package session

import "peerchat/internal/gossip"

// Resolver maps peer identifiers to display names announced during the
// session. It has a single writer — the receive loop — and is read in the
// same loop iteration, so it needs no locking. A caller that moves reads
// to another goroutine must add its own synchronization.
type Resolver struct {
	names map[gossip.ID]string
}

func NewResolver() *Resolver {
	return &Resolver{names: make(map[gossip.ID]string)}
}

// Add records (or overwrites) the display name for a peer. Entries are
// never removed; the mapping lives for one process run.
func (r *Resolver) Add(id gossip.ID, name string) {
	r.names[id] = name
}

// Lookup returns the announced display name for a peer, falling back to a
// short textual rendering of the identifier when the peer has not
// announced itself yet.
func (r *Resolver) Lookup(id gossip.ID) string {
	if name, ok := r.names[id]; ok {
		return name
	}
	return id.Short()
}

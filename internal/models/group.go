package models

// Group is a named chat group. Ticket is the serialized rendezvous token
// issued at creation time; it never changes afterwards.
type Group struct {
	ID     int64
	Name   string
	Ticket string
	Owner  int64
}

// GroupWithOwner is the join-path projection: a group row together with
// its owner's display name, used for disambiguation when several groups
// share a name.
type GroupWithOwner struct {
	Group
	OwnerName string
}

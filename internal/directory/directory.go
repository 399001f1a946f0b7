// Package directory ties persisted group records to live gossip topics:
// creating a group mints a fresh topic and a shareable ticket, resolving a
// group name turns a stored ticket back into a topic to subscribe to.
package directory

import (
	"context"
	"fmt"

	"peerchat/internal/common"
	"peerchat/internal/gossip"
	"peerchat/internal/models"
	"peerchat/internal/repositories/groups"
	"peerchat/internal/ticket"
)

// OwnerChooser picks one owner display name out of several when a group
// name is ambiguous. The CLI backs this with a select menu.
type OwnerChooser func(owners []string) (string, error)

type Directory struct {
	groups groups.Repository
}

func New(groups groups.Repository) *Directory {
	return &Directory{groups: groups}
}

// Create mints a group: a fresh random topic, a ticket whose endpoint list
// is exactly the creator's own address, and a persisted row owned by owner.
// The ticket is returned for display so it can be shared out-of-band.
func (d *Directory) Create(ctx context.Context, name string, owner *models.User, self gossip.AddrInfo) (ticket.Ticket, error) {
	t := ticket.Ticket{
		Topic:     gossip.NewTopic(),
		Endpoints: []gossip.AddrInfo{self},
	}

	_, err := d.groups.Create(ctx, &models.Group{
		Name:   name,
		Ticket: t.String(),
		Owner:  owner.ID,
	})
	if err != nil {
		return ticket.Ticket{}, err
	}

	return t, nil
}

// Resolve finds the group to join by name. With several same-named groups
// the chooser disambiguates by owner display name. Only the topic is
// returned: the endpoints stored in a ticket reflect the creator's address
// at creation time and may be stale, so the joining peer starts with no
// known endpoints and relies on transport-level discovery.
func (d *Directory) Resolve(ctx context.Context, name string, choose OwnerChooser) (gossip.Topic, error) {
	matches, err := d.groups.FindByName(ctx, name)
	if err != nil {
		return gossip.Topic{}, err
	}
	if len(matches) == 0 {
		return gossip.Topic{}, fmt.Errorf("group %q: %w", name, common.ErrNotFound)
	}

	row := matches[0]
	if len(matches) > 1 {
		owner, err := choose(distinctOwners(matches))
		if err != nil {
			return gossip.Topic{}, err
		}

		found := false
		for _, m := range matches {
			if m.OwnerName == owner {
				row, found = m, true
				break
			}
		}
		if !found {
			return gossip.Topic{}, fmt.Errorf("owner %q: %w", owner, common.ErrInvalidChoice)
		}
	}

	t, err := ticket.Parse(row.Ticket)
	if err != nil {
		return gossip.Topic{}, fmt.Errorf("stored ticket for group %q: %w", name, err)
	}

	return t.Topic, nil
}

func distinctOwners(matches []models.GroupWithOwner) []string {
	seen := make(map[string]struct{}, len(matches))
	owners := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, dup := seen[m.OwnerName]; dup {
			continue
		}
		seen[m.OwnerName] = struct{}{}
		owners = append(owners, m.OwnerName)
	}
	return owners
}

package directory

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peerchat/internal/common"
	"peerchat/internal/gossip"
	"peerchat/internal/models"
	"peerchat/internal/repositories/groups"
	"peerchat/internal/repositories/users"
	"peerchat/internal/store"
	"peerchat/internal/ticket"
)

type fixture struct {
	db    *sql.DB
	dir   *Directory
	users users.Repository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &fixture{
		db:    db,
		dir:   New(groups.NewSQLRepository(db)),
		users: users.NewSQLRepository(db),
	}
}

func (f *fixture) addUser(t *testing.T, name string, phone uint64) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), &models.User{
		Name: name, PhoneNo: phone, Password: "digest", SecretKey: "sealed",
	})
	require.NoError(t, err)
	return u
}

func selfAddr(b byte) gossip.AddrInfo {
	var id gossip.ID
	id[0] = b
	return gossip.AddrInfo{ID: id, Addr: "10.0.0.1:4433"}
}

func noChooser(t *testing.T) OwnerChooser {
	return func(owners []string) (string, error) {
		t.Fatal("chooser must not be called")
		return "", nil
	}
}

func TestCreate_TicketCarriesCreatorEndpoint(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	alice := f.addUser(t, "alice", 5551234)
	self := selfAddr(7)

	tk, err := f.dir.Create(ctx, "team", alice, self)
	require.NoError(t, err)

	// the persisted token decodes to the same ticket in another process
	back, err := ticket.Parse(tk.String())
	require.NoError(t, err)
	assert.Equal(t, tk.Topic, back.Topic)
	require.Len(t, back.Endpoints, 1)
	assert.Equal(t, self, back.Endpoints[0])
}

func TestResolve_NotFound(t *testing.T) {
	f := setup(t)

	_, err := f.dir.Resolve(context.Background(), "ghost", noChooser(t))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResolve_SingleMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	alice := f.addUser(t, "alice", 5551234)
	tk, err := f.dir.Create(ctx, "team", alice, selfAddr(1))
	require.NoError(t, err)

	topic, err := f.dir.Resolve(ctx, "team", noChooser(t))
	require.NoError(t, err)
	assert.Equal(t, tk.Topic, topic)
}

func TestResolve_DisambiguatesByOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	alice := f.addUser(t, "alice", 5551234)
	bob := f.addUser(t, "bob", 5555678)

	_, err := f.dir.Create(ctx, "team", alice, selfAddr(1))
	require.NoError(t, err)
	bobTicket, err := f.dir.Create(ctx, "team", bob, selfAddr(2))
	require.NoError(t, err)

	var offered []string
	topic, err := f.dir.Resolve(ctx, "team", func(owners []string) (string, error) {
		offered = owners
		return "bob", nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob"}, offered)
	assert.Equal(t, bobTicket.Topic, topic)
}

func TestResolve_ChooserPicksUnknownOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	alice := f.addUser(t, "alice", 5551234)
	bob := f.addUser(t, "bob", 5555678)
	_, err := f.dir.Create(ctx, "team", alice, selfAddr(1))
	require.NoError(t, err)
	_, err = f.dir.Create(ctx, "team", bob, selfAddr(2))
	require.NoError(t, err)

	_, err = f.dir.Resolve(ctx, "team", func([]string) (string, error) {
		return "carol", nil
	})
	assert.ErrorIs(t, err, common.ErrInvalidChoice)
}

func TestResolve_CorruptStoredTicket(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	alice := f.addUser(t, "alice", 5551234)
	_, err := f.db.ExecContext(ctx,
		`INSERT INTO "groups" (name, ticket, owner) VALUES ('broken', '!!!', $1)`, alice.ID)
	require.NoError(t, err)

	_, err = f.dir.Resolve(ctx, "broken", noChooser(t))
	assert.Error(t, err)
}

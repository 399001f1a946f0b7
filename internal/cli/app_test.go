package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peerchat/internal/config"
	"peerchat/internal/gossip"
	"peerchat/internal/logging"
	"peerchat/internal/ticket"
)

func newTestApp(t *testing.T, script string) (*App, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{
		DatabaseDSN: ":memory:",
		ListenAddr:  "127.0.0.1:0",
	}
	out := &bytes.Buffer{}
	log := logging.NewTextLogger(io.Discard, slog.LevelError)

	app, err := NewApp(context.Background(), cfg, log, strings.NewReader(script), out)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	return app, out
}

// rescript swaps the app's input for a fresh scripted reader.
func rescript(app *App, script string) {
	app.in = bufio.NewReader(strings.NewReader(script))
}

func TestSignIn_RegisterPath(t *testing.T) {
	stubPassword(t, []byte("pw1"))

	app, out := newTestApp(t, "2\nAlice\n5551234\n")

	user, seed, err := app.signIn(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, uint64(5551234), user.PhoneNo)
	assert.Len(t, seed, 32)
	assert.Contains(t, out.String(), "Welcome, Alice!")
}

func TestSignIn_LoginAfterRegister(t *testing.T) {
	stubPassword(t, []byte("pw1"))

	app, _ := newTestApp(t, "2\nAlice\n5551234\n")

	registered, seed1, err := app.signIn(context.Background())
	require.NoError(t, err)

	rescript(app, "1\n5551234\n")
	loggedIn, seed2, err := app.signIn(context.Background())
	require.NoError(t, err)

	assert.Equal(t, registered.ID, loggedIn.ID)
	assert.Equal(t, seed1, seed2, "identity seed must survive the login round-trip")
}

func TestSignIn_UnknownPhoneFallsThroughToRegister(t *testing.T) {
	stubPassword(t, []byte("pw1"))

	app, out := newTestApp(t, "1\n7770000\nBob\n7770000\n")

	user, _, err := app.signIn(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bob", user.Name)
	assert.Contains(t, out.String(), "No user found with that phone number.")
}

func TestSignIn_WrongPasswordThenRegister(t *testing.T) {
	stubPassword(t, []byte("pw1"))

	app, out := newTestApp(t, "2\nAlice\n5551234\n")
	_, _, err := app.signIn(context.Background())
	require.NoError(t, err)

	stubPassword(t, []byte("wrong"))
	rescript(app, "1\n5551234\n2\nCarol\n5559999\n")

	user, _, err := app.signIn(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Carol", user.Name)
	assert.Contains(t, out.String(), "Wrong password.")
}

func TestChooseGroup_CreatePrintsTicket(t *testing.T) {
	stubPassword(t, []byte("pw1"))

	app, out := newTestApp(t, "2\nAlice\n5551234\n")

	user, _, err := app.signIn(context.Background())
	require.NoError(t, err)

	self := gossip.AddrInfo{ID: gossip.ID{1, 2, 3}, Addr: "127.0.0.1:4433"}
	rescript(app, "1\nteam\n")
	topic, bootstrap, err := app.chooseGroup(context.Background(), user, self)
	require.NoError(t, err)

	assert.NotEqual(t, gossip.Topic{}, topic)
	assert.Empty(t, bootstrap, "the creator opens with no known peers")

	token := extractTicket(t, out.String())
	tk, err := ticket.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, topic, tk.Topic)
	require.Len(t, tk.Endpoints, 1)
	assert.Equal(t, self, tk.Endpoints[0])
}

func TestChooseGroup_JoinResolvesTopic(t *testing.T) {
	stubPassword(t, []byte("pw1"))

	app, _ := newTestApp(t, "2\nAlice\n5551234\n")

	user, _, err := app.signIn(context.Background())
	require.NoError(t, err)

	self := gossip.AddrInfo{ID: gossip.ID{9}, Addr: "127.0.0.1:4433"}
	rescript(app, "1\nteam\n")
	created, _, err := app.chooseGroup(context.Background(), user, self)
	require.NoError(t, err)

	rescript(app, "2\nteam\n")
	joined, bootstrap, err := app.chooseGroup(context.Background(), user, self)
	require.NoError(t, err)

	assert.Equal(t, created, joined)
	assert.Empty(t, bootstrap, "join relies on transport discovery, not stored endpoints")
}

func TestChooseGroup_JoinUnknownGroupFails(t *testing.T) {
	stubPassword(t, []byte("pw1"))

	app, _ := newTestApp(t, "2\nAlice\n5551234\n")

	user, _, err := app.signIn(context.Background())
	require.NoError(t, err)

	rescript(app, "2\nnowhere\n")
	_, _, err = app.chooseGroup(context.Background(), user, gossip.AddrInfo{})
	require.Error(t, err)
}

func extractTicket(t *testing.T, output string) string {
	t.Helper()
	const marker = "> ticket to join us: "
	i := strings.Index(output, marker)
	require.GreaterOrEqual(t, i, 0, "ticket line not printed")
	rest := output[i+len(marker):]
	if j := strings.IndexByte(rest, '\n'); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

package ticket

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peerchat/internal/gossip"
)

func sampleTicket() Ticket {
	var id gossip.ID
	id[0] = 0xfe
	return Ticket{
		Topic: gossip.NewTopic(),
		Endpoints: []gossip.AddrInfo{
			{ID: id, Addr: "192.168.1.20:4433"},
		},
	}
}

func TestTicket_RoundTrip(t *testing.T) {
	tk := sampleTicket()

	back, err := Parse(tk.String())
	require.NoError(t, err)
	assert.Equal(t, tk, back)
}

func TestTicket_RoundTripNoEndpoints(t *testing.T) {
	tk := Ticket{Topic: gossip.NewTopic(), Endpoints: nil}

	back, err := Parse(tk.String())
	require.NoError(t, err)
	assert.Equal(t, tk.Topic, back.Topic)
	assert.Empty(t, back.Endpoints)
}

func TestTicket_TokenIsLowercaseAndCaseInsensitive(t *testing.T) {
	tk := sampleTicket()
	token := tk.String()

	assert.Equal(t, strings.ToLower(token), token)

	back, err := Parse(strings.ToUpper(token))
	require.NoError(t, err)
	assert.Equal(t, tk, back)
}

func TestParse_RejectsGarbage(t *testing.T) {
	// characters outside the base32 alphabet
	_, err := Parse("not-a-ticket-!!!")
	assert.Error(t, err)

	// valid base32, but the bytes are not a ticket
	raw := b32.EncodeToString([]byte("hello world"))
	_, err = Parse(raw)
	assert.Error(t, err)
}

func TestParse_RejectsJSONWithoutTopic(t *testing.T) {
	// well-formed JSON that is not a ticket must fail, never decode to a
	// zero-valued ticket
	for _, payload := range []string{"{}", "null", `{"endpoints":[]}`} {
		token := strings.ToLower(b32.EncodeToString([]byte(payload)))
		_, err := Parse(token)
		require.Error(t, err, "payload %s must be rejected", payload)
	}
}

func TestParse_TrimsSurroundingWhitespace(t *testing.T) {
	tk := sampleTicket()

	back, err := Parse("  " + tk.String() + "\n")
	require.NoError(t, err)
	assert.Equal(t, tk, back)
}

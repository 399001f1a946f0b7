package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPassword(t *testing.T, pw []byte) {
	t.Helper()
	orig := readPassword
	readPassword = func() ([]byte, error) { return pw, nil }
	t.Cleanup(func() { readPassword = orig })
}

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("  hello world  \n"))
	var out bytes.Buffer

	got, err := GetSimpleText(in, "Say something", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Contains(t, out.String(), "Say something")
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("no newline"))
	var out bytes.Buffer

	got, err := GetSimpleText(in, "", &out)
	require.NoError(t, err)
	assert.Equal(t, "no newline", got)
}

func TestGetSimpleText_EOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader(""))
	var out bytes.Buffer

	_, err := GetSimpleText(in, "", &out)
	require.Error(t, err)
}

func TestGetPassword(t *testing.T) {
	stubPassword(t, []byte("s3cret"))
	var out bytes.Buffer

	pw, err := GetPassword("Enter your password", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Contains(t, out.String(), "Enter your password")
}

func TestGetPhoneNo_RetriesUntilNumeric(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("not-a-number\n555-1234\n5551234\n"))
	var out bytes.Buffer

	phone, err := GetPhoneNo(in, "Phone", &out)
	require.NoError(t, err)
	assert.Equal(t, uint64(5551234), phone)
	assert.Contains(t, out.String(), "digits only")
}

func TestSelect_ReturnsIndex(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("2\n"))
	var out bytes.Buffer

	i, err := Select(in, "Pick one", []string{"alpha", "beta"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Contains(t, out.String(), "1) alpha")
	assert.Contains(t, out.String(), "2) beta")
}

func TestSelect_RetriesOnInvalidInput(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("0\nseven\n3\n1\n"))
	var out bytes.Buffer

	i, err := Select(in, "Pick one", []string{"alpha", "beta"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	assert.Contains(t, out.String(), "between 1 and 2")
}

func TestSelect_EOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader(""))
	var out bytes.Buffer

	_, err := Select(in, "Pick one", []string{"alpha"}, &out)
	require.Error(t, err)
}

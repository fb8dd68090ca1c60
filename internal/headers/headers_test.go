package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadersParser(t *testing.T) {
	headers := NewHeaders()
	data := []byte("Host: localhost:42069\r\nFooFoo: Barbar\r\n\r\n")
	n, done, err := headers.Parse(data)
	require.NoError(t, err)
	require.NotNil(t, headers)
	assert.Equal(t, "localhost:42069", headers.Value("host"))
	assert.Equal(t, "Barbar", headers.Value("FooFoo"))
	assert.Equal(t, 41, n)
	assert.True(t, done)

	// Test: Invalid spacing header
	headers = NewHeaders()
	data = []byte("       Host : localhost:42069       \r\n\r\n")
	n, done, err = headers.Parse(data)
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, done)

	// Test: multivalue headers
	headers = NewHeaders()
	data = []byte("Host: localhost:42069\r\nFooFoo: Barbar\r\nFooFoo: Barbar2\r\n\r\n")
	_, done, err = headers.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "localhost:42069", headers.Value("host"))
	assert.Equal(t, "Barbar,Barbar2", headers.Value("FooFoo"))
	assert.Equal(t, []string{"Barbar", "Barbar2"}, headers.Values("foofoo"))
	assert.True(t, done)

	// Test: incomplete block
	headers = NewHeaders()
	data = []byte("Host: localhost\r\nAccept: */*")
	n, done, err = headers.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 17, n)
	assert.False(t, done)
}

func TestParseLineRejectsInvalidFieldNames(t *testing.T) {
	for _, line := range []string{
		"NoColon",
		": empty-name",
		"Bad(Name): x",
		"Sp ace: x",
	} {
		h := NewHeaders()
		assert.ErrorIs(t, h.ParseLine([]byte(line)), ErrMalformedHeader, line)
	}

	h := NewHeaders()
	require.NoError(t, h.ParseLine([]byte("X-Weird_Name~1: ok")))
	assert.Equal(t, "ok", h.Value("x-weird_name~1"))
}

func TestListKeepsOrderAndDuplicates(t *testing.T) {
	var l List
	l.Add("content-type", "text/html")
	l.Add("origin-trial", "aaa")
	l.Append(List{{Name: "origin-trial", Value: "bbb"}})

	require.Len(t, l, 3)
	assert.Equal(t, Field{Name: "origin-trial", Value: "bbb"}, l[2])

	v, ok := l.Get("origin-trial")
	assert.True(t, ok)
	assert.Equal(t, "aaa", v)

	_, ok = l.Get("Origin-Trial")
	assert.False(t, ok)

	c := l.Clone()
	c.Add("x", "y")
	assert.Len(t, l, 3)
	assert.Len(t, c, 4)
}

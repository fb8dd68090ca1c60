package vhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanshuy/vhost-server/internal/config"
)

func testHosts() []config.Host {
	return []config.Host{
		{Name: "a.local", Root: "/site-a"},
		{Name: "b.local", Root: "/site-b"},
		{Name: "b.local", Root: "/site-b-shadowed"},
		{Name: "::1", Root: "/site-v6"},
	}
}

func TestResolve(t *testing.T) {
	r := NewResolver(testHosts())

	cases := map[string]string{
		"a.local":      "/site-a",
		"a.local:8080": "/site-a",
		"b.local":      "/site-b",
		"[::1]:3001":   "/site-v6",
	}
	for header, root := range cases {
		h, err := r.Resolve(header)
		require.NoError(t, err, header)
		assert.Equal(t, root, h.Root, header)
	}
}

func TestResolveFailures(t *testing.T) {
	r := NewResolver(testHosts())

	for _, header := range []string{
		"",
		"c.local",
		"A.LOCAL",
		"user@a.local",
		"a.local/path",
		"a.local?x",
		"[::1",
		"a.local:port%zz",
		":8080",
	} {
		h, err := r.Resolve(header)
		assert.Nil(t, h, header)
		assert.ErrorIs(t, err, ErrNoMatchingHost, header)
	}
}

func TestResolveReturnsSharedEntry(t *testing.T) {
	hosts := testHosts()
	r := NewResolver(hosts)

	first, err := r.Resolve("a.local")
	require.NoError(t, err)
	second, err := r.Resolve("a.local:80")
	require.NoError(t, err)
	assert.Same(t, &hosts[0], first)
	assert.Same(t, first, second)
}

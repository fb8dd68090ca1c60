package static

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSite lays out a small document tree and returns its root.
func newSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":          "<h1>home</h1>",
		"style.css":           "body{}",
		"docs/index.html":     "<h1>docs</h1>",
		"docs/guide.txt":      "read me",
		"empty/.keep":         "",
		"blob":                "\x00\x01\x02",
		"notes.unknownext123": "%PDF-1.4 fake",
	}
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func TestResolvePath(t *testing.T) {
	root := newSite(t)

	cases := map[string]string{
		"":                  filepath.Join(root, "index.html"),
		"/":                 filepath.Join(root, "index.html"),
		"/style.css":        filepath.Join(root, "style.css"),
		"style.css":         filepath.Join(root, "style.css"),
		"/docs":             filepath.Join(root, "docs", "index.html"),
		"/docs/":            filepath.Join(root, "docs", "index.html"),
		"/docs/guide.txt":   filepath.Join(root, "docs", "guide.txt"),
		"/empty":            filepath.Join(root, "empty", "index.html"),
		"/missing.txt":      filepath.Join(root, "missing.txt"),
		"/docs/../blob":     filepath.Join(root, "blob"),
		"//etc/passwd":      filepath.Join(root, "etc", "passwd"),
		"/docs/./guide.txt": filepath.Join(root, "docs", "guide.txt"),
	}
	for urlPath, want := range cases {
		got, err := ResolvePath(root, urlPath)
		require.NoError(t, err, urlPath)
		assert.Equal(t, want, got, urlPath)
	}
}

func TestResolvePathRejectsEscapes(t *testing.T) {
	root := newSite(t)

	for _, urlPath := range []string{
		"/..",
		"/../etc/passwd",
		"/docs/../../etc/passwd",
		"/docs/../..",
		"/a\x00b",
	} {
		_, err := ResolvePath(root, urlPath)
		assert.ErrorIs(t, err, ErrOutsideRoot, urlPath)
	}
}

func TestResolvePathIsIdempotent(t *testing.T) {
	root := newSite(t)
	for _, p := range []string{"/", "/docs", "/style.css", "/missing"} {
		first, err1 := ResolvePath(root, p)
		second, err2 := ResolvePath(root, p)
		assert.Equal(t, first, second)
		assert.Equal(t, err1, err2)
	}
}

func TestLoad(t *testing.T) {
	root := newSite(t)
	l := NewLoader(false, nil)

	fd, err := l.Load(filepath.Join(root, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>home</h1>", string(fd.Body))
	assert.Equal(t, len("<h1>home</h1>"), fd.Length)
	assert.Equal(t, "text/html; charset=utf-8", fd.MIMEType)

	fd, err = l.Load(filepath.Join(root, "style.css"))
	require.NoError(t, err)
	assert.Equal(t, "text/css; charset=utf-8", fd.MIMEType)

	fd, err = l.Load(filepath.Join(root, "blob"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMIMEType, fd.MIMEType)
	assert.Equal(t, 3, fd.Length)

	fd, err = l.Load(filepath.Join(root, "notes.unknownext123"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMIMEType, fd.MIMEType)
}

func TestLoadSniffsUnknownTypes(t *testing.T) {
	root := newSite(t)
	l := NewLoader(true, nil)

	fd, err := l.Load(filepath.Join(root, "notes.unknownext123"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", fd.MIMEType)

	// a known extension wins over content
	fd, err = l.Load(filepath.Join(root, "style.css"))
	require.NoError(t, err)
	assert.Equal(t, "text/css; charset=utf-8", fd.MIMEType)
}

func TestLoadFailures(t *testing.T) {
	root := newSite(t)
	l := NewLoader(false, nil)

	for _, p := range []string{
		filepath.Join(root, "missing.txt"),
		filepath.Join(root, "docs"),
		filepath.Join(root, "empty", "index.html"),
	} {
		fd, err := l.Load(p)
		assert.Nil(t, fd, p)
		assert.ErrorIs(t, err, ErrFileUnavailable, p)
	}

	_, err := l.Load(filepath.Join(root, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

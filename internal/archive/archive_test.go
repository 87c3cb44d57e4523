package archive

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackFile(t *testing.T) {
	src := t.TempDir()
	path := filepath.Join(src, "note.txt")
	content := bytes.Repeat([]byte("hidden in plain sight\n"), 50)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	data, err := Pack(path, 9)
	require.NoError(t, err)
	assert.Less(t, len(data), len(content), "archive should be compressed")

	names, err := List(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"note.txt"}, names)

	dest := t.TempDir()
	require.NoError(t, Unpack(data, dest))
	got, err := os.ReadFile(filepath.Join(dest, "note.txt"))
	require.NoError(t, err)
	assert.Equal(t, content, got, "unpacked file differs from the original")
}

func TestPackUnpackDirectory(t *testing.T) {
	src := filepath.Join(t.TempDir(), "docs")
	files := map[string]string{
		"a.txt":         "alpha",
		"sub/b.txt":     "bravo",
		"sub/deep/c.md": "charlie",
	}
	for name, content := range files {
		path := filepath.Join(src, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	data, err := Pack(src, 6)
	require.NoError(t, err)

	names, err := List(data)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"docs/a.txt", "docs/sub/b.txt", "docs/sub/deep/c.md"}, names)

	dest := t.TempDir()
	require.NoError(t, Unpack(data, dest))
	for name, content := range files {
		got, err := os.ReadFile(filepath.Join(dest, "docs", filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, content, string(got), name)
	}
}

func TestPackMissingPath(t *testing.T) {
	_, err := Pack(filepath.Join(t.TempDir(), "missing"), 9)
	assert.Error(t, err)
}

func TestUnpackRejectsEscapingEntries(t *testing.T) {
	for _, name := range []string{"../evil.txt", "/etc/evil.txt", "a/../../evil.txt"} {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte("x"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		parent := t.TempDir()
		dest := filepath.Join(parent, "out")
		err = Unpack(buf.Bytes(), dest)
		if assert.Error(t, err, "Unpack(%q)", name) && !errors.Is(err, ErrUnsafePath) {
			t.Logf("Unpack(%q) rejected by the zip reader: %v", name, err)
		}
		assert.NoFileExists(t, filepath.Join(parent, "evil.txt"), "Unpack(%q) wrote outside the destination", name)
	}
}

func TestUnpackGarbage(t *testing.T) {
	assert.Error(t, Unpack([]byte("not a zip"), t.TempDir()))
}

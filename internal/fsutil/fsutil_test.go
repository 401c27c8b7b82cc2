package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mb", "A.MB", "c.mbp", "d.mbx", "noext"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mb"), 0755))

	files, err := FilesByExtension(dir, ".mb")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "A.MB"), filepath.Join(dir, "b.mb")}, files)

	_, err = FilesByExtension(filepath.Join(dir, "missing"), ".mb")
	assert.Error(t, err)

	_, err = FilesByExtension(dir, "")
	assert.ErrorIs(t, err, ErrEmptyExt)
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "main.mb"), ChangeExt(filepath.Join("out", "main.mbo"), ".mb"))
	assert.Equal(t, filepath.Join("out", "main.mb"), ChangeExt(filepath.Join("out", "main"), ".mb"))
	assert.Equal(t, "prospy", BaseName(filepath.Join("x", "prospy.err")))
	assert.True(t, HasExt("X.ERR", ".err"))
	assert.False(t, HasExt("x.errx", ".err"))
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep", "out.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("one")))
	require.NoError(t, AtomicWriteFile(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.True(t, IsFile(path))
	assert.False(t, IsFile(dir))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

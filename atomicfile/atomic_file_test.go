package atomicfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
)

func countFiles(t *testing.T, dir string) int {
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	return len(entries)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.idmap")
	err := WriteFile(path, []byte("first"))
	assert.NoError(t, err)
	err = WriteFile(path, []byte("second"))
	assert.NoError(t, err)
	d, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "second", string(d))
	// no temporary files left behind
	assert.Equal(t, 1, countFiles(t, dir))
}

func TestCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.idmap")
	f, err := New(path)
	assert.NoError(t, err)
	_, err = f.Write([]byte("partial"))
	assert.NoError(t, err)
	f.RemoveIfNotClosed()
	assert.Equal(t, 0, countFiles(t, dir))

	_, err = f.Write([]byte("more"))
	assert.Equal(t, ErrCancelled, err)
	assert.Equal(t, ErrCancelled, f.Close())
}

func TestCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	f, err := New(path)
	assert.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3})
	assert.NoError(t, err)
	assert.NoError(t, f.Close())
	assert.NoError(t, f.Close())
	// no-op after Close
	f.RemoveIfNotClosed()
	st, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), st.Size())
}

func TestInvalidPath(t *testing.T) {
	_, err := New(t.TempDir() + string(filepath.Separator))
	assert.Error(t, err)
	err = WriteFile(filepath.Join(t.TempDir(), "no", "such", "dir", "f"), nil)
	assert.Error(t, err)
}

package mmapfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenReadsBackWrittenBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lattice.bin")
	want := []byte("parattice mmap round trip")
	require.NoError(t, os.WriteFile(path, want, 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, want, f.Bytes())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

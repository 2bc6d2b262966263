package counter

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, v := range []int{0, 1, -7, 4000, 4500000, math.MaxInt64, math.MinInt64} {
		path := filepath.Join(dir, "counter")
		require.NoError(t, WriteAtomic(path, v))
		assert.Equal(t, v, ReadOrDefault(path))

		_, err := os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err), "temp file must not survive a successful write")
	}
}

func TestReadOrDefault(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, 0, ReadOrDefault(filepath.Join(dir, "absent")))

	garbage := filepath.Join(dir, "garbage")
	require.NoError(t, os.WriteFile(garbage, []byte("not a number"), 0644))
	assert.Equal(t, 0, ReadOrDefault(garbage))

	padded := filepath.Join(dir, "padded")
	require.NoError(t, os.WriteFile(padded, []byte("  42 \n"), 0644))
	assert.Equal(t, 42, ReadOrDefault(padded))
}

func TestWriteAtomicFailureLeavesOldValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counter")
	require.NoError(t, WriteAtomic(path, 5))

	// A directory in place of the temp file makes the open fail.
	require.NoError(t, os.Mkdir(path+".tmp", 0755))
	assert.Error(t, WriteAtomic(path, 6))
	assert.Equal(t, 5, ReadOrDefault(path))
}

func TestIncrement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reboots")

	v, err := Increment(path)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = Increment(path)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, ReadOrDefault(path))
}

func TestWriteAtomicMissingDir(t *testing.T) {
	err := WriteAtomic(filepath.Join(t.TempDir(), "no", "such", "dir"), 1)
	assert.Error(t, err)
}

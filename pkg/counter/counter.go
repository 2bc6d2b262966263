// Package counter persists small integers (reboot count, charge capacity
// baseline) as plain text files. Writes go through a temp file and a rename
// so a reader never sees a partially written value.
package counter

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// ReadOrDefault returns the integer stored at path, or 0 if the file does
// not exist or does not hold an integer.
func ReadOrDefault(path string) int {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0
	}

	return v
}

// WriteAtomic stores value at path. The rename is the only commit point.
func WriteAtomic(path string, value int) error {
	tmpFile := path + ".tmp"

	fp, err := os.OpenFile(tmpFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", tmpFile)
	}

	if _, err := fp.WriteString(strconv.Itoa(value) + "\n"); err != nil {
		_ = fp.Close()
		_ = os.Remove(tmpFile)
		return pkgerrors.Wrapf(err, "failed to write file %s", tmpFile)
	}
	if err := fp.Sync(); err != nil {
		_ = fp.Close()
		_ = os.Remove(tmpFile)
		return pkgerrors.Wrapf(err, "failed to sync file %s", tmpFile)
	}
	if err := fp.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return pkgerrors.Wrapf(err, "failed to close file %s", tmpFile)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return pkgerrors.Wrapf(err, "failed to rename %s to %s", tmpFile, path)
	}

	// Make the rename itself durable.
	if dir, err := os.Open(filepath.Dir(path)); err == nil {
		_ = dir.Sync()
		_ = dir.Close()
	}

	return nil
}

// Increment adds one to the value at path, persists it and returns it.
func Increment(path string) (int, error) {
	v := ReadOrDefault(path) + 1
	return v, WriteAtomic(path, v)
}
